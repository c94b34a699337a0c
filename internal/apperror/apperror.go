package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the service distinguishes.
//
// ERROR TAXONOMY:
//   - ErrValidation     → caller sent bad input (e.g. empty OAuth code) → 400
//   - ErrUpstreamClient → GitHub rejected something the caller supplied
//     (bad/expired/reused code) → 400
//   - ErrUpstreamServer → GitHub (or another downstream) failed on our side
//     of the flow — not attributable to the caller → 500
//   - ErrNotFound       → a lookup matched zero records → 404
//   - ErrConfiguration  → missing secrets or invalid config at boot; fatal
//     for the process, never surfaced per-request
var (
	ErrValidation     = errors.New("validation error")
	ErrUpstreamClient = errors.New("upstream client error")
	ErrUpstreamServer = errors.New("upstream server error")
	ErrNotFound       = errors.New("not found")
	ErrConfiguration  = errors.New("configuration error")
)

// AppError carries a sentinel (for errors.Is dispatch) plus a message that is
// safe to return to the caller. Handlers expose Message only — internal error
// chains stay in the logs.
type AppError struct {
	Err     error  // sentinel classifying the failure
	Message string // human-readable, safe to expose
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UpstreamClient wraps a provider rejection whose message is considered safe
// to echo back (the provider's own error text, nothing internal).
func UpstreamClient(message string) *AppError {
	return &AppError{
		Err:     ErrUpstreamClient,
		Message: message,
	}
}

// UpstreamServer deliberately discards detail: provider-side failures map to
// a generic message so nothing internal leaks across the API boundary.
func UpstreamServer() *AppError {
	return &AppError{
		Err:     ErrUpstreamServer,
		Message: "internal server error",
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// MissingSecrets reports which required secrets came back absent. It is a
// configuration error: the process must not start without a complete bundle.
func MissingSecrets(names []string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("missing required secrets: %v", names),
	}
}
