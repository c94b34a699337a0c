package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// ErrorResponse is the error shape for the JSON API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable class, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// loginFailure is the error body of the OAuth endpoints. The shape is part
// of the API: {"login_status":"FAILED","error":"..."}.
type loginFailure struct {
	LoginStatus string `json:"login_status"`
	Error       string `json:"error"`
}

// writeJSON sends data as a JSON response with the given status.
// Headers and status must be written before the body; once Encode writes,
// they are locked in.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeLoginFailure sends the OAuth-flow failure body with the given status.
func writeLoginFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, loginFailure{
		LoginStatus: "FAILED",
		Error:       message,
	})
}

// writeError maps a service error to an HTTP status for the JSON endpoints.
//
// Classified errors (validation, not-found) expose their AppError message.
// Everything else is a 500 with a fixed body — raw error text never crosses
// this boundary, since it can carry queries, paths, or upstream payloads.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: errorType, Message: appErr.Message})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
