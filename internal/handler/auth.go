// Package handler implements the HTTP edge of the service: the OAuth
// endpoints, the profile lookup, and the health check. Handlers translate
// between HTTP and the service layer — no business logic lives here.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
	"github.com/agulati/tgrafy-dashboard/internal/model"
	"github.com/agulati/tgrafy-dashboard/internal/service"
)

// sessionCookieName is the cookie carrying the signed session token.
const sessionCookieName = "tg_access_token"

// AuthFlow is the slice of the service layer the auth handler consumes.
// *service.AuthService satisfies it.
type AuthFlow interface {
	AuthorizeURL() string
	HandleCallback(ctx context.Context, code string) (*service.CallbackResult, error)
	GetProfile(ctx context.Context, userID string) (*model.UserRecord, error)
}

// AuthHandler serves the GitHub login endpoints.
type AuthHandler struct {
	flow         AuthFlow
	dashboardURL string
	cookieDomain string
	logger       *slog.Logger
}

func NewAuthHandler(flow AuthFlow, dashboardURL, cookieDomain string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		flow:         flow,
		dashboardURL: dashboardURL,
		cookieDomain: cookieDomain,
		logger:       logger,
	}
}

// HandleGitHubOAuth redirects the browser to GitHub's authorization page.
//
// HTTP: GET /api/v1/auth/oauth/github
// Pure URL construction — this endpoint cannot fail.
func (h *AuthHandler) HandleGitHubOAuth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.flow.AuthorizeURL(), http.StatusFound)
}

// HandleGitHubCallback completes the login.
//
// HTTP: GET /api/v1/auth/oauth/github/callback?code=xxx
//
// On success: 302 to <dashboard>?login=<login> with the session cookie.
// On failure, by error class:
//
//	validation (empty code)      → 400, message in the login-failure body
//	upstream client (bad code)   → 400, upstream error text in the body
//	upstream server / anything   → 500, generic "internal server error"
//
// The final else branch is the top-level catch-all: whatever the service
// returns that is not a classified error becomes a generic 500 — internal
// error text never reaches the caller here.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	result, err := h.flow.HandleCallback(r.Context(), code)
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr):
			writeLoginFailure(w, http.StatusBadRequest, appErr.Message)
		case errors.Is(err, apperror.ErrUpstreamClient) && errors.As(err, &appErr):
			writeLoginFailure(w, http.StatusBadRequest, appErr.Message)
		default:
			h.logger.Error("callback failed", slog.String("error", err.Error()))
			writeLoginFailure(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("user logged in", slog.String("login", result.Login))

	// Session cookie:
	// tg_access_token=<jwt>; Domain=.<domain>; HttpOnly; SameSite=None;
	// Secure; Path=/; Max-Age=<token TTL in seconds>
	// Max-Age matches the token's exp claim, so the browser drops the cookie
	// when the token stops being valid.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.SessionToken,
		Domain:   h.cookieDomain,
		Path:     "/",
		MaxAge:   int(result.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	dest := fmt.Sprintf("%s?login=%s", h.dashboardURL, url.QueryEscape(result.Login))
	http.Redirect(w, r, dest, http.StatusFound)
}

// HandleProfile returns the stored user record for a login.
//
// HTTP: GET /api/v1/user/profile?user_id=<login>
//
// Responds 200 with the record document, 400 on a missing user_id, 404 when
// no record matches, 500 otherwise.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	rec, err := h.flow.GetProfile(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) && !errors.Is(err, apperror.ErrNotFound) {
			h.logger.Error("profile lookup failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec.Document())
}

// HandleHealth reports liveness.
//
// HTTP: GET /health → 200 {"status":"OK"}
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
