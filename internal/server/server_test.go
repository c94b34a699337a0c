package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agulati/tgrafy-dashboard/internal/config"
	"github.com/agulati/tgrafy-dashboard/internal/secrets"
)

// newTestServer wires a real server against an in-memory database and a
// fixed secret bundle. No request in these tests reaches GitHub: the empty
// code short-circuits the callback before any outbound call.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Env:            "test",
		Port:           8080,
		GitHubClientID: "test-client-id",
		RedirectURI:    "https://api.example.com/api/v1/auth/oauth/github/callback",
		DashboardURL:   "https://tgrafy.agulati.cc/dashboard",
		CookieDomain:   ".agulati.cc",
		DBPath:         ":memory:",
	}
	bundle := secrets.Bundle{
		GitHubClientSecret: "test-client-secret",
		DatabaseUsername:   "tgrafy",
		DatabasePassword:   "unused-by-sqlite",
		JWTSigningKey:      "test-signing-key-at-least-16-chars",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	srv, err := New(cfg, bundle, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.db.Close() })
	return srv
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}

func TestRoutes_OAuthRedirect(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/github", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", loc.Host)
	assert.Equal(t, "test-client-id", loc.Query().Get("client_id"))
	assert.Equal(t, "user:email", loc.Query().Get("scope"))
}

func TestRoutes_CallbackWithoutCode(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/github/callback", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FAILED", body["login_status"])
}

func TestRoutes_ProfileUnknownUser(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile?user_id=nobody", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_UnknownPath(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
