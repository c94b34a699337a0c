// Package service holds the business logic between the HTTP handlers and the
// external collaborators (GitHub, the user store, the token service).
//
// AuthService owns the OAuth callback orchestration:
//
//	AuthHandler (HTTP) → AuthService → GitHubProvider (exchange + profile)
//	                                 → UserRepository (upsert/lookup)
//	                                 → TokenService   (session JWT)
//
// Each step returns a typed error carrying its apperror class; the handler
// does the case analysis and maps classes to status codes. No step failure
// crosses the handler boundary unclassified — anything unknown degrades to a
// generic 500 there.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
	"github.com/agulati/tgrafy-dashboard/internal/auth"
	"github.com/agulati/tgrafy-dashboard/internal/model"
	"github.com/agulati/tgrafy-dashboard/internal/repository"
)

// GitHubOAuth is the slice of the GitHub provider the service consumes.
// *auth.GitHubProvider satisfies it; tests supply fakes.
type GitHubOAuth interface {
	AuthorizeURL() string
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (*auth.Profile, error)
}

// TokenIssuer issues signed session tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(login string) (string, error)
}

// AuthService orchestrates the login flow. It is stateless across calls;
// every invocation is independent and safe to run concurrently.
type AuthService struct {
	github GitHubOAuth
	tokens TokenIssuer
	users  repository.UserRepository
	logger *slog.Logger
}

func NewAuthService(
	github GitHubOAuth,
	tokens TokenIssuer,
	users repository.UserRepository,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		github: github,
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// CallbackResult is the successful outcome of the OAuth callback: who logged
// in and the session token to hand to the browser.
type CallbackResult struct {
	Login        string
	SessionToken string
	TokenTTL     time.Duration
}

// AuthorizeURL returns GitHub's authorization page URL. Pure delegation —
// no I/O, no failure modes.
func (s *AuthService) AuthorizeURL() string {
	return s.github.AuthorizeURL()
}

// HandleCallback runs the four dependent steps of the OAuth callback.
//
// Steps, strictly sequential (each consumes the previous step's output),
// terminal on first failure:
//
//	1. validate the code        → validation error (400), zero outbound calls
//	2. exchange code for token  → upstream client error (400) on failure
//	3. fetch the GitHub profile → upstream server error (500) on failure
//	4. upsert the user record   → unclassified; degrades to 500 at the edge
//	5. issue the session token  → unclassified; degrades to 500 at the edge
//
// No step is retried; a transient failure surfaces immediately as its class.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	if code == "" {
		return nil, fmt.Errorf("service/auth: handling callback: %w",
			apperror.ValidationFailed("code", "missing authorization code"))
	}

	start := time.Now()
	accessToken, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("callback: token exchange failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.Info("callback: access token fetched", slog.Duration("took", time.Since(start)))

	start = time.Now()
	profile, err := s.github.FetchProfile(ctx, accessToken)
	if err != nil {
		s.logger.Error("callback: profile fetch failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.Info("callback: user profile fetched",
		slog.String("login", profile.Login),
		slog.Duration("took", time.Since(start)),
	)

	rec := &model.UserRecord{
		Login:       profile.Login,
		Profile:     profile.Attrs,
		AccessToken: accessToken,
		LoginTS:     time.Now().UTC(),
	}
	start = time.Now()
	if err := s.users.Upsert(ctx, rec); err != nil {
		s.logger.Error("callback: user upsert failed",
			slog.String("login", profile.Login),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", profile.Login, err)
	}
	s.logger.Info("callback: user record saved",
		slog.String("login", profile.Login),
		slog.Duration("took", time.Since(start)),
	)

	session, err := s.tokens.Issue(profile.Login)
	if err != nil {
		s.logger.Error("callback: session token issuance failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: issuing session token: %w", err)
	}

	return &CallbackResult{
		Login:        profile.Login,
		SessionToken: session,
		TokenTTL:     auth.TokenTTL,
	}, nil
}

// GetProfile returns the stored user record for the given identifier
// (the GitHub login). The upsert invariant guarantees at most one match;
// zero matches surface as a not-found error, which the handler maps to 404.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.UserRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("service/auth: getting profile: %w",
			apperror.ValidationFailed("user_id", "missing user_id"))
	}

	rec, err := s.users.GetByLogin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: getting profile %s: %w", userID, err)
	}
	return rec, nil
}
