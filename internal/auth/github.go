// Package auth wraps the two credential mechanisms of the login flow: the
// GitHub OAuth code exchange and the signed session token handed to the
// browser afterwards.
//
// FLOW OVERVIEW:
//  1. Browser hits /api/v1/auth/oauth/github → 302 to GitHub's authorize page
//  2. GitHub calls back with a single-use code
//  3. GitHubProvider exchanges the code for an access token (server-to-server)
//  4. GitHubProvider fetches the user's profile with that token
//  5. TokenService issues a 10-minute JWT, set as an HttpOnly cookie
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// githubUserURL is GitHub's authenticated-user endpoint.
const githubUserURL = "https://api.github.com/user"

// outboundTimeout bounds every call to GitHub. A hung provider surfaces as
// the corresponding step's failure class instead of stalling the request.
const outboundTimeout = 8 * time.Second

// Profile is the GitHub /user response for one login.
//
// GitHub returns a large, evolving object; everything it sends is kept in
// Attrs so the stored user record carries the full payload. Login is the only
// field the flow itself depends on — it keys the user record.
type Profile struct {
	Login string
	Attrs map[string]any
}

// GitHubProvider performs the Authorization Code flow against GitHub using
// golang.org/x/oauth2. The code-for-token exchange happens server-to-server
// with the client secret; the access token never reaches the browser.
type GitHubProvider struct {
	config     *oauth2.Config
	userURL    string
	httpClient *http.Client
}

// NewGitHubProvider creates a provider for the registered OAuth app.
// redirectURI must match the app's configured callback URL exactly.
// The requested scope is user:email.
func NewGitHubProvider(clientID, clientSecret, redirectURI string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL:    githubUserURL,
		httpClient: &http.Client{Timeout: outboundTimeout},
	}
}

// AuthorizeURL returns GitHub's authorization page URL for this app.
// Pure string construction — no I/O, no failure modes.
func (p *GitHubProvider) AuthorizeURL() string {
	return p.config.AuthCodeURL("")
}

// ExchangeCode trades the callback code for an OAuth access token.
//
// Failures here are classified as upstream CLIENT errors (a bad, expired, or
// reused code is a caller-caused condition), and the upstream error message —
// GitHub's own error text, nothing internal — is carried in the returned
// AppError. A response with no access token lands in the same class.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth: exchanging OAuth code: %w",
			apperror.UpstreamClient(exchangeErrorMessage(err)))
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("auth: exchanging OAuth code: %w",
			apperror.UpstreamClient("token response missing access_token"))
	}
	return token.AccessToken, nil
}

// FetchProfile calls GitHub's /user endpoint with the access token as a
// bearer credential and returns the full profile payload.
//
// Failures here are upstream SERVER errors: by this point the caller's code
// was valid, so a broken fetch is GitHub's (or our network's) fault and maps
// to a generic 500.
func (p *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	// The deadline travels on the context: oauth2's derived client reuses
	// only the base transport, so a client-level Timeout would be lost here.
	ctx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	// oauth2.Config.Client returns an *http.Client that attaches
	// "Authorization: Bearer <token>" to every request.
	client := p.config.Client(ctx, &oauth2.Token{AccessToken: accessToken})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building profile request: %w", apperror.UpstreamServer())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user: %w", apperror.UpstreamServer())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user returned status %d: %w",
			resp.StatusCode, apperror.UpstreamServer())
	}

	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", apperror.UpstreamServer())
	}

	login, _ := attrs["login"].(string)
	if login == "" {
		return nil, fmt.Errorf("auth: GitHub /user response has no login: %w", apperror.UpstreamServer())
	}

	return &Profile{Login: login, Attrs: attrs}, nil
}

// exchangeErrorMessage extracts a caller-safe message from a failed exchange.
// *oauth2.RetrieveError carries GitHub's error code and description; anything
// else (DNS, timeout, TLS) gets a fixed message so transport internals are
// never echoed back.
func exchangeErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			if re.ErrorDescription != "" {
				return re.ErrorCode + ": " + re.ErrorDescription
			}
			return re.ErrorCode
		}
		if re.Response != nil {
			return fmt.Sprintf("token endpoint returned status %d", re.Response.StatusCode)
		}
	}
	return "token exchange failed"
}
