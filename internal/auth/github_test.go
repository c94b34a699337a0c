package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// newTestProvider returns a GitHubProvider whose token and user endpoints
// point at the given httptest servers instead of github.com.
func newTestProvider(tokenURL, userURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			RedirectURL:  "https://api.example.com/callback",
			Scopes:       []string{"user:email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://github.com/login/oauth/authorize",
				TokenURL: tokenURL,
			},
		},
		userURL:    userURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAuthorizeURL(t *testing.T) {
	p := NewGitHubProvider("test-client-id", "test-client-secret",
		"https://api.example.com/api/v1/auth/oauth/github/callback")

	raw := p.AuthorizeURL()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthorizeURL() returned unparseable URL %q: %v", raw, err)
	}

	if u.Host != "github.com" {
		t.Errorf("host = %q, want github.com", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://api.example.com/api/v1/auth/oauth/github/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("scope") != "user:email" {
		t.Errorf("scope = %q, want user:email", q.Get("scope"))
	}
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("code"); got != "abc123" {
			t.Errorf("token endpoint received code %q, want abc123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ghu_xyz","token_type":"bearer"}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, "")
	token, err := p.ExchangeCode(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if token != "ghu_xyz" {
		t.Errorf("ExchangeCode() = %q, want ghu_xyz", token)
	}
}

func TestExchangeCode_UpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, "")
	_, err := p.ExchangeCode(context.Background(), "expired-code")
	if err == nil {
		t.Fatal("ExchangeCode() should fail on a provider rejection")
	}
	if !errors.Is(err, apperror.ErrUpstreamClient) {
		t.Errorf("error class = %v, want upstream client", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("error should carry an *AppError")
	}
	// The 400 body must carry the upstream error code, not our internals.
	if appErr.Message == "" || appErr.Message == "internal server error" {
		t.Errorf("Message = %q, want the upstream error text", appErr.Message)
	}
}

func TestExchangeCode_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, "")
	_, err := p.ExchangeCode(context.Background(), "abc123")
	if err == nil {
		t.Fatal("ExchangeCode() should fail when the response has no access token")
	}
	// Same failure class as a rejected code.
	if !errors.Is(err, apperror.ErrUpstreamClient) {
		t.Errorf("error class = %v, want upstream client", err)
	}
}

func TestFetchProfile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ghu_xyz" {
			t.Errorf("Authorization = %q, want Bearer ghu_xyz", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"login":"octocat","id":583231,"name":"The Octocat","company":"@github"}`))
	}))
	defer srv.Close()

	p := newTestProvider("", srv.URL)
	profile, err := p.FetchProfile(context.Background(), "ghu_xyz")
	if err != nil {
		t.Fatalf("FetchProfile() error = %v", err)
	}

	if profile.Login != "octocat" {
		t.Errorf("Login = %q, want octocat", profile.Login)
	}
	// The full payload is preserved, not just the fields we understand.
	if profile.Attrs["name"] != "The Octocat" {
		t.Errorf("Attrs[name] = %v", profile.Attrs["name"])
	}
	if profile.Attrs["company"] != "@github" {
		t.Errorf("Attrs[company] = %v", profile.Attrs["company"])
	}
}

func TestFetchProfile_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := newTestProvider("", srv.URL)
	_, err := p.FetchProfile(context.Background(), "ghu_xyz")
	if err == nil {
		t.Fatal("FetchProfile() should fail on a non-200 response")
	}
	if !errors.Is(err, apperror.ErrUpstreamServer) {
		t.Errorf("error class = %v, want upstream server", err)
	}
}

func TestFetchProfile_MissingLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":583231}`))
	}))
	defer srv.Close()

	p := newTestProvider("", srv.URL)
	_, err := p.FetchProfile(context.Background(), "ghu_xyz")
	if !errors.Is(err, apperror.ErrUpstreamServer) {
		t.Fatalf("FetchProfile() error = %v, want upstream server class", err)
	}
}
