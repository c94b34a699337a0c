// Package config loads the service configuration from the environment.
//
// The configuration is an explicit typed struct, parsed and validated once at
// startup — handlers and services receive the values they need through their
// constructors, never by reading env vars themselves.
//
// A .env.<env> file (e.g. .env.local) is loaded first when present, matching
// how the service is run outside AWS. Real deployments set the variables
// directly and ship secrets through the secrets provider instead.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// Config holds every non-secret setting the service needs. Secrets (OAuth
// client secret, DB credentials, JWT key) are NOT here — they come from the
// secrets provider via the bundle loader.
type Config struct {
	// Env selects the runtime profile: "local" reads secrets from files and
	// loads .env.local; anything else expects env-provided secrets.
	Env string `env:"ENV" envDefault:"local"`

	Port int `env:"PORT" envDefault:"8080"`

	// GitHub OAuth app settings. The client secret is intentionally absent.
	GitHubClientID string `env:"CLIENT_ID"`
	RedirectURI    string `env:"GITHUB_OAUTH_REDIRECT_URI"`

	// Where the browser lands after a successful login, parameterized by the
	// GitHub login: <DashboardURL>?login=<login>.
	DashboardURL string `env:"DASHBOARD_URL" envDefault:"https://tgrafy.agulati.cc/dashboard"`

	// CookieDomain scopes the session cookie, e.g. ".agulati.cc".
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:".agulati.cc"`

	DBPath string `env:"DB_PATH" envDefault:"data/tgrafy.db"`

	// SecretsDir is where the file-backed secrets provider looks in local
	// mode (one file per secret, e.g. client-secret.txt).
	SecretsDir string `env:"SECRETS_DIR" envDefault:"resources"`

	// Secret names requested from the provider.
	SecretGitHubOAuth string `env:"SECRET_GITHUB_OAUTH" envDefault:"github-oauth-client-secret"`
	SecretDBUsername  string `env:"SECRET_DATABASE_USERNAME" envDefault:"database-username"`
	SecretDBPassword  string `env:"SECRET_DATABASE_PASSWORD" envDefault:"database-password"`
	SecretJWTKey      string `env:"SECRET_JWT_PRIVATE_KEY" envDefault:"jwt-private-key"`
}

// Load parses the environment into a Config and validates it.
//
// The .env.<env> file is optional — a missing file is not an error, since
// deployed environments configure through real env vars.
func Load() (*Config, error) {
	envName := "local"
	// Peek at ENV before parsing so we know which dotenv file to load.
	var peek struct {
		Env string `env:"ENV" envDefault:"local"`
	}
	if err := env.Parse(&peek); err == nil && peek.Env != "" {
		envName = strings.ToLower(peek.Env)
	}
	_ = godotenv.Load(".env." + envName)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the invariants construction promises: once a Config
// exists, its required fields are usable.
func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d: %w", c.Port, apperror.ErrConfiguration)
	}
	if c.GitHubClientID == "" {
		return fmt.Errorf("config: CLIENT_ID is required: %w", apperror.ErrConfiguration)
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("config: GITHUB_OAUTH_REDIRECT_URI is required: %w", apperror.ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(c.RedirectURI); err != nil {
		return fmt.Errorf("config: invalid redirect URI %q: %w", c.RedirectURI, apperror.ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(c.DashboardURL); err != nil {
		return fmt.Errorf("config: invalid dashboard URL %q: %w", c.DashboardURL, apperror.ErrConfiguration)
	}
	if c.CookieDomain == "" {
		return fmt.Errorf("config: COOKIE_DOMAIN is required: %w", apperror.ErrConfiguration)
	}
	return nil
}

// IsLocal reports whether the service runs in the local profile (file-backed
// secrets, sqlite file next to the binary).
func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Env, "local")
}

// SecretNames returns the four secret names the bundle loader requests, in
// the order the loader expects them.
func (c *Config) SecretNames() []string {
	return []string{
		c.SecretGitHubOAuth,
		c.SecretDBUsername,
		c.SecretDBPassword,
		c.SecretJWTKey,
	}
}
