package config

import (
	"errors"
	"testing"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
)

// setRequired sets the minimum env vars Load needs to succeed.
// t.Setenv restores the previous values automatically after the test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("CLIENT_ID", "Iv1.test-client-id")
	t.Setenv("GITHUB_OAUTH_REDIRECT_URI", "https://api.example.com/api/v1/auth/oauth/github/callback")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.CookieDomain != ".agulati.cc" {
		t.Errorf("CookieDomain = %q, want %q", cfg.CookieDomain, ".agulati.cc")
	}
	if cfg.DashboardURL != "https://tgrafy.agulati.cc/dashboard" {
		t.Errorf("DashboardURL = %q", cfg.DashboardURL)
	}
	if got := len(cfg.SecretNames()); got != 4 {
		t.Errorf("SecretNames() returned %d names, want 4", got)
	}
}

func TestLoad_MissingClientID(t *testing.T) {
	setRequired(t)
	t.Setenv("CLIENT_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail without CLIENT_ID")
	}
	if !errors.Is(err, apperror.ErrConfiguration) {
		t.Errorf("error should be a configuration error, got %v", err)
	}
}

func TestLoad_InvalidRedirectURI(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_OAUTH_REDIRECT_URI", "not a url")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail with a malformed redirect URI")
	}
	if !errors.Is(err, apperror.ErrConfiguration) {
		t.Errorf("error should be a configuration error, got %v", err)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "99999")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject an out-of-range port")
	}
}

func TestIsLocal(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "LOCAL") // case-insensitive

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.IsLocal() {
		t.Error("IsLocal() = false for ENV=LOCAL")
	}
}
