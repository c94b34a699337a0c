// Package server wires the dependency graph and runs the HTTP server.
//
// This is the composition root: handlers, services, the GitHub provider, the
// token service, and the user store are all constructed here, each layer
// receiving only the dependencies it needs. main.go stays minimal — it loads
// config and the secret bundle, then hands both to New.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/agulati/tgrafy-dashboard/internal/auth"
	"github.com/agulati/tgrafy-dashboard/internal/config"
	"github.com/agulati/tgrafy-dashboard/internal/handler"
	"github.com/agulati/tgrafy-dashboard/internal/middleware"
	sqliteRepo "github.com/agulati/tgrafy-dashboard/internal/repository/sqlite"
	"github.com/agulati/tgrafy-dashboard/internal/secrets"
	"github.com/agulati/tgrafy-dashboard/internal/service"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph from the validated config and the
// loaded secret bundle.
func New(cfg *config.Config, bundle secrets.Bundle, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(bundle.JWTSigningKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	github := auth.NewGitHubProvider(cfg.GitHubClientID, bundle.GitHubClientSecret, cfg.RedirectURI)
	authService := service.NewAuthService(github, tokens, db, logger)
	authHandler := handler.NewAuthHandler(authService, cfg.DashboardURL, cfg.CookieDomain, logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(authHandler)
	return s, nil
}

// setupRoutes registers middleware and the route table.
//
//	GET /api/v1/auth/oauth/github           → 302 to GitHub authorize
//	GET /api/v1/auth/oauth/github/callback  → completes the login
//	GET /api/v1/user/profile                → stored user record
//	GET /health                             → liveness
func (s *Server) setupRoutes(authHandler *handler.AuthHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth/oauth/github", func(r chi.Router) {
			r.Get("/", authHandler.HandleGitHubOAuth)
			r.Get("/callback", authHandler.HandleGitHubCallback)
		})
		r.Get("/user/profile", authHandler.HandleProfile)
	})
	s.router.Get("/health", handler.HandleHealth)
}

// Handler exposes the router, mainly for tests against the full route table.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.Env),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
