// Package main is the entry point for the TGRAFY dashboard auth service.
//
// main does three things and nothing else: load configuration, load the
// secret bundle (fatal if incomplete — there is no degraded mode), and start
// the server. All logic lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agulati/tgrafy-dashboard/internal/config"
	"github.com/agulati/tgrafy-dashboard/internal/secrets"
	"github.com/agulati/tgrafy-dashboard/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Local runs read secrets from files (one per secret, under SecretsDir);
	// everything else takes them from the environment.
	var provider secrets.Provider
	if cfg.IsLocal() {
		provider = secrets.NewFileProvider(cfg.SecretsDir)
	} else {
		provider = secrets.NewEnvProvider()
	}

	loader, err := secrets.NewLoader(provider, cfg.SecretNames())
	if err != nil {
		logger.Error("failed to create secret loader", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// An incomplete bundle fails the whole process at boot, never per-request.
	bundle, err := loader.Load(context.Background())
	if err != nil {
		logger.Error("failed to load secret bundle", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, bundle, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
