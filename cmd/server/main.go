// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Cinematch stopped with error")
	}
}

func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("catalog", cfg.Catalog.Path).
		Bool("catalog_watch", cfg.Catalog.Watch).
		Dur("catalog_reload_interval", cfg.Catalog.ReloadInterval).
		Str("embedding_provider", cfg.Embedding.Provider).
		Msg("Starting Cinematch with supervisor tree")

	if cfg.ShouldWarnAboutCORS() {
		logger.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS to restrict it")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := initRecommend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing catalog snapshot store")
		}
	}()

	handler := api.NewHandler(comps.Engine, cfg.Recommend.DefaultLimit)
	middleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, middleware, cfg.Server.Timeout)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: catalog reload on change or schedule
	if cfg.Catalog.Watch || cfg.Catalog.ReloadInterval > 0 {
		tree.AddDataService(services.NewCatalogService(comps.Store, services.CatalogServiceConfig{
			Path:           cfg.Catalog.Path,
			Watch:          cfg.Catalog.Watch,
			ReloadInterval: cfg.Catalog.ReloadInterval,
		}, logger))
		logger.Info().Msg("Catalog reloader added to supervisor tree")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout, logger))

	// === START SUPERVISOR TREE ===
	logger.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// ServeBackground delivers exactly one error when the tree stops
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	stop()

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logger.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	stats := comps.Engine.Stats()
	logger.Info().
		Int64("requests", stats.Requests).
		Int64("errors", stats.Errors).
		Msg("Application stopped gracefully")

	return nil
}
