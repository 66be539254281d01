// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package main is the entry point for the Vitrine server application.
//
// Vitrine is a multi-tenant storefront gateway that serves per-tenant
// storefront pages resolved by hostname. Tenant data is pulled from an
// upstream commerce API into an embedded DuckDB store on a schedule, so
// the request path never depends on upstream availability.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Store: Initialize the embedded DuckDB snapshot store
//  3. Upstream Client: Circuit-breaker wrapped client for the commerce API
//  4. Sync Manager: Periodic full-dataset refresh into the store
//  5. Resolver + SEO Renderer: Hostname-to-tenant resolution and page rendering
//  6. HTTP Server: Storefront catch-all plus the JSON API
//
// All long-running components run under a Suture supervisor tree; a
// crash in the sync layer never takes the serving path down.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Minimal setup:
//
//	export UPSTREAM_URL=https://api.example.com
//	export UPSTREAM_TOKEN=your-api-token
//	./vitrine
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Drains any in-flight sync cycle and closes the store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vitrine/internal/api"
	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/resolver"
	"github.com/tomtom215/vitrine/internal/seo"
	"github.com/tomtom215/vitrine/internal/store"
	"github.com/tomtom215/vitrine/internal/supervisor"
	"github.com/tomtom215/vitrine/internal/sync"
	"github.com/tomtom215/vitrine/internal/upstream"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Vitrine with supervisor tree")
	logging.Info().
		Str("upstream_url", cfg.Upstream.URL).
		Str("db_path", cfg.Database.Path).
		Dur("sync_interval", cfg.Sync.Interval).
		Bool("maintenance_mode", cfg.Server.MaintenanceMode).
		Msg("Configuration loaded")

	// Initialize the embedded snapshot store
	db, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store initialized successfully")

	// Upstream client with circuit breaker for fault tolerance. A failed
	// ping is non-fatal: the sync loop retries and the serving path keeps
	// answering from the last committed snapshot.
	client := upstream.NewCircuitBreakerClient(&cfg.Upstream)
	if err := client.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to reach upstream API (will retry)")
	} else {
		logging.Info().Msg("Connected to upstream API successfully")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Sync manager (not started here - supervisor will start it)
	syncManager := sync.NewManager(db, client, &cfg.Sync)

	// Resolution cache is cleared after every sync so lookups never
	// outlive the snapshot generation they were computed from.
	hostResolver := resolver.NewCached(db, 4096, cfg.Sync.Interval)
	renderer := seo.New(&cfg.SEO)

	handler := api.NewHandler(db, hostResolver, renderer, syncManager, &cfg.Server)
	router := api.NewRouter(handler, &cfg.Server)

	syncManager.SetOnSyncCompleted(func(tenants int, durationMs int64) {
		hostResolver.InvalidateCache()
		logging.Debug().
			Int("tenants", tenants).
			Int64("duration_ms", durationMs).
			Msg("Snapshot refreshed, resolution cache cleared")
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddSyncService(supervisor.NewSyncService(syncManager))
	logging.Info().Msg("Sync manager added to supervisor tree")

	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
