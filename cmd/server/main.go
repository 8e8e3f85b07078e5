// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package main is the entry point for the buzzrank server.
//
// Buzzrank serves personalized feed rankings and follow suggestions for
// the Buzz it social platform. The server initializes components in the
// following order:
//
//  1. Configuration: layered defaults, YAML file, and BUZZRANK_ env vars (Koanf v2)
//  2. Logging: structured zerolog output (json or console)
//  3. Database: pgx connection pool against the Buzz it Postgres cluster
//  4. Engine: preference profiles, content scoring, and follow suggestions
//  5. HTTP server: Chi router with the REST API and Prometheus metrics
//
// # Configuration
//
// The only required setting is the database DSN:
//
//	export BUZZRANK_DATABASE_DSN=postgres://buzzrank@db:5432/buzzit
//	./buzzrank
//
// See internal/config for the full list of settings.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests to complete
// (bounded by server.shutdown_timeout), then closes the database pool.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/buzzit/buzzrank/internal/api"
	"github.com/buzzit/buzzrank/internal/config"
	"github.com/buzzit/buzzrank/internal/logging"
	"github.com/buzzit/buzzrank/internal/recommend"
	"github.com/buzzit/buzzrank/internal/store"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("profile_cache", cfg.Recommend.CacheEnabled).
		Bool("diversity", cfg.Recommend.DiversityEnabled).
		Msg("Starting buzzrank")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	pool, err := store.Connect(connectCtx, cfg.Database.DSN, cfg.Database.MaxConns)
	cancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	logging.Info().Msg("Database connection established")

	st := store.New(pool, logging.Logger())

	engine, err := recommend.NewEngine(engineConfig(cfg), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	engine.SetDataProvider(st)

	handler := api.NewHandler(engine, st)
	router := api.NewRouter(handler, middlewareConfig(cfg))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown incomplete")
	} else {
		logging.Info().Msg("Server stopped")
	}
}

// engineConfig maps the service-level recommend settings onto the
// engine defaults, leaving unset values at their defaults.
func engineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()

	if cfg.Recommend.DefaultFeedLimit > 0 {
		ec.Limits.DefaultFeedLimit = cfg.Recommend.DefaultFeedLimit
	}
	if cfg.Recommend.MaxFeedLimit > 0 {
		ec.Limits.MaxFeedLimit = cfg.Recommend.MaxFeedLimit
	}
	if cfg.Recommend.MaxCandidates > 0 {
		ec.Limits.MaxCandidates = cfg.Recommend.MaxCandidates
	}

	ec.Cache.Enabled = cfg.Recommend.CacheEnabled
	if cfg.Recommend.CacheTTL > 0 {
		ec.Cache.TTL = cfg.Recommend.CacheTTL
	}
	if cfg.Recommend.CacheMaxEntries > 0 {
		ec.Cache.MaxEntries = cfg.Recommend.CacheMaxEntries
	}

	ec.Diversity.Enabled = cfg.Recommend.DiversityEnabled
	if cfg.Recommend.DiversityLambda > 0 {
		ec.Diversity.MMRLambda = cfg.Recommend.DiversityLambda
	}

	return ec
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mw
}
