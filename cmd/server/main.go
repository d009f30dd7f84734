// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

// Package main is the entry point for the read-n-feed recommendation
// service.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config.yaml, RNF_ env vars (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB catalog and interaction store, wrapped in a
//     circuit breaker
//  4. Engine: the recommendation engine, with an optional response cache
//  5. HTTP server: chi REST API plus /metrics
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests up to the
// configured shutdown timeout, then closes the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/readnfeed/readnfeed/internal/api"
	"github.com/readnfeed/readnfeed/internal/cache"
	"github.com/readnfeed/readnfeed/internal/config"
	"github.com/readnfeed/readnfeed/internal/database"
	"github.com/readnfeed/readnfeed/internal/logging"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Bool("cache_enabled", cfg.Recommend.CacheEnabled).
		Msg("Starting read-n-feed recommendation service")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedSampleData {
		if err := db.SeedSampleData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed sample data")
		}
	}

	provider := database.NewBreakerProvider(db)

	engineCfg := &recommend.Config{
		Limits: recommend.Limits{
			DefaultLimit: cfg.Recommend.DefaultLimit,
			MaxLimit:     cfg.Recommend.MaxLimit,
		},
		Weights: recommend.Weights{
			Genre:          cfg.Recommend.GenreWeighting,
			Author:         cfg.Recommend.AuthorWeighting,
			Tag:            cfg.Recommend.TagWeighting,
			Popularity:     cfg.Recommend.PopularityWeighting,
			RecentActivity: cfg.Recommend.RecentActivityWeighting,
		},
		EnrichmentConcurrency: cfg.Recommend.EnrichmentConcurrency,
	}

	opts := []recommend.Option{recommend.WithLogger(logging.Logger())}
	if cfg.Recommend.CacheEnabled {
		opts = append(opts, recommend.WithCache(cache.New(cfg.Recommend.CacheTTL)))
	}
	engine := recommend.NewEngine(provider, engineCfg, opts...)

	handler := api.NewHandler(engine, db, cfg)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Shutdown complete")
}
