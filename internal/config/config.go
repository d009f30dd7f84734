// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

// Package config provides layered application configuration:
// built-in defaults, an optional YAML file, and RNF_-prefixed
// environment variables, in increasing order of priority.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	API       APIConfig       `koanf:"api"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" runs fully in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads sets the DuckDB thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedSampleData loads a small sample catalog on startup.
	// Intended for local development only.
	SeedSampleData bool `koanf:"seed_sample_data"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	// RateLimit is the per-IP request budget within RateLimitWindow.
	RateLimit       int           `koanf:"rate_limit"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RequestTimeout bounds recommendation request handling.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// RecommendConfig holds recommendation engine settings. The weightings are
// operator defaults; request parameters override them per call.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	GenreWeighting          float64 `koanf:"genre_weighting"`
	AuthorWeighting         float64 `koanf:"author_weighting"`
	TagWeighting            float64 `koanf:"tag_weighting"`
	RecentActivityWeighting float64 `koanf:"recent_activity_weighting"`
	PopularityWeighting     float64 `koanf:"popularity_weighting"`

	// EnrichmentConcurrency bounds parallel catalog lookups per request.
	EnrichmentConcurrency int `koanf:"enrichment_concurrency"`

	// CacheEnabled turns on the per-user response cache. Off by default so
	// every request recomputes from live interaction data.
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// Default returns a Config with the built-in default values. Used by
// tests and as the base layer of Load.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "/data/readnfeed.duckdb",
			MaxMemory:      "1GB",
			Threads:        0, // 0 = use runtime.NumCPU()
			SeedSampleData: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		API: APIConfig{
			RateLimit:          300,
			RateLimitWindow:    time.Minute,
			CORSAllowedOrigins: []string{"*"},
			RequestTimeout:     10 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultLimit:            20,
			MaxLimit:                100,
			GenreWeighting:          1.0,
			AuthorWeighting:         1.0,
			TagWeighting:            0.8,
			RecentActivityWeighting: 1.2,
			PopularityWeighting:     0.7,
			EnrichmentConcurrency:   8,
			CacheEnabled:            false,
			CacheTTL:                5 * time.Minute,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("recommend.default_limit must be at least 1, got %d", c.Recommend.DefaultLimit)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit (%d) must be >= recommend.default_limit (%d)",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if c.Recommend.EnrichmentConcurrency < 1 {
		return fmt.Errorf("recommend.enrichment_concurrency must be at least 1, got %d",
			c.Recommend.EnrichmentConcurrency)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"genre_weighting", c.Recommend.GenreWeighting},
		{"author_weighting", c.Recommend.AuthorWeighting},
		{"tag_weighting", c.Recommend.TagWeighting},
		{"recent_activity_weighting", c.Recommend.RecentActivityWeighting},
		{"popularity_weighting", c.Recommend.PopularityWeighting},
	} {
		if w.value < 0 {
			return fmt.Errorf("recommend.%s must not be negative, got %f", w.name, w.value)
		}
	}
	if c.API.RateLimit < 1 {
		return fmt.Errorf("api.rate_limit must be at least 1, got %d", c.API.RateLimit)
	}
	return nil
}
