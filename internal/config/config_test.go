// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchClientContract(t *testing.T) {
	cfg := defaultConfig()

	// Weighting defaults are part of the API contract with existing clients.
	assert.Equal(t, 20, cfg.Recommend.DefaultLimit)
	assert.InDelta(t, 1.0, cfg.Recommend.GenreWeighting, 1e-9)
	assert.InDelta(t, 1.0, cfg.Recommend.AuthorWeighting, 1e-9)
	assert.InDelta(t, 0.8, cfg.Recommend.TagWeighting, 1e-9)
	assert.InDelta(t, 1.2, cfg.Recommend.RecentActivityWeighting, 1e-9)
	assert.InDelta(t, 0.7, cfg.Recommend.PopularityWeighting, 1e-9)
	assert.False(t, cfg.Recommend.CacheEnabled)
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero default limit", func(c *Config) { c.Recommend.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.Recommend.MaxLimit = 5 }},
		{"negative weighting", func(c *Config) { c.Recommend.TagWeighting = -0.1 }},
		{"zero enrichment concurrency", func(c *Config) { c.Recommend.EnrichmentConcurrency = 0 }},
		{"zero rate limit", func(c *Config) { c.API.RateLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("RNF_SERVER_PORT", "9999")
	t.Setenv("RNF_RECOMMEND_DEFAULT_LIMIT", "10")
	t.Setenv("RNF_DATABASE_PATH", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Recommend.DefaultLimit)
	assert.Equal(t, ":memory:", cfg.Database.Path)

	// Untouched values keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RNF_SERVER_PORT", "server.port"},
		{"RNF_RECOMMEND_DEFAULT_LIMIT", "recommend.default_limit"},
		{"RNF_DATABASE_PATH", "database.path"},
		{"RNF_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransform(tt.in))
	}
}
