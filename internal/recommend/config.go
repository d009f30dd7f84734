// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

// Pool sizes and scoring constants. These are contract values shared with
// existing clients; change them only together with the client teams.
const (
	// MaxPreferencesPerKind caps each preference list (genres, authors,
	// tags) extracted from a user's history.
	MaxPreferencesPerKind = 5

	// popularityPoolSize is how many top-liked books the trending pass
	// considers.
	popularityPoolSize = 50

	// newReleasePoolSize caps the new-releases candidate pool.
	newReleasePoolSize = 30

	// newReleaseWindowMonths is the calendar-month window for new releases:
	// the current month and the one before it.
	newReleaseWindowMonths = 2

	// newReleaseBonus is the flat score added to every new release,
	// independent of all weightings.
	newReleaseBonus = 0.5

	// Fixed similar-books weights. Request weightings do not apply in
	// similar mode.
	similarGenreWeight  = 1.2
	similarAuthorWeight = 1.5
	similarTagWeight    = 1.0
)

// Limits bounds request sizes.
type Limits struct {
	// DefaultLimit applies when a request omits its limit.
	DefaultLimit int

	// MaxLimit clamps any requested limit.
	MaxLimit int
}

// Weights are the operator-default scoring weightings. Request parameters
// override them per call.
type Weights struct {
	Genre          float64
	Author         float64
	Tag            float64
	Popularity     float64
	RecentActivity float64
}

// Config holds engine settings.
type Config struct {
	Limits  Limits
	Weights Weights

	// EnrichmentConcurrency bounds parallel catalog lookups per request.
	EnrichmentConcurrency int
}

// DefaultConfig returns the engine defaults used when no operator
// configuration is supplied.
func DefaultConfig() *Config {
	return &Config{
		Limits: Limits{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Weights: Weights{
			Genre:          1.0,
			Author:         1.0,
			Tag:            0.8,
			Popularity:     0.7,
			RecentActivity: 1.2,
		},
		EnrichmentConcurrency: 8,
	}
}
