// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package database

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/readnfeed/readnfeed/internal/logging"
	"github.com/readnfeed/readnfeed/internal/models"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// BreakerProvider wraps a DB with a circuit breaker so a failing storage
// backend makes recommendation requests fail fast instead of piling up on
// a stuck connection. NotFound results count as successes: they are
// answers, not failures.
type BreakerProvider struct {
	db *DB
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreakerProvider wraps db in a circuit breaker.
func NewBreakerProvider(db *DB) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "duckdb",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &BreakerProvider{
		db: db,
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// execute runs fn through the breaker, preserving its typed result.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (p *BreakerProvider) UserExists(ctx context.Context, userID string) (bool, error) {
	return execute(p.cb, func() (bool, error) { return p.db.UserExists(ctx, userID) })
}

func (p *BreakerProvider) ReadingProgress(ctx context.Context, userID string) ([]recommend.ReadingProgressEntry, error) {
	return execute(p.cb, func() ([]recommend.ReadingProgressEntry, error) { return p.db.ReadingProgress(ctx, userID) })
}

func (p *BreakerProvider) Likes(ctx context.Context, userID string) ([]recommend.LikeEntry, error) {
	return execute(p.cb, func() ([]recommend.LikeEntry, error) { return p.db.Likes(ctx, userID) })
}

func (p *BreakerProvider) Book(ctx context.Context, bookID string) (*models.Book, error) {
	return execute(p.cb, func() (*models.Book, error) { return p.db.Book(ctx, bookID) })
}

func (p *BreakerProvider) BookDetails(ctx context.Context, bookID string) (*recommend.BookDetails, error) {
	return execute(p.cb, func() (*recommend.BookDetails, error) { return p.db.BookDetails(ctx, bookID) })
}

func (p *BreakerProvider) Associations(ctx context.Context, bookID string) (*recommend.BookAssociations, error) {
	return execute(p.cb, func() (*recommend.BookAssociations, error) { return p.db.Associations(ctx, bookID) })
}

func (p *BreakerProvider) BooksByGenre(ctx context.Context, genreID string, limit int) ([]string, error) {
	return execute(p.cb, func() ([]string, error) { return p.db.BooksByGenre(ctx, genreID, limit) })
}

func (p *BreakerProvider) BooksByAuthor(ctx context.Context, authorID string, limit int) ([]string, error) {
	return execute(p.cb, func() ([]string, error) { return p.db.BooksByAuthor(ctx, authorID, limit) })
}

func (p *BreakerProvider) BooksByTag(ctx context.Context, tagID string, limit int) ([]string, error) {
	return execute(p.cb, func() ([]string, error) { return p.db.BooksByTag(ctx, tagID, limit) })
}

func (p *BreakerProvider) MostLiked(ctx context.Context, limit int) ([]string, error) {
	return execute(p.cb, func() ([]string, error) { return p.db.MostLiked(ctx, limit) })
}

func (p *BreakerProvider) RecentReleases(ctx context.Context, windowMonths, limit int) ([]string, error) {
	return execute(p.cb, func() ([]string, error) { return p.db.RecentReleases(ctx, windowMonths, limit) })
}

func (p *BreakerProvider) GenreName(ctx context.Context, genreID string) (string, error) {
	return execute(p.cb, func() (string, error) { return p.db.GenreName(ctx, genreID) })
}

func (p *BreakerProvider) AuthorName(ctx context.Context, authorID string) (string, error) {
	return execute(p.cb, func() (string, error) { return p.db.AuthorName(ctx, authorID) })
}

func (p *BreakerProvider) SaveFeedback(ctx context.Context, fb *recommend.Feedback) (bool, error) {
	return execute(p.cb, func() (bool, error) { return p.db.SaveFeedback(ctx, fb) })
}

// TopEntities passes the PreferenceAggregator capability through the
// breaker so the engine still takes the aggregate path.
func (p *BreakerProvider) TopEntities(ctx context.Context, bookIDs []string, kind recommend.EntityKind, limit int) ([]recommend.PreferenceWeight, error) {
	return execute(p.cb, func() ([]recommend.PreferenceWeight, error) {
		return p.db.TopEntities(ctx, bookIDs, kind, limit)
	})
}

var _ recommend.DataProvider = (*BreakerProvider)(nil)
var _ recommend.PreferenceAggregator = (*BreakerProvider)(nil)
