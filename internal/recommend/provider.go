// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"

	"github.com/readnfeed/readnfeed/internal/models"
)

// HistoryReader supplies a user's interaction history.
type HistoryReader interface {
	// UserExists reports whether the user is known to the platform.
	UserExists(ctx context.Context, userID string) (bool, error)

	// ReadingProgress returns one entry per book the user has opened, the
	// most recently updated entry when multiple devices reported progress.
	ReadingProgress(ctx context.Context, userID string) ([]ReadingProgressEntry, error)

	// Likes returns the user's explicit likes.
	Likes(ctx context.Context, userID string) ([]LikeEntry, error)
}

// CatalogReader supplies book metadata and catalog pools.
type CatalogReader interface {
	// Book returns full metadata for a book, or models.ErrNotFound when it
	// does not exist.
	Book(ctx context.Context, bookID string) (*models.Book, error)

	// BookDetails returns display metadata for a book, or models.ErrNotFound.
	BookDetails(ctx context.Context, bookID string) (*BookDetails, error)

	// Associations returns a book's genre, author, and tag links.
	Associations(ctx context.Context, bookID string) (*BookAssociations, error)

	// BooksByGenre returns book IDs carrying the genre, most liked first,
	// capped at limit.
	BooksByGenre(ctx context.Context, genreID string, limit int) ([]string, error)

	// BooksByAuthor returns book IDs by the author, most liked first,
	// capped at limit.
	BooksByAuthor(ctx context.Context, authorID string, limit int) ([]string, error)

	// BooksByTag returns book IDs carrying the tag, most liked first,
	// capped at limit.
	BooksByTag(ctx context.Context, tagID string, limit int) ([]string, error)

	// MostLiked returns the top book IDs by like count, highest first.
	MostLiked(ctx context.Context, limit int) ([]string, error)

	// RecentReleases returns book IDs created within the last windowMonths
	// calendar months (the current month counts as the first), newest
	// first, capped at limit.
	RecentReleases(ctx context.Context, windowMonths, limit int) ([]string, error)

	// GenreName resolves a genre ID to its display name.
	GenreName(ctx context.Context, genreID string) (string, error)

	// AuthorName resolves an author ID to its display name.
	AuthorName(ctx context.Context, authorID string) (string, error)
}

// FeedbackStore persists recommendation feedback.
type FeedbackStore interface {
	// SaveFeedback records one feedback event. Implementations must be
	// idempotent on (userID, bookID, liked): replaying an event with an
	// unchanged liked state is a no-op, and like counters move by at most
	// one per state transition. Returns whether the book's like count
	// changed.
	SaveFeedback(ctx context.Context, fb *Feedback) (changed bool, err error)
}

// DataProvider is the full storage surface the engine depends on. The
// database package provides the production implementation; tests use an
// in-memory mock.
type DataProvider interface {
	HistoryReader
	CatalogReader
	FeedbackStore
}

// PreferenceAggregator is an optional DataProvider capability: a provider
// that can tally entity frequencies close to the data (for example in SQL)
// may implement it and the engine will use it instead of fetching every
// book's associations individually. Results must be ordered by frequency
// descending, ties broken by first appearance in bookIDs.
type PreferenceAggregator interface {
	TopEntities(ctx context.Context, bookIDs []string, kind EntityKind, limit int) ([]PreferenceWeight, error)
}
