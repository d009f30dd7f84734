// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"time"
)

// Source identifies the scoring signal that contributed to a
// recommendation. Surfaced to clients for transparency and UI badges.
type Source string

const (
	SourceGenreBased      Source = "GENRE_BASED"
	SourceAuthorBased     Source = "AUTHOR_BASED"
	SourceTagBased        Source = "TAG_BASED"
	SourceUserHistory     Source = "USER_HISTORY"
	SourceSimilarUsers    Source = "SIMILAR_USERS"
	SourceReadingProgress Source = "READING_PROGRESS"
	SourceTrending        Source = "TRENDING"
	SourceNewReleases     Source = "NEW_RELEASES"
	SourceEditorChoice    Source = "EDITOR_CHOICE"
)

// EntityKind classifies a preference entity.
type EntityKind string

const (
	KindGenre  EntityKind = "GENRE"
	KindAuthor EntityKind = "AUTHOR"
	KindTag    EntityKind = "TAG"
)

// sourceForKind maps a preference kind to its recommendation source tag.
func sourceForKind(kind EntityKind) Source {
	switch kind {
	case KindAuthor:
		return SourceAuthorBased
	case KindTag:
		return SourceTagBased
	default:
		return SourceGenreBased
	}
}

// ReadingProgressEntry is one reading-progress fact for a user. At most one
// entry exists per (book, device); the history reader collapses devices to
// the most recently updated entry per book.
type ReadingProgressEntry struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`

	// Progress is the completion percentage in [0, 100].
	Progress float64 `json:"progress"`

	UpdatedAt time.Time `json:"updated_at"`
}

// LikeEntry is one explicit like fact for a user.
type LikeEntry struct {
	UserID  string    `json:"user_id"`
	BookID  string    `json:"book_id"`
	LikedAt time.Time `json:"liked_at"`
}

// BookAssociations holds a book's genre/author/tag links from the catalog.
type BookAssociations struct {
	GenreIDs  []string `json:"genre_ids"`
	AuthorIDs []string `json:"author_ids"`
	TagIDs    []string `json:"tag_ids"`
}

// PreferenceWeight is one entry in a user's ranked preference set, derived
// per request and never persisted.
type PreferenceWeight struct {
	// EntityID is the genre, author, or tag ID.
	EntityID string `json:"entity_id"`

	// Kind classifies the entity.
	Kind EntityKind `json:"kind"`

	// Frequency counts how many of the user's read/liked books carry the
	// entity.
	Frequency int `json:"frequency"`

	// Rank is the 1-based position within the kind, most frequent first.
	Rank int `json:"rank"`
}

// Preferences holds a user's ranked top genres, authors, and tags. Each
// list is capped at MaxPreferencesPerKind entries.
type Preferences struct {
	Genres  []PreferenceWeight
	Authors []PreferenceWeight
	Tags    []PreferenceWeight
}

// Empty reports whether no preferences of any kind were extracted.
func (p *Preferences) Empty() bool {
	return len(p.Genres) == 0 && len(p.Authors) == 0 && len(p.Tags) == 0
}

// CandidateScore is a book's accumulated relevance score for one request.
// Scores accumulate additively across independent signal contributions;
// Sources is the union of every signal that contributed a non-zero amount.
type CandidateScore struct {
	BookID  string   `json:"book_id"`
	Score   float64  `json:"score"`
	Sources []Source `json:"sources"`
}

// BookDetails is the display metadata joined from the catalog during
// enrichment.
type BookDetails struct {
	Title          string   `json:"title"`
	CoverImageURL  string   `json:"cover_image_url,omitempty"`
	Authors        []string `json:"authors"`
	Genres         []string `json:"genres"`
	AgeRestriction int      `json:"age_restriction"`
}

// BookRecommendation is one scored book in a response. Details is nil when
// the book could not be resolved against the catalog (soft failure): the
// entry is still returned with score and sources only.
type BookRecommendation struct {
	BookID  string       `json:"book_id"`
	Score   float64      `json:"score"`
	Sources []Source     `json:"sources"`
	Details *BookDetails `json:"book_details,omitempty"`
}

// Group is a named, sourced recommendation group. Created fresh per
// response and never stored.
type Group struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Source      Source               `json:"source"`
	Books       []BookRecommendation `json:"books"`
}

// PersonalizedResponse is the grouped personalized recommendation payload.
// ForYou and Trending are always present, even when empty. The remaining
// groups are omitted entirely when their inclusion conditions fail; a nil
// pointer (not an empty group) encodes absence.
type PersonalizedResponse struct {
	ForYou          Group  `json:"for_you"`
	Trending        Group  `json:"trending"`
	BasedOnGenres   *Group `json:"based_on_genres,omitempty"`
	BasedOnAuthors  *Group `json:"based_on_authors,omitempty"`
	NewReleases     *Group `json:"new_releases,omitempty"`
	ContinueReading *Group `json:"continue_reading,omitempty"`
}

// SimilarBooksResponse is the flat similar-books payload.
type SimilarBooksResponse struct {
	OriginalBookID    string               `json:"original_book_id"`
	OriginalBookTitle string               `json:"original_book_title"`
	Recommendations   []BookRecommendation `json:"recommendations"`
}

// Params configures one personalized recommendation request. The defaults
// applied by Normalized must not change: existing clients depend on them.
type Params struct {
	// UserID is the user to recommend for.
	UserID string `json:"user_id"`

	// Limit caps each group's length. Defaults to 20.
	Limit int `json:"limit,omitempty"`

	// IncludeRead keeps the user's already-read books scoreable.
	IncludeRead bool `json:"include_read,omitempty"`

	// ExcludeBookIDs is a caller-supplied exclusion set, merged with the
	// read-book set unless IncludeRead is true.
	ExcludeBookIDs []string `json:"exclude_book_ids,omitempty"`

	// UserAge gates age-restricted content. When nil, all restricted
	// books are hidden.
	UserAge *int `json:"user_age,omitempty"`

	GenreWeighting      float64 `json:"genre_weighting,omitempty"`
	AuthorWeighting     float64 `json:"author_weighting,omitempty"`
	TagWeighting        float64 `json:"tag_weighting,omitempty"`
	PopularityWeighting float64 `json:"popularity_weighting,omitempty"`

	// RecentActivityWeighting is accepted for compatibility with existing
	// clients. No scoring pass currently consumes it.
	RecentActivityWeighting float64 `json:"recent_activity_weighting,omitempty"`
}

// Normalized returns a copy of p with zero-valued fields replaced by the
// engine defaults and Limit clamped to the configured maximum.
func (p Params) Normalized(cfg *Config) Params {
	if p.Limit <= 0 {
		p.Limit = cfg.Limits.DefaultLimit
	}
	if p.Limit > cfg.Limits.MaxLimit {
		p.Limit = cfg.Limits.MaxLimit
	}
	if p.GenreWeighting == 0 {
		p.GenreWeighting = cfg.Weights.Genre
	}
	if p.AuthorWeighting == 0 {
		p.AuthorWeighting = cfg.Weights.Author
	}
	if p.TagWeighting == 0 {
		p.TagWeighting = cfg.Weights.Tag
	}
	if p.PopularityWeighting == 0 {
		p.PopularityWeighting = cfg.Weights.Popularity
	}
	if p.RecentActivityWeighting == 0 {
		p.RecentActivityWeighting = cfg.Weights.RecentActivity
	}
	return p
}
