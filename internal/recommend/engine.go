// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/readnfeed/readnfeed/internal/cache"
	"github.com/readnfeed/readnfeed/internal/metrics"
	"github.com/readnfeed/readnfeed/internal/models"
)

// ResponseCache is the optional response cache the engine consults for
// personalized and similar-books responses. The cache package satisfies
// it; a nil cache disables caching entirely.
type ResponseCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// Engine assembles recommendation groups from interaction history. All
// scoring state is request-scoped; an Engine is safe for concurrent use.
type Engine struct {
	provider DataProvider
	cfg      *Config
	cache    ResponseCache
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables response caching.
func WithCache(c ResponseCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an Engine. A nil cfg uses DefaultConfig.
func NewEngine(provider DataProvider, cfg *Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	e := &Engine{
		provider: provider,
		cfg:      cfg,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Personalized builds the full grouped recommendation response for a user.
// Returns ErrUserNotFound when the user does not exist; all other degraded
// signals produce emptier groups rather than errors.
func (e *Engine) Personalized(ctx context.Context, params Params) (*PersonalizedResponse, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationRequests.WithLabelValues("personalized").Inc()
		metrics.RecommendationDuration.WithLabelValues("personalized").Observe(time.Since(start).Seconds())
	}()

	p := params.Normalized(e.cfg)

	var cacheKey string
	if e.cache != nil {
		cacheKey = cache.GenerateKey("personalized", p)
		if cached, ok := e.cache.Get(cacheKey); ok {
			if resp, ok := cached.(*PersonalizedResponse); ok {
				metrics.RecommendationCacheHits.Inc()
				return resp, nil
			}
		}
		metrics.RecommendationCacheMisses.Inc()
	}

	exists, err := e.provider.UserExists(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("check user %s: %w", p.UserID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, p.UserID)
	}

	snap, err := e.loadHistory(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load history for user %s: %w", p.UserID, err)
	}

	prefs, err := e.extractPreferences(ctx, snap.readBookIDs)
	if err != nil {
		return nil, fmt.Errorf("extract preferences for user %s: %w", p.UserID, err)
	}

	excluded := buildExclusions(p.ExcludeBookIDs, snap.readBookIDs, p.IncludeRead)
	board := newScoreBoard(excluded)

	// Passes run sequentially; each fans out its own provider reads.
	if err := e.scorePreferencePass(ctx, board, prefs.Genres, e.provider.BooksByGenre, p.GenreWeighting, popularityPoolSize); err != nil {
		return nil, err
	}
	if err := e.scorePreferencePass(ctx, board, prefs.Authors, e.provider.BooksByAuthor, p.AuthorWeighting, popularityPoolSize); err != nil {
		return nil, err
	}
	if err := e.scorePreferencePass(ctx, board, prefs.Tags, e.provider.BooksByTag, p.TagWeighting, popularityPoolSize); err != nil {
		return nil, err
	}
	if err := e.scorePopularityPass(ctx, board, p.PopularityWeighting); err != nil {
		return nil, err
	}
	newReleaseIDs, err := e.scoreNewReleasesPass(ctx, board)
	if err != nil {
		return nil, err
	}

	forYouScores := truncate(board.ranked(), p.Limit)
	trendingScores, err := e.trendingScores(ctx, p.Limit)
	if err != nil {
		return nil, err
	}
	newReleaseScores := newReleaseCandidates(newReleaseIDs, excluded, p.Limit)
	continueScores := continueReadingScores(snap.progress, p.Limit)

	// One enrichment fan-out covers every group.
	details, err := e.enrich(ctx, collectBookIDs(forYouScores, trendingScores, newReleaseScores, continueScores))
	if err != nil {
		return nil, err
	}

	resp := &PersonalizedResponse{
		ForYou: Group{
			ID:          "for-you",
			Title:       "For You",
			Description: "Picked from your reading history and likes",
			Source:      SourceUserHistory,
			Books:       e.toRecommendations(forYouScores, details, p.UserAge),
		},
		Trending: Group{
			ID:          "trending",
			Title:       "Trending Now",
			Description: "Most liked across the library",
			Source:      SourceTrending,
			Books:       e.toRecommendations(trendingScores, details, p.UserAge),
		},
	}

	if len(prefs.Genres) > 0 {
		resp.BasedOnGenres = e.genrePreferenceGroup(ctx, prefs.Genres, excluded, details, p)
	}
	if len(prefs.Authors) > 0 {
		resp.BasedOnAuthors = e.authorPreferenceGroup(ctx, prefs.Authors, excluded, details, p)
	}
	if books := e.toRecommendations(newReleaseScores, details, p.UserAge); len(books) > 0 {
		resp.NewReleases = &Group{
			ID:          "new-releases",
			Title:       "New Releases",
			Description: "Recently added to the library",
			Source:      SourceNewReleases,
			Books:       books,
		}
	}
	if books := e.toRecommendations(continueScores, details, p.UserAge); len(books) > 0 {
		resp.ContinueReading = &Group{
			ID:          "continue-reading",
			Title:       "Continue Reading",
			Description: "Pick up where you left off",
			Source:      SourceReadingProgress,
			Books:       books,
		}
	}

	if e.cache != nil {
		e.cache.Set(cacheKey, resp)
	}
	return resp, nil
}

// SimilarBooks scores the catalog against one anchor book's genre, author,
// and tag associations with fixed weights. The anchor must exist; missing
// candidates degrade per item.
func (e *Engine) SimilarBooks(ctx context.Context, bookID string, limit int, userAge *int) (*SimilarBooksResponse, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationRequests.WithLabelValues("similar").Inc()
		metrics.RecommendationDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	}()

	if limit <= 0 {
		limit = e.cfg.Limits.DefaultLimit
	}
	if limit > e.cfg.Limits.MaxLimit {
		limit = e.cfg.Limits.MaxLimit
	}

	anchor, err := e.provider.Book(ctx, bookID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
		return nil, fmt.Errorf("load book %s: %w", bookID, err)
	}

	assoc, err := e.provider.Associations(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("load associations for book %s: %w", bookID, err)
	}

	// The anchor never recommends itself.
	board := newScoreBoard(map[string]struct{}{bookID: {}})

	if err := e.scoreSimilarPass(ctx, board, assoc.GenreIDs, e.provider.BooksByGenre, similarGenreWeight, SourceGenreBased); err != nil {
		return nil, err
	}
	if err := e.scoreSimilarPass(ctx, board, assoc.AuthorIDs, e.provider.BooksByAuthor, similarAuthorWeight, SourceAuthorBased); err != nil {
		return nil, err
	}
	if err := e.scoreSimilarPass(ctx, board, assoc.TagIDs, e.provider.BooksByTag, similarTagWeight, SourceTagBased); err != nil {
		return nil, err
	}

	scores := truncate(board.ranked(), limit)
	details, err := e.enrich(ctx, collectBookIDs(scores))
	if err != nil {
		return nil, err
	}

	return &SimilarBooksResponse{
		OriginalBookID:    bookID,
		OriginalBookTitle: anchor.Title,
		Recommendations:   e.toRecommendations(scores, details, userAge),
	}, nil
}

// ByGenre returns the most liked books carrying a genre as a single group.
// The genre must exist.
func (e *Engine) ByGenre(ctx context.Context, genreID string, limit int, userAge *int) (*Group, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationRequests.WithLabelValues("by_genre").Inc()
		metrics.RecommendationDuration.WithLabelValues("by_genre").Observe(time.Since(start).Seconds())
	}()

	name, err := e.provider.GenreName(ctx, genreID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("genre %s: %w", genreID, err)
		}
		return nil, fmt.Errorf("load genre %s: %w", genreID, err)
	}
	return e.entityGroup(ctx, entityGroupSpec{
		id:          "genre-" + genreID,
		title:       name,
		description: "Top picks in " + name,
		source:      SourceGenreBased,
		fetch:       func(ctx context.Context, limit int) ([]string, error) { return e.provider.BooksByGenre(ctx, genreID, limit) },
	}, limit, userAge)
}

// ByAuthor returns the most liked books by an author as a single group.
// The author must exist.
func (e *Engine) ByAuthor(ctx context.Context, authorID string, limit int, userAge *int) (*Group, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationRequests.WithLabelValues("by_author").Inc()
		metrics.RecommendationDuration.WithLabelValues("by_author").Observe(time.Since(start).Seconds())
	}()

	name, err := e.provider.AuthorName(ctx, authorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("author %s: %w", authorID, err)
		}
		return nil, fmt.Errorf("load author %s: %w", authorID, err)
	}
	return e.entityGroup(ctx, entityGroupSpec{
		id:          "author-" + authorID,
		title:       name,
		description: "More from " + name,
		source:      SourceAuthorBased,
		fetch:       func(ctx context.Context, limit int) ([]string, error) { return e.provider.BooksByAuthor(ctx, authorID, limit) },
	}, limit, userAge)
}

type entityGroupSpec struct {
	id          string
	title       string
	description string
	source      Source
	fetch       func(ctx context.Context, limit int) ([]string, error)
}

func (e *Engine) entityGroup(ctx context.Context, spec entityGroupSpec, limit int, userAge *int) (*Group, error) {
	if limit <= 0 {
		limit = e.cfg.Limits.DefaultLimit
	}
	if limit > e.cfg.Limits.MaxLimit {
		limit = e.cfg.Limits.MaxLimit
	}

	ids, err := spec.fetch(ctx, limit)
	if err != nil {
		return nil, err
	}

	scores := rankDecayScores(ids, spec.source)
	details, err := e.enrich(ctx, collectBookIDs(scores))
	if err != nil {
		return nil, err
	}

	return &Group{
		ID:          spec.id,
		Title:       spec.title,
		Description: spec.description,
		Source:      spec.source,
		Books:       e.toRecommendations(scores, details, userAge),
	}, nil
}

// scoreSimilarPass credits every pool member of every anchor entity with a
// flat per-overlap weight. A book sharing two of the anchor's genres is
// credited twice.
func (e *Engine) scoreSimilarPass(ctx context.Context, board *scoreBoard, entityIDs []string, fetch poolFetch, weight float64, source Source) error {
	if len(entityIDs) == 0 {
		return nil
	}

	pools := make([][]string, len(entityIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EnrichmentConcurrency)
	for i, entityID := range entityIDs {
		g.Go(func() error {
			ids, err := fetch(gctx, entityID, popularityPoolSize)
			if err != nil {
				e.log.Warn().Err(err).Str("entity_id", entityID).
					Msg("similar pool fetch failed, dropping signal")
				return nil
			}
			pools[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, pool := range pools {
		for _, id := range pool {
			board.add(id, weight, source)
		}
	}
	return nil
}

// trendingScores builds the trending group from the global most-liked
// pool. Trending is not personalized, so the request exclusion set does
// not apply.
func (e *Engine) trendingScores(ctx context.Context, limit int) ([]CandidateScore, error) {
	ids, err := e.provider.MostLiked(ctx, popularityPoolSize)
	if err != nil {
		return nil, fmt.Errorf("load trending pool: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return rankDecayScores(ids, SourceTrending), nil
}

// genrePreferenceGroup builds the based-on-genres group from the user's
// top genre pools, scored by rank decay within each pool and the same
// normalized preference contribution used in the for-you pass. Pool fetch
// failures degrade to a nil group.
func (e *Engine) genrePreferenceGroup(ctx context.Context, prefs []PreferenceWeight, excluded map[string]struct{}, details map[string]*BookDetails, p Params) *Group {
	return e.preferenceGroup(ctx, prefs, e.provider.BooksByGenre, preferenceGroupSpec{
		id:          "based-on-genres",
		title:       "Based on Your Genres",
		description: "Because of the genres you read most",
		source:      SourceGenreBased,
		weighting:   p.GenreWeighting,
	}, excluded, details, p)
}

// authorPreferenceGroup mirrors genrePreferenceGroup for authors.
func (e *Engine) authorPreferenceGroup(ctx context.Context, prefs []PreferenceWeight, excluded map[string]struct{}, details map[string]*BookDetails, p Params) *Group {
	return e.preferenceGroup(ctx, prefs, e.provider.BooksByAuthor, preferenceGroupSpec{
		id:          "based-on-authors",
		title:       "Based on Your Authors",
		description: "More from the authors you read most",
		source:      SourceAuthorBased,
		weighting:   p.AuthorWeighting,
	}, excluded, details, p)
}

type preferenceGroupSpec struct {
	id          string
	title       string
	description string
	source      Source
	weighting   float64
}

func (e *Engine) preferenceGroup(ctx context.Context, prefs []PreferenceWeight, fetch poolFetch, spec preferenceGroupSpec, excluded map[string]struct{}, details map[string]*BookDetails, p Params) *Group {
	board := newScoreBoard(excluded)
	if err := e.scorePreferencePass(ctx, board, prefs, fetch, spec.weighting, popularityPoolSize); err != nil {
		e.log.Warn().Err(err).Str("group", spec.id).Msg("preference group scoring failed, omitting group")
		return nil
	}

	scores := truncate(board.ranked(), p.Limit)

	// Books outside the for-you enrichment set still need details.
	missing := make([]string, 0)
	for _, s := range scores {
		if _, ok := details[s.BookID]; !ok {
			missing = append(missing, s.BookID)
		}
	}
	if len(missing) > 0 {
		extra, err := e.enrich(ctx, missing)
		if err != nil {
			e.log.Warn().Err(err).Str("group", spec.id).Msg("preference group enrichment failed, omitting group")
			return nil
		}
		for id, d := range extra {
			details[id] = d
		}
	}

	books := e.toRecommendations(scores, details, p.UserAge)
	if len(books) == 0 {
		return nil
	}
	return &Group{
		ID:          spec.id,
		Title:       spec.title,
		Description: spec.description,
		Source:      spec.source,
		Books:       books,
	}
}

// newReleaseCandidates converts the new-releases pool into scored
// candidates, respecting the exclusion set and preserving the pool's
// newest-first order through rank decay plus the flat bonus.
func newReleaseCandidates(ids []string, excluded map[string]struct{}, limit int) []CandidateScore {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := excluded[id]; ok {
			continue
		}
		kept = append(kept, id)
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	scores := rankDecayScores(kept, SourceNewReleases)
	for i := range scores {
		scores[i].Score += newReleaseBonus
	}
	return scores
}

// continueReadingScores ranks in-progress books by remaining progress:
// score = 100 - progressPercent, so barely-started books surface first.
// Finished and untouched books are skipped.
func continueReadingScores(progress []ReadingProgressEntry, limit int) []CandidateScore {
	scores := make([]CandidateScore, 0, len(progress))
	for _, entry := range progress {
		pct := entry.Progress
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if pct <= 0 || pct >= 100 {
			continue
		}
		scores = append(scores, CandidateScore{
			BookID:  entry.BookID,
			Score:   100 - pct,
			Sources: []Source{SourceReadingProgress},
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].BookID < scores[j].BookID
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// enrich resolves display details for a set of book IDs with bounded
// fan-out. Per-book failures are logged and yield a nil entry rather than
// failing the batch.
func (e *Engine) enrich(ctx context.Context, bookIDs []string) (map[string]*BookDetails, error) {
	results := make([]*BookDetails, len(bookIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EnrichmentConcurrency)
	for i, bookID := range bookIDs {
		g.Go(func() error {
			d, err := e.provider.BookDetails(gctx, bookID)
			if err != nil {
				metrics.EnrichmentFailures.Inc()
				e.log.Warn().Err(err).Str("book_id", bookID).
					Msg("detail enrichment failed, returning bare entry")
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make(map[string]*BookDetails, len(bookIDs))
	for i, bookID := range bookIDs {
		if results[i] != nil {
			details[bookID] = results[i]
		}
	}
	return details, nil
}

// toRecommendations joins scores with enriched details and applies the
// age gate. Books without details pass through with a nil Details.
func (e *Engine) toRecommendations(scores []CandidateScore, details map[string]*BookDetails, userAge *int) []BookRecommendation {
	recs := make([]BookRecommendation, 0, len(scores))
	for _, s := range scores {
		recs = append(recs, BookRecommendation{
			BookID:  s.BookID,
			Score:   s.Score,
			Sources: s.Sources,
			Details: details[s.BookID],
		})
	}
	return filterByAge(recs, userAge)
}

func truncate(scores []CandidateScore, limit int) []CandidateScore {
	if len(scores) > limit {
		return scores[:limit]
	}
	return scores
}

// collectBookIDs gathers the deduplicated union of book IDs across
// candidate lists, preserving first-encounter order.
func collectBookIDs(lists ...[]CandidateScore) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s.BookID]; ok {
				continue
			}
			seen[s.BookID] = struct{}{}
			out = append(out, s.BookID)
		}
	}
	return out
}
