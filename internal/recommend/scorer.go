// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// scoreBoard accumulates per-book scores for one request. Contributions
// are additive and each records its source. Not safe for concurrent use;
// passes run sequentially and fan out only their provider reads.
type scoreBoard struct {
	scores  map[string]float64
	sources map[string]map[Source]struct{}

	// excluded books never receive score.
	excluded map[string]struct{}
}

func newScoreBoard(excluded map[string]struct{}) *scoreBoard {
	return &scoreBoard{
		scores:   make(map[string]float64),
		sources:  make(map[string]map[Source]struct{}),
		excluded: excluded,
	}
}

// add credits amount to bookID under the given source. Zero and negative
// amounts are dropped so sources only ever record real contributions.
func (b *scoreBoard) add(bookID string, amount float64, source Source) {
	if amount <= 0 {
		return
	}
	if _, ok := b.excluded[bookID]; ok {
		return
	}
	b.scores[bookID] += amount
	set, ok := b.sources[bookID]
	if !ok {
		set = make(map[Source]struct{})
		b.sources[bookID] = set
	}
	set[source] = struct{}{}
}

// ranked returns all scored books ordered by score descending, ties broken
// by book ID ascending so equal scores order deterministically.
func (b *scoreBoard) ranked() []CandidateScore {
	out := make([]CandidateScore, 0, len(b.scores))
	for bookID, score := range b.scores {
		set := b.sources[bookID]
		sources := make([]Source, 0, len(set))
		for s := range set {
			sources = append(sources, s)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
		out = append(out, CandidateScore{BookID: bookID, Score: score, Sources: sources})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].BookID < out[j].BookID
	})
	return out
}

// poolFetch resolves one preference entity to its candidate book pool.
type poolFetch func(ctx context.Context, entityID string, limit int) ([]string, error)

// scorePreferencePass runs one preference-driven scoring pass. For every
// preferred entity the pool is fetched and each member book is credited
//
//	(frequency / totalFrequency) * weighting
//
// so stronger preferences contribute more, normalized within their kind.
// Pools for different entities are fetched concurrently; scoring applies
// after the join since the board is not concurrency-safe.
func (e *Engine) scorePreferencePass(ctx context.Context, board *scoreBoard, prefs []PreferenceWeight, fetch poolFetch, weighting float64, poolLimit int) error {
	if len(prefs) == 0 || weighting <= 0 {
		return nil
	}
	total := totalFrequency(prefs)
	if total == 0 {
		return nil
	}

	pools := make([][]string, len(prefs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EnrichmentConcurrency)
	for i, pref := range prefs {
		g.Go(func() error {
			ids, err := fetch(gctx, pref.EntityID, poolLimit)
			if err != nil {
				e.log.Warn().Err(err).
					Str("entity_id", pref.EntityID).
					Str("kind", string(pref.Kind)).
					Msg("candidate pool fetch failed, dropping signal")
				return nil
			}
			pools[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, pref := range prefs {
		contribution := float64(pref.Frequency) / float64(total) * weighting
		source := sourceForKind(pref.Kind)
		for _, bookID := range pools[i] {
			board.add(bookID, contribution, source)
		}
	}
	return nil
}

// scorePopularityPass credits the top liked books with a linearly decaying
// rank bonus: the best-ranked book gets the full popularity weighting and
// the last book in the pool gets 1/poolSize of it.
func (e *Engine) scorePopularityPass(ctx context.Context, board *scoreBoard, weighting float64) error {
	if weighting <= 0 {
		return nil
	}
	ids, err := e.provider.MostLiked(ctx, popularityPoolSize)
	if err != nil {
		e.log.Warn().Err(err).Msg("popularity pool fetch failed, dropping signal")
		return nil
	}
	for i, bookID := range ids {
		amount := float64(popularityPoolSize-i) / float64(popularityPoolSize) * weighting
		board.add(bookID, amount, SourceTrending)
	}
	return nil
}

// scoreNewReleasesPass credits recent releases with a flat bonus that does
// not scale with any weighting. Returns the pool so the assembler can
// build the new-releases group from the same fetch.
func (e *Engine) scoreNewReleasesPass(ctx context.Context, board *scoreBoard) ([]string, error) {
	ids, err := e.provider.RecentReleases(ctx, newReleaseWindowMonths, newReleasePoolSize)
	if err != nil {
		e.log.Warn().Err(err).Msg("new releases fetch failed, dropping signal")
		return nil, nil
	}
	for _, bookID := range ids {
		board.add(bookID, newReleaseBonus, SourceNewReleases)
	}
	return ids, nil
}

// buildExclusions merges the caller's exclusion list with the user's read
// books unless includeRead asks to keep them.
func buildExclusions(excludeBookIDs, readBookIDs []string, includeRead bool) map[string]struct{} {
	excluded := make(map[string]struct{}, len(excludeBookIDs)+len(readBookIDs))
	for _, id := range excludeBookIDs {
		excluded[id] = struct{}{}
	}
	if !includeRead {
		for _, id := range readBookIDs {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// rankDecayScores assigns (n-i)/n scores to an ordered pool, used for the
// by-genre and by-author groups whose pools arrive already ordered by like
// count.
func rankDecayScores(ids []string, source Source) []CandidateScore {
	n := len(ids)
	out := make([]CandidateScore, n)
	for i, bookID := range ids {
		out[i] = CandidateScore{
			BookID:  bookID,
			Score:   float64(n-i) / float64(n),
			Sources: []Source{source},
		}
	}
	return out
}
