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

// historySnapshot is a user's interaction history collapsed to the book
// IDs the preference extractor and exclusion logic need. readBookIDs
// preserves encounter order: reading-progress books first, then liked
// books not already seen.
type historySnapshot struct {
	progress    []ReadingProgressEntry
	likes       []LikeEntry
	readBookIDs []string
}

// loadHistory fetches reading progress and likes concurrently and merges
// them into a deduplicated book ID list.
func (e *Engine) loadHistory(ctx context.Context, userID string) (*historySnapshot, error) {
	snap := &historySnapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.progress, err = e.provider.ReadingProgress(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.likes, err = e.provider.Likes(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(snap.progress)+len(snap.likes))
	for _, entry := range snap.progress {
		if _, ok := seen[entry.BookID]; ok {
			continue
		}
		seen[entry.BookID] = struct{}{}
		snap.readBookIDs = append(snap.readBookIDs, entry.BookID)
	}
	for _, like := range snap.likes {
		if _, ok := seen[like.BookID]; ok {
			continue
		}
		seen[like.BookID] = struct{}{}
		snap.readBookIDs = append(snap.readBookIDs, like.BookID)
	}

	return snap, nil
}

// extractPreferences builds the user's top-N genre, author, and tag
// preferences from the books in their history. Frequencies count books,
// not events: a book both read and liked contributes once.
//
// When the provider implements PreferenceAggregator the tally is delegated
// to it (one aggregate query per kind). Otherwise associations are fetched
// per book with bounded fan-out and tallied here.
func (e *Engine) extractPreferences(ctx context.Context, bookIDs []string) (*Preferences, error) {
	if len(bookIDs) == 0 {
		return &Preferences{}, nil
	}

	if agg, ok := e.provider.(PreferenceAggregator); ok {
		return e.aggregatedPreferences(ctx, agg, bookIDs)
	}

	assocs := make([]*BookAssociations, len(bookIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EnrichmentConcurrency)
	for i, bookID := range bookIDs {
		g.Go(func() error {
			a, err := e.provider.Associations(gctx, bookID)
			if err != nil {
				// A book missing from the catalog contributes nothing.
				e.log.Debug().Err(err).Str("book_id", bookID).
					Msg("association lookup failed, skipping book")
				return nil
			}
			assocs[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	genres := newTally()
	authors := newTally()
	tags := newTally()
	for _, a := range assocs {
		if a == nil {
			continue
		}
		genres.addAll(a.GenreIDs)
		authors.addAll(a.AuthorIDs)
		tags.addAll(a.TagIDs)
	}

	return &Preferences{
		Genres:  genres.top(KindGenre, MaxPreferencesPerKind),
		Authors: authors.top(KindAuthor, MaxPreferencesPerKind),
		Tags:    tags.top(KindTag, MaxPreferencesPerKind),
	}, nil
}

func (e *Engine) aggregatedPreferences(ctx context.Context, agg PreferenceAggregator, bookIDs []string) (*Preferences, error) {
	prefs := &Preferences{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs.Genres, err = agg.TopEntities(gctx, bookIDs, KindGenre, MaxPreferencesPerKind)
		return err
	})
	g.Go(func() error {
		var err error
		prefs.Authors, err = agg.TopEntities(gctx, bookIDs, KindAuthor, MaxPreferencesPerKind)
		return err
	})
	g.Go(func() error {
		var err error
		prefs.Tags, err = agg.TopEntities(gctx, bookIDs, KindTag, MaxPreferencesPerKind)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return prefs, nil
}

// tally counts entity frequencies while remembering first-encounter order
// so that equal frequencies rank deterministically.
type tally struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newTally() *tally {
	return &tally{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

func (t *tally) addAll(ids []string) {
	for _, id := range ids {
		if _, ok := t.counts[id]; !ok {
			t.order[id] = t.next
			t.next++
		}
		t.counts[id]++
	}
}

// top returns the limit most frequent entities as ranked preference
// weights. Ties break toward the entity encountered first.
func (t *tally) top(kind EntityKind, limit int) []PreferenceWeight {
	if len(t.counts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(t.counts))
	for id := range t.counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if t.counts[a] != t.counts[b] {
			return t.counts[a] > t.counts[b]
		}
		return t.order[a] < t.order[b]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}

	weights := make([]PreferenceWeight, len(ids))
	for i, id := range ids {
		weights[i] = PreferenceWeight{
			EntityID:  id,
			Kind:      kind,
			Frequency: t.counts[id],
			Rank:      i + 1,
		}
	}
	return weights
}

// totalFrequency sums the frequencies of a preference list. Used as the
// normalization denominator in the preference scoring pass.
func totalFrequency(weights []PreferenceWeight) int {
	total := 0
	for _, w := range weights {
		total += w.Frequency
	}
	return total
}
