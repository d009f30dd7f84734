// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"
	"math"
	"testing"
)

func TestScoreBoardAccumulatesAdditively(t *testing.T) {
	board := newScoreBoard(nil)
	board.add("b1", 0.5, SourceGenreBased)
	board.add("b1", 0.3, SourceAuthorBased)
	board.add("b2", 0.4, SourceGenreBased)

	ranked := board.ranked()
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].BookID != "b1" || math.Abs(ranked[0].Score-0.8) > 1e-9 {
		t.Errorf("top = %s/%.2f, want b1/0.80", ranked[0].BookID, ranked[0].Score)
	}
	if len(ranked[0].Sources) != 2 {
		t.Errorf("b1 sources = %v, want both contributing sources", ranked[0].Sources)
	}
}

func TestScoreBoardIgnoresZeroAndExcluded(t *testing.T) {
	board := newScoreBoard(map[string]struct{}{"banned": {}})
	board.add("banned", 1.0, SourceGenreBased)
	board.add("b1", 0, SourceGenreBased)
	board.add("b1", -1, SourceGenreBased)

	if got := board.ranked(); len(got) != 0 {
		t.Errorf("got %d candidates, want none", len(got))
	}
}

func TestScoreBoardDeterministicTieBreak(t *testing.T) {
	for range 10 {
		board := newScoreBoard(nil)
		board.add("zeta", 1.0, SourceTrending)
		board.add("alpha", 1.0, SourceTrending)
		board.add("mid", 1.0, SourceTrending)

		ranked := board.ranked()
		if ranked[0].BookID != "alpha" || ranked[1].BookID != "mid" || ranked[2].BookID != "zeta" {
			t.Fatalf("ties must order by book ID: got %s %s %s",
				ranked[0].BookID, ranked[1].BookID, ranked[2].BookID)
		}
	}
}

func TestPreferencePassContribution(t *testing.T) {
	// Fantasy is the only preferred genre: frequency 2 of total 2, so a
	// matching candidate receives exactly (2/2) * 1.0 = 1.0.
	m := newMockProvider()
	m.addBook("c", "Candidate", 0, &BookAssociations{GenreIDs: []string{"fantasy"}})
	e := NewEngine(m, nil)

	board := newScoreBoard(nil)
	prefs := []PreferenceWeight{{EntityID: "fantasy", Kind: KindGenre, Frequency: 2, Rank: 1}}
	if err := e.scorePreferencePass(context.Background(), board, prefs, m.BooksByGenre, 1.0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranked := board.ranked()
	if len(ranked) != 1 {
		t.Fatalf("got %d candidates, want 1", len(ranked))
	}
	if math.Abs(ranked[0].Score-1.0) > 1e-9 {
		t.Errorf("contribution = %f, want 1.0", ranked[0].Score)
	}
	if len(ranked[0].Sources) != 1 || ranked[0].Sources[0] != SourceGenreBased {
		t.Errorf("sources = %v, want GENRE_BASED", ranked[0].Sources)
	}
}

func TestPreferencePassNormalizesAcrossEntities(t *testing.T) {
	m := newMockProvider()
	m.addBook("f", "Fantasy Book", 0, &BookAssociations{GenreIDs: []string{"fantasy"}})
	m.addBook("s", "SciFi Book", 0, &BookAssociations{GenreIDs: []string{"scifi"}})
	e := NewEngine(m, nil)

	board := newScoreBoard(nil)
	prefs := []PreferenceWeight{
		{EntityID: "fantasy", Kind: KindGenre, Frequency: 3, Rank: 1},
		{EntityID: "scifi", Kind: KindGenre, Frequency: 1, Rank: 2},
	}
	if err := e.scorePreferencePass(context.Background(), board, prefs, m.BooksByGenre, 1.0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranked := board.ranked()
	if ranked[0].BookID != "f" || math.Abs(ranked[0].Score-0.75) > 1e-9 {
		t.Errorf("fantasy candidate = %s/%.2f, want f/0.75", ranked[0].BookID, ranked[0].Score)
	}
	if ranked[1].BookID != "s" || math.Abs(ranked[1].Score-0.25) > 1e-9 {
		t.Errorf("scifi candidate = %s/%.2f, want s/0.25", ranked[1].BookID, ranked[1].Score)
	}
}

func TestPopularityPassMonotonicDecay(t *testing.T) {
	m := newMockProvider()
	m.mostLiked = []string{"p1", "p2", "p3"}
	e := NewEngine(m, nil)

	board := newScoreBoard(nil)
	if err := e.scorePopularityPass(context.Background(), board, 0.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(board.scores["p1"]-(50.0/50.0)*0.7) > 1e-9 {
		t.Errorf("rank 0 score = %f", board.scores["p1"])
	}
	if math.Abs(board.scores["p2"]-(49.0/50.0)*0.7) > 1e-9 {
		t.Errorf("rank 1 score = %f", board.scores["p2"])
	}
	if !(board.scores["p1"] > board.scores["p2"] && board.scores["p2"] > board.scores["p3"]) {
		t.Error("popularity contribution must decrease with rank")
	}
}

func TestNewReleasesPassFlatBonus(t *testing.T) {
	m := newMockProvider()
	m.recent = []string{"n1", "n2"}
	e := NewEngine(m, nil)

	board := newScoreBoard(nil)
	ids, err := e.scoreNewReleasesPass(context.Background(), board)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got pool %v, want 2 entries", ids)
	}
	for _, id := range ids {
		if math.Abs(board.scores[id]-newReleaseBonus) > 1e-9 {
			t.Errorf("book %s score = %f, want flat %f", id, board.scores[id], newReleaseBonus)
		}
	}
}

func TestBuildExclusions(t *testing.T) {
	excluded := buildExclusions([]string{"x"}, []string{"r1", "r2"}, false)
	for _, id := range []string{"x", "r1", "r2"} {
		if _, ok := excluded[id]; !ok {
			t.Errorf("%s missing from exclusion set", id)
		}
	}

	withRead := buildExclusions([]string{"x"}, []string{"r1"}, true)
	if _, ok := withRead["r1"]; ok {
		t.Error("includeRead must keep read books scoreable")
	}
	if _, ok := withRead["x"]; !ok {
		t.Error("explicit exclusions apply regardless of includeRead")
	}
}

func TestRankDecayScores(t *testing.T) {
	scores := rankDecayScores([]string{"a", "b", "c", "d"}, SourceTrending)
	if math.Abs(scores[0].Score-1.0) > 1e-9 || math.Abs(scores[3].Score-0.25) > 1e-9 {
		t.Errorf("decay endpoints = %f, %f", scores[0].Score, scores[3].Score)
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Score >= scores[i-1].Score {
			t.Error("rank decay must be strictly decreasing")
		}
	}
}

func TestContinueReadingScores(t *testing.T) {
	entries := []ReadingProgressEntry{
		{BookID: "nearly-done", Progress: 95},
		{BookID: "just-started", Progress: 5},
		{BookID: "halfway", Progress: 50},
		{BookID: "finished", Progress: 100},
		{BookID: "untouched", Progress: 0},
	}

	scores := continueReadingScores(entries, 10)
	if len(scores) != 3 {
		t.Fatalf("got %d entries, want 3 (finished and untouched skipped)", len(scores))
	}
	if scores[0].BookID != "just-started" || math.Abs(scores[0].Score-95) > 1e-9 {
		t.Errorf("top = %s/%.0f, want just-started/95", scores[0].BookID, scores[0].Score)
	}
	if scores[2].BookID != "nearly-done" {
		t.Errorf("last = %s, want nearly-done", scores[2].BookID)
	}
}

func TestContinueReadingScoresClampsProgress(t *testing.T) {
	entries := []ReadingProgressEntry{
		{BookID: "broken-high", Progress: 150},
		{BookID: "broken-low", Progress: -10},
		{BookID: "ok", Progress: 30},
	}

	scores := continueReadingScores(entries, 10)
	if len(scores) != 1 || scores[0].BookID != "ok" {
		t.Errorf("out-of-range progress must clamp and drop, got %+v", scores)
	}
}
