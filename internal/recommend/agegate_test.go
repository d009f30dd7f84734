// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import "testing"

func intPtr(v int) *int { return &v }

func TestIsAgeEligible(t *testing.T) {
	tests := []struct {
		name        string
		restriction int
		userAge     *int
		want        bool
	}{
		{"unrestricted, no age", 0, nil, true},
		{"unrestricted, with age", 0, intPtr(8), true},
		{"restricted, no age", 12, nil, false},
		{"restricted, too young", 12, intPtr(10), false},
		{"restricted, old enough", 12, intPtr(15), true},
		{"restricted, exact age", 12, intPtr(12), true},
		{"negative restriction treated as unrestricted", -1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAgeEligible(tt.restriction, tt.userAge); got != tt.want {
				t.Errorf("IsAgeEligible(%d, %v) = %v, want %v",
					tt.restriction, tt.userAge, got, tt.want)
			}
		})
	}
}

func TestFilterByAge(t *testing.T) {
	recs := []BookRecommendation{
		{BookID: "open", Details: &BookDetails{AgeRestriction: 0}},
		{BookID: "teen", Details: &BookDetails{AgeRestriction: 12}},
		{BookID: "adult", Details: &BookDetails{AgeRestriction: 18}},
		{BookID: "unresolved"},
	}

	t.Run("unknown age hides all restricted", func(t *testing.T) {
		got := filterByAge(append([]BookRecommendation(nil), recs...), nil)
		if len(got) != 2 {
			t.Fatalf("got %d entries, want 2", len(got))
		}
		if got[0].BookID != "open" || got[1].BookID != "unresolved" {
			t.Errorf("unexpected survivors: %v, %v", got[0].BookID, got[1].BookID)
		}
	})

	t.Run("age 15 keeps teen content", func(t *testing.T) {
		got := filterByAge(append([]BookRecommendation(nil), recs...), intPtr(15))
		if len(got) != 3 {
			t.Fatalf("got %d entries, want 3", len(got))
		}
		for _, rec := range got {
			if rec.BookID == "adult" {
				t.Error("adult content should be filtered for age 15")
			}
		}
	})
}
