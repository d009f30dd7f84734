// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

// IsAgeEligible reports whether a book with the given age restriction may
// be shown to a user of the given age. Unrestricted books (restriction 0)
// are always eligible. For restricted books an unknown age (nil) denies:
// the gate defaults closed rather than leaking restricted content.
func IsAgeEligible(restriction int, userAge *int) bool {
	if restriction <= 0 {
		return true
	}
	if userAge == nil {
		return false
	}
	return *userAge >= restriction
}

// filterByAge removes age-ineligible recommendations in place, preserving
// order. Entries without resolved details carry no restriction metadata
// and pass through.
func filterByAge(recs []BookRecommendation, userAge *int) []BookRecommendation {
	out := recs[:0]
	for _, rec := range recs {
		if rec.Details != nil && !IsAgeEligible(rec.Details.AgeRestriction, userAge) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
