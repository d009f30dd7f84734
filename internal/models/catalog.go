// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package models

import (
	"time"
)

// Book is a catalog book row. The catalog itself is maintained by the
// main platform; this service reads it and owns only the like counter.
type Book struct {
	// ID is the book's UUID.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// CoverImageURL points at the stored cover image, if any.
	CoverImageURL string `json:"cover_image_url,omitempty"`

	// AgeRestriction is the minimum reader age. 0 means unrestricted.
	AgeRestriction int `json:"age_restriction"`

	// LikeCount is the cached total like count, maintained atomically by
	// the feedback sink.
	LikeCount int `json:"like_count"`

	// CreatedAt is when the book entered the catalog. Drives the
	// new-releases scoring pass.
	CreatedAt time.Time `json:"created_at"`
}

// Author is a catalog author row.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Genre is a catalog genre row.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a catalog tag row.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
