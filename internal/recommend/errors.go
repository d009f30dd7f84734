// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import "errors"

var (
	// ErrBookNotFound is returned by similar-books mode when the anchor
	// book does not exist. Missing candidate books during enrichment are a
	// soft failure and never produce this error.
	ErrBookNotFound = errors.New("book not found")

	// ErrUserNotFound is returned when the target user of a personalized
	// request does not exist. Missing history alone never produces this
	// error; the engine degrades to trending-only groups instead.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidFeedback is returned when a feedback event fails
	// validation.
	ErrInvalidFeedback = errors.New("invalid feedback event")
)
