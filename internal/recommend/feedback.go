// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/readnfeed/readnfeed/internal/metrics"
	"github.com/readnfeed/readnfeed/internal/models"
)

// Feedback is one explicit like/unlike event.
type Feedback struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
	Liked  bool   `json:"liked"`
}

// RecordFeedback persists a feedback event. The operation is idempotent:
// re-submitting an unchanged liked state is a no-op and the book's like
// counter moves by at most one per actual state transition. Unlike the
// read paths, failures here propagate as hard errors so an explicit user
// action is never silently lost.
func (e *Engine) RecordFeedback(ctx context.Context, fb *Feedback) error {
	if fb == nil || fb.UserID == "" || fb.BookID == "" {
		return ErrInvalidFeedback
	}

	if _, err := e.provider.Book(ctx, fb.BookID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBookNotFound, fb.BookID)
		}
		return fmt.Errorf("load book %s: %w", fb.BookID, err)
	}

	changed, err := e.provider.SaveFeedback(ctx, fb)
	if err != nil {
		return fmt.Errorf("save feedback for user %s book %s: %w", fb.UserID, fb.BookID, err)
	}

	action := "noop"
	if changed {
		if fb.Liked {
			action = "like"
		} else {
			action = "unlike"
		}
	}
	metrics.FeedbackEvents.WithLabelValues(action).Inc()

	e.log.Debug().
		Str("user_id", fb.UserID).
		Str("book_id", fb.BookID).
		Bool("liked", fb.Liked).
		Bool("changed", changed).
		Msg("feedback recorded")

	return nil
}
