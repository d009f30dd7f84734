// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/readnfeed/readnfeed/internal/metrics"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// SaveFeedback records one like/unlike event inside a transaction. The
// existence check and the like_count adjustment commit atomically, and
// the counter moves via a relative UPDATE rather than a read-modify-write
// so concurrent feedback from different users cannot lose updates.
// Returns whether the book's like count changed.
func (db *DB) SaveFeedback(ctx context.Context, fb *recommend.Feedback) (bool, error) {
	start := time.Now()
	changed, err := db.saveFeedbackTx(ctx, fb)
	metrics.RecordDBQuery("upsert", "book_likes", start, err)
	return changed, err
}

func (db *DB) saveFeedbackTx(ctx context.Context, fb *recommend.Feedback) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin feedback tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM book_likes WHERE user_id = ? AND book_id = ?)`,
		fb.UserID, fb.BookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing like: %w", err)
	}

	// Idempotence: re-submitting the current state is a no-op.
	if exists == fb.Liked {
		return false, nil
	}

	if fb.Liked {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_likes (user_id, book_id, liked_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
			fb.UserID, fb.BookID); err != nil {
			return false, fmt.Errorf("insert like: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET like_count = like_count + 1 WHERE id = ?`, fb.BookID); err != nil {
			return false, fmt.Errorf("increment like count: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM book_likes WHERE user_id = ? AND book_id = ?`,
			fb.UserID, fb.BookID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE books SET like_count = like_count - 1 WHERE id = ? AND like_count > 0`, fb.BookID); err != nil {
			return false, fmt.Errorf("decrement like count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit feedback tx: %w", err)
	}
	return true, nil
}
