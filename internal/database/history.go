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

// UserExists reports whether the user is known to the platform.
func (db *DB) UserExists(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists)
	metrics.RecordDBQuery("select", "users", start, err)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return exists, nil
}

// ReadingProgress returns one entry per book the user has opened. When a
// book has progress from multiple devices only the most recently updated
// entry survives.
func (db *DB) ReadingProgress(ctx context.Context, userID string) ([]recommend.ReadingProgressEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, book_id, progress, updated_at
		 FROM reading_progress
		 WHERE user_id = ?
		 QUALIFY row_number() OVER (PARTITION BY book_id ORDER BY updated_at DESC) = 1
		 ORDER BY updated_at DESC`, userID)
	metrics.RecordDBQuery("select", "reading_progress", start, err)
	if err != nil {
		return nil, fmt.Errorf("query reading progress for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []recommend.ReadingProgressEntry
	for rows.Next() {
		var e recommend.ReadingProgressEntry
		if err := rows.Scan(&e.UserID, &e.BookID, &e.Progress, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Likes returns the user's explicit likes, most recent first.
func (db *DB) Likes(ctx context.Context, userID string) ([]recommend.LikeEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, book_id, liked_at
		 FROM book_likes
		 WHERE user_id = ?
		 ORDER BY liked_at DESC`, userID)
	metrics.RecordDBQuery("select", "book_likes", start, err)
	if err != nil {
		return nil, fmt.Errorf("query likes for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []recommend.LikeEntry
	for rows.Next() {
		var e recommend.LikeEntry
		if err := rows.Scan(&e.UserID, &e.BookID, &e.LikedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
