// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates the catalog and interaction tables. The catalog
// tables mirror the platform schema this service reads; this service owns
// only book_likes and the books.like_count counter.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			age INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS books (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			cover_image_url TEXT,
			age_restriction INTEGER NOT NULL DEFAULT 0,
			like_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS authors (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS genres (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS book_authors (
			book_id UUID NOT NULL,
			author_id UUID NOT NULL,
			PRIMARY KEY (book_id, author_id)
		)`,

		`CREATE TABLE IF NOT EXISTS book_genres (
			book_id UUID NOT NULL,
			genre_id UUID NOT NULL,
			PRIMARY KEY (book_id, genre_id)
		)`,

		`CREATE TABLE IF NOT EXISTS book_tags (
			book_id UUID NOT NULL,
			tag_id UUID NOT NULL,
			PRIMARY KEY (book_id, tag_id)
		)`,

		// One row per (user, book, device); the read path collapses
		// devices to the most recent entry per book.
		`CREATE TABLE IF NOT EXISTS reading_progress (
			user_id UUID NOT NULL,
			book_id UUID NOT NULL,
			device_id TEXT NOT NULL DEFAULT '',
			progress DOUBLE NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, book_id, device_id)
		)`,

		`CREATE TABLE IF NOT EXISTS book_likes (
			user_id UUID NOT NULL,
			book_id UUID NOT NULL,
			liked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, book_id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return db.createIndexes(ctx)
}

// createIndexes creates indexes for the hot recommendation query paths.
func (db *DB) createIndexes(ctx context.Context) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_books_like_count ON books(like_count DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_books_created_at ON books(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_book_genres_genre ON book_genres(genre_id)`,
		`CREATE INDEX IF NOT EXISTS idx_book_authors_author ON book_authors(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_book_tags_tag ON book_tags(tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reading_progress_user ON reading_progress(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_book_likes_user ON book_likes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_book_likes_book ON book_likes(book_id)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
