// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/readnfeed/readnfeed/internal/logging"
)

// SeedSampleData loads a small sample catalog with a demo user, reading
// history, and likes. Intended for local development and demos only; the
// production catalog is synced from the main platform.
func (db *DB) SeedSampleData(ctx context.Context) error {
	var bookCount int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&bookCount); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if bookCount > 0 {
		logging.Debug().Int("books", bookCount).Msg("Catalog not empty, skipping sample data")
		return nil
	}

	logging.Info().Msg("Seeding sample catalog...")

	genres := map[string]string{}
	for _, name := range []string{"Fantasy", "Science Fiction", "Mystery", "Romance", "History"} {
		id := uuid.NewString()
		genres[name] = id
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO genres (id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("seed genre %s: %w", name, err)
		}
	}

	authors := map[string]string{}
	for _, name := range []string{"Iris Vale", "Marcus Holt", "Sana Qureshi", "Theo Brandt"} {
		id := uuid.NewString()
		authors[name] = id
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO authors (id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("seed author %s: %w", name, err)
		}
	}

	tags := map[string]string{}
	for _, name := range []string{"dragons", "space-opera", "detective", "slow-burn", "epic"} {
		id := uuid.NewString()
		tags[name] = id
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO tags (id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("seed tag %s: %w", name, err)
		}
	}

	books := []struct {
		title          string
		genre          string
		author         string
		tags           []string
		ageRestriction int
		likeCount      int
		ageDays        int
	}{
		{"The Ember Crown", "Fantasy", "Iris Vale", []string{"dragons", "epic"}, 0, 42, 400},
		{"Ashes of the North", "Fantasy", "Iris Vale", []string{"epic"}, 0, 31, 200},
		{"Starlight Convoy", "Science Fiction", "Marcus Holt", []string{"space-opera"}, 0, 58, 90},
		{"The Silent Orbit", "Science Fiction", "Marcus Holt", []string{"space-opera"}, 12, 17, 20},
		{"A Knife in the Fog", "Mystery", "Sana Qureshi", []string{"detective"}, 16, 25, 300},
		{"The Locked Garden", "Mystery", "Sana Qureshi", []string{"detective"}, 0, 12, 10},
		{"Letters to Winter", "Romance", "Theo Brandt", []string{"slow-burn"}, 0, 36, 150},
		{"The Iron Chancellor", "History", "Theo Brandt", nil, 0, 9, 5},
	}

	demoUser := uuid.NewString()
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, age) VALUES (?, 'demo', 25)`, demoUser); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	for i, b := range books {
		bookID := uuid.NewString()
		createdAt := time.Now().AddDate(0, 0, -b.ageDays)
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO books (id, title, age_restriction, like_count, created_at) VALUES (?, ?, ?, ?, ?)`,
			bookID, b.title, b.ageRestriction, b.likeCount, createdAt); err != nil {
			return fmt.Errorf("seed book %s: %w", b.title, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO book_genres (book_id, genre_id) VALUES (?, ?)`, bookID, genres[b.genre]); err != nil {
			return err
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO book_authors (book_id, author_id) VALUES (?, ?)`, bookID, authors[b.author]); err != nil {
			return err
		}
		for _, tag := range b.tags {
			if _, err := db.conn.ExecContext(ctx,
				`INSERT INTO book_tags (book_id, tag_id) VALUES (?, ?)`, bookID, tags[tag]); err != nil {
				return err
			}
		}

		// Give the demo user some history on the first two books.
		if i < 2 {
			if _, err := db.conn.ExecContext(ctx,
				`INSERT INTO reading_progress (user_id, book_id, device_id, progress) VALUES (?, ?, 'web', ?)`,
				demoUser, bookID, 30.0+float64(i)*40); err != nil {
				return err
			}
		}
	}

	logging.Info().Int("books", len(books)).Msg("Sample catalog seeded")
	return nil
}
