// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/readnfeed/readnfeed/internal/metrics"
	"github.com/readnfeed/readnfeed/internal/models"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// Book returns a catalog book by ID.
func (db *DB) Book(ctx context.Context, bookID string) (*models.Book, error) {
	start := time.Now()

	var (
		book     models.Book
		coverURL sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, cover_image_url, age_restriction, like_count, created_at
		 FROM books WHERE id = ?`, bookID,
	).Scan(&book.ID, &book.Title, &coverURL, &book.AgeRestriction, &book.LikeCount, &book.CreatedAt)
	metrics.RecordDBQuery("select", "books", start, ignoreNoRows(err))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book %s: %w", bookID, err)
	}
	book.CoverImageURL = coverURL.String
	return &book, nil
}

// BookDetails returns display metadata for a book with author and genre
// names resolved.
func (db *DB) BookDetails(ctx context.Context, bookID string) (*recommend.BookDetails, error) {
	book, err := db.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}

	authors, err := db.namesFor(ctx, bookID,
		`SELECT a.name FROM book_authors ba
		 JOIN authors a ON a.id = ba.author_id
		 WHERE ba.book_id = ? ORDER BY a.name`, "authors")
	if err != nil {
		return nil, err
	}

	genres, err := db.namesFor(ctx, bookID,
		`SELECT g.name FROM book_genres bg
		 JOIN genres g ON g.id = bg.genre_id
		 WHERE bg.book_id = ? ORDER BY g.name`, "genres")
	if err != nil {
		return nil, err
	}

	return &recommend.BookDetails{
		Title:          book.Title,
		CoverImageURL:  book.CoverImageURL,
		Authors:        authors,
		Genres:         genres,
		AgeRestriction: book.AgeRestriction,
	}, nil
}

func (db *DB) namesFor(ctx context.Context, bookID, query, table string) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, bookID)
	metrics.RecordDBQuery("select", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s for book %s: %w", table, bookID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Associations returns a book's genre, author, and tag links.
func (db *DB) Associations(ctx context.Context, bookID string) (*recommend.BookAssociations, error) {
	assoc := &recommend.BookAssociations{}

	var err error
	if assoc.GenreIDs, err = db.idsFor(ctx, bookID,
		`SELECT genre_id FROM book_genres WHERE book_id = ? ORDER BY genre_id`, "book_genres"); err != nil {
		return nil, err
	}
	if assoc.AuthorIDs, err = db.idsFor(ctx, bookID,
		`SELECT author_id FROM book_authors WHERE book_id = ? ORDER BY author_id`, "book_authors"); err != nil {
		return nil, err
	}
	if assoc.TagIDs, err = db.idsFor(ctx, bookID,
		`SELECT tag_id FROM book_tags WHERE book_id = ? ORDER BY tag_id`, "book_tags"); err != nil {
		return nil, err
	}
	return assoc, nil
}

func (db *DB) idsFor(ctx context.Context, bookID, query, table string) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, bookID)
	metrics.RecordDBQuery("select", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s for book %s: %w", table, bookID, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// BooksByGenre returns book IDs carrying the genre, most liked first.
func (db *DB) BooksByGenre(ctx context.Context, genreID string, limit int) ([]string, error) {
	return db.booksByEntity(ctx,
		`SELECT b.id FROM books b
		 JOIN book_genres bg ON bg.book_id = b.id
		 WHERE bg.genre_id = ?
		 ORDER BY b.like_count DESC, b.id
		 LIMIT ?`, genreID, limit, "book_genres")
}

// BooksByAuthor returns book IDs by the author, most liked first.
func (db *DB) BooksByAuthor(ctx context.Context, authorID string, limit int) ([]string, error) {
	return db.booksByEntity(ctx,
		`SELECT b.id FROM books b
		 JOIN book_authors ba ON ba.book_id = b.id
		 WHERE ba.author_id = ?
		 ORDER BY b.like_count DESC, b.id
		 LIMIT ?`, authorID, limit, "book_authors")
}

// BooksByTag returns book IDs carrying the tag, most liked first.
func (db *DB) BooksByTag(ctx context.Context, tagID string, limit int) ([]string, error) {
	return db.booksByEntity(ctx,
		`SELECT b.id FROM books b
		 JOIN book_tags bt ON bt.book_id = b.id
		 WHERE bt.tag_id = ?
		 ORDER BY b.like_count DESC, b.id
		 LIMIT ?`, tagID, limit, "book_tags")
}

func (db *DB) booksByEntity(ctx context.Context, query, entityID string, limit int, table string) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, entityID, limit)
	metrics.RecordDBQuery("select", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s pool: %w", table, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// MostLiked returns the top book IDs by like count, highest first with a
// deterministic tie-break on ID.
func (db *DB) MostLiked(ctx context.Context, limit int) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM books ORDER BY like_count DESC, id LIMIT ?`, limit)
	metrics.RecordDBQuery("select", "books", start, err)
	if err != nil {
		return nil, fmt.Errorf("query most liked: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// RecentReleases returns book IDs created within the last windowMonths
// calendar months, newest first. The window is anchored to the start of
// the month so "2 months" means this month and the previous one.
func (db *DB) RecentReleases(ctx context.Context, windowMonths, limit int) ([]string, error) {
	now := time.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(windowMonths - 1), 0)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM books WHERE created_at >= ? ORDER BY created_at DESC, id LIMIT ?`,
		cutoff, limit)
	metrics.RecordDBQuery("select", "books", start, err)
	if err != nil {
		return nil, fmt.Errorf("query recent releases: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// GenreName resolves a genre ID to its display name.
func (db *DB) GenreName(ctx context.Context, genreID string) (string, error) {
	return db.nameByID(ctx, `SELECT name FROM genres WHERE id = ?`, genreID, "genres")
}

// AuthorName resolves an author ID to its display name.
func (db *DB) AuthorName(ctx context.Context, authorID string) (string, error) {
	return db.nameByID(ctx, `SELECT name FROM authors WHERE id = ?`, authorID, "authors")
}

func (db *DB) nameByID(ctx context.Context, query, id, table string) (string, error) {
	start := time.Now()
	var name string
	err := db.conn.QueryRowContext(ctx, query, id).Scan(&name)
	metrics.RecordDBQuery("select", table, start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query %s %s: %w", table, id, err)
	}
	return name, nil
}

// TopEntities tallies entity frequency across a book set in one query per
// kind, implementing the recommend.PreferenceAggregator capability.
// Results order by frequency descending with ties broken by first
// appearance in bookIDs.
func (db *DB) TopEntities(ctx context.Context, bookIDs []string, kind recommend.EntityKind, limit int) ([]recommend.PreferenceWeight, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	var table, column string
	switch kind {
	case recommend.KindGenre:
		table, column = "book_genres", "genre_id"
	case recommend.KindAuthor:
		table, column = "book_authors", "author_id"
	case recommend.KindTag:
		table, column = "book_tags", "tag_id"
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	query := fmt.Sprintf(
		`SELECT %s, COUNT(DISTINCT book_id) AS freq
		 FROM %s WHERE book_id IN (%s)
		 GROUP BY %s`,
		column, table, placeholders(len(bookIDs)), column)

	args := make([]interface{}, len(bookIDs))
	for i, id := range bookIDs {
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("aggregate", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", table, err)
	}
	defer rows.Close()

	freqs := make(map[string]int)
	for rows.Next() {
		var (
			id   string
			freq int
		)
		if err := rows.Scan(&id, &freq); err != nil {
			return nil, err
		}
		freqs[id] = freq
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rankByBookOrder(ctx, db, freqs, bookIDs, kind, table, column, limit)
}

// rankByBookOrder orders tallied entities by frequency descending, ties
// broken by the first book in bookIDs that carries the entity. The
// per-book association order is fetched once so the tie-break matches the
// in-memory extractor exactly.
func rankByBookOrder(ctx context.Context, db *DB, freqs map[string]int, bookIDs []string, kind recommend.EntityKind, table, column string, limit int) ([]recommend.PreferenceWeight, error) {
	if len(freqs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT book_id, %s FROM %s WHERE book_id IN (%s) ORDER BY %s`,
		column, table, placeholders(len(bookIDs)), column)
	args := make([]interface{}, len(bookIDs))
	for i, id := range bookIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load %s order: %w", table, err)
	}
	defer rows.Close()

	perBook := make(map[string][]string, len(bookIDs))
	for rows.Next() {
		var bookID, entityID string
		if err := rows.Scan(&bookID, &entityID); err != nil {
			return nil, err
		}
		perBook[bookID] = append(perBook[bookID], entityID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	firstSeen := make(map[string]int, len(freqs))
	next := 0
	for _, bookID := range bookIDs {
		for _, entityID := range perBook[bookID] {
			if _, ok := firstSeen[entityID]; !ok {
				firstSeen[entityID] = next
				next++
			}
		}
	}

	ids := make([]string, 0, len(freqs))
	for id := range freqs {
		ids = append(ids, id)
	}
	sortEntities(ids, freqs, firstSeen)

	if len(ids) > limit {
		ids = ids[:limit]
	}

	weights := make([]recommend.PreferenceWeight, len(ids))
	for i, id := range ids {
		weights[i] = recommend.PreferenceWeight{
			EntityID:  id,
			Kind:      kind,
			Frequency: freqs[id],
			Rank:      i + 1,
		}
	}
	return weights, nil
}

func sortEntities(ids []string, freqs, firstSeen map[string]int) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if freqs[a] != freqs[b] {
			return freqs[a] > freqs[b]
		}
		return firstSeen[a] < firstSeen[b]
	})
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	buf := make([]byte, 0, n*2-1)
	for i := range n {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '?')
	}
	return string(buf)
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
