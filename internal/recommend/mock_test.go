// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package recommend

import (
	"context"
	"time"

	"github.com/readnfeed/readnfeed/internal/models"
)

// mockProvider is an in-memory DataProvider for engine tests.
type mockProvider struct {
	users    map[string]bool
	progress map[string][]ReadingProgressEntry
	likes    map[string][]LikeEntry

	books   map[string]*models.Book
	details map[string]*BookDetails
	assocs  map[string]*BookAssociations

	byGenre  map[string][]string
	byAuthor map[string][]string
	byTag    map[string][]string

	mostLiked []string
	recent    []string

	genreNames  map[string]string
	authorNames map[string]string

	// feedback state keyed by userID + "|" + bookID
	liked      map[string]bool
	likeCounts map[string]int

	// failDetails forces enrichment errors for specific book IDs.
	failDetails map[string]bool
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		users:       make(map[string]bool),
		progress:    make(map[string][]ReadingProgressEntry),
		likes:       make(map[string][]LikeEntry),
		books:       make(map[string]*models.Book),
		details:     make(map[string]*BookDetails),
		assocs:      make(map[string]*BookAssociations),
		byGenre:     make(map[string][]string),
		byAuthor:    make(map[string][]string),
		byTag:       make(map[string][]string),
		genreNames:  make(map[string]string),
		authorNames: make(map[string]string),
		liked:       make(map[string]bool),
		likeCounts:  make(map[string]int),
		failDetails: make(map[string]bool),
	}
}

// addBook registers a book with details, associations, and like count.
func (m *mockProvider) addBook(id, title string, ageRestriction int, assoc *BookAssociations) {
	m.books[id] = &models.Book{
		ID:             id,
		Title:          title,
		AgeRestriction: ageRestriction,
		CreatedAt:      time.Now(),
	}
	m.details[id] = &BookDetails{
		Title:          title,
		AgeRestriction: ageRestriction,
	}
	if assoc == nil {
		assoc = &BookAssociations{}
	}
	m.assocs[id] = assoc
	for _, g := range assoc.GenreIDs {
		m.byGenre[g] = append(m.byGenre[g], id)
	}
	for _, a := range assoc.AuthorIDs {
		m.byAuthor[a] = append(m.byAuthor[a], id)
	}
	for _, t := range assoc.TagIDs {
		m.byTag[t] = append(m.byTag[t], id)
	}
}

func (m *mockProvider) UserExists(_ context.Context, userID string) (bool, error) {
	return m.users[userID], nil
}

func (m *mockProvider) ReadingProgress(_ context.Context, userID string) ([]ReadingProgressEntry, error) {
	return m.progress[userID], nil
}

func (m *mockProvider) Likes(_ context.Context, userID string) ([]LikeEntry, error) {
	return m.likes[userID], nil
}

func (m *mockProvider) Book(_ context.Context, bookID string) (*models.Book, error) {
	b, ok := m.books[bookID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (m *mockProvider) BookDetails(_ context.Context, bookID string) (*BookDetails, error) {
	if m.failDetails[bookID] {
		return nil, models.ErrNotFound
	}
	d, ok := m.details[bookID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return d, nil
}

func (m *mockProvider) Associations(_ context.Context, bookID string) (*BookAssociations, error) {
	a, ok := m.assocs[bookID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a, nil
}

func capped(ids []string, limit int) []string {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

func (m *mockProvider) BooksByGenre(_ context.Context, genreID string, limit int) ([]string, error) {
	return capped(m.byGenre[genreID], limit), nil
}

func (m *mockProvider) BooksByAuthor(_ context.Context, authorID string, limit int) ([]string, error) {
	return capped(m.byAuthor[authorID], limit), nil
}

func (m *mockProvider) BooksByTag(_ context.Context, tagID string, limit int) ([]string, error) {
	return capped(m.byTag[tagID], limit), nil
}

func (m *mockProvider) MostLiked(_ context.Context, limit int) ([]string, error) {
	return capped(m.mostLiked, limit), nil
}

func (m *mockProvider) RecentReleases(_ context.Context, _, limit int) ([]string, error) {
	return capped(m.recent, limit), nil
}

func (m *mockProvider) GenreName(_ context.Context, genreID string) (string, error) {
	name, ok := m.genreNames[genreID]
	if !ok {
		return "", models.ErrNotFound
	}
	return name, nil
}

func (m *mockProvider) AuthorName(_ context.Context, authorID string) (string, error) {
	name, ok := m.authorNames[authorID]
	if !ok {
		return "", models.ErrNotFound
	}
	return name, nil
}

func (m *mockProvider) SaveFeedback(_ context.Context, fb *Feedback) (bool, error) {
	key := fb.UserID + "|" + fb.BookID
	if m.liked[key] == fb.Liked {
		return false, nil
	}
	m.liked[key] = fb.Liked
	if fb.Liked {
		m.likeCounts[fb.BookID]++
	} else {
		m.likeCounts[fb.BookID]--
	}
	return true, nil
}
