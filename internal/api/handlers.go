// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/readnfeed/readnfeed/internal/config"
	"github.com/readnfeed/readnfeed/internal/models"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// Recommender is the engine surface the handlers depend on. Satisfied by
// recommend.Engine; tests substitute a stub.
type Recommender interface {
	Personalized(ctx context.Context, params recommend.Params) (*recommend.PersonalizedResponse, error)
	SimilarBooks(ctx context.Context, bookID string, limit int, userAge *int) (*recommend.SimilarBooksResponse, error)
	ByGenre(ctx context.Context, genreID string, limit int, userAge *int) (*recommend.Group, error)
	ByAuthor(ctx context.Context, authorID string, limit int, userAge *int) (*recommend.Group, error)
	RecordFeedback(ctx context.Context, fb *recommend.Feedback) error
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine Recommender
	db     Pinger
	cfg    *config.Config
}

// NewHandler creates a Handler.
func NewHandler(engine Recommender, db Pinger, cfg *config.Config) *Handler {
	return &Handler{engine: engine, db: db, cfg: cfg}
}

// Health reports service and database status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	dbStatus := "up"
	code := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status = "degraded"
			dbStatus = "down"
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, &models.APIResponse{
		Status: "success",
		Data: map[string]string{
			"status":   status,
			"database": dbStatus,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "alive"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady is the readiness probe: the service can reach its storage.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Database unavailable", nil)
			return
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "ready"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
