// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/readnfeed/readnfeed/internal/logging"
	"github.com/readnfeed/readnfeed/internal/models"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// PersonalizedRecommendations handles
// GET /api/v1/recommendations/user/{userID}.
//
// Query parameters: limit, include_read, age.
func (h *Handler) PersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := personalizedRequest{
		UserID:      chi.URLParam(r, "userID"),
		Limit:       getIntParam(r, "limit", h.cfg.Recommend.DefaultLimit),
		IncludeRead: getBoolParam(r, "include_read"),
		Age:         getAgeParam(r),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp, err := h.engine.Personalized(r.Context(), recommend.Params{
		UserID:      req.UserID,
		Limit:       req.Limit,
		IncludeRead: req.IncludeRead,
		UserAge:     req.Age,
	})
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, resp, start)
}

// SimilarBooks handles GET /api/v1/recommendations/similar/{bookID}.
func (h *Handler) SimilarBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := similarBooksRequest{
		BookID: chi.URLParam(r, "bookID"),
		Limit:  getIntParam(r, "limit", h.cfg.Recommend.DefaultLimit),
		Age:    getAgeParam(r),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp, err := h.engine.SimilarBooks(r.Context(), req.BookID, req.Limit, req.Age)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, resp, start)
}

// RecommendationsByGenre handles GET /api/v1/recommendations/genre/{genreID}.
func (h *Handler) RecommendationsByGenre(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := entityRequest{
		EntityID: chi.URLParam(r, "genreID"),
		Limit:    getIntParam(r, "limit", h.cfg.Recommend.DefaultLimit),
		Age:      getAgeParam(r),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	group, err := h.engine.ByGenre(r.Context(), req.EntityID, req.Limit, req.Age)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, group, start)
}

// RecommendationsByAuthor handles GET /api/v1/recommendations/author/{authorID}.
func (h *Handler) RecommendationsByAuthor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := entityRequest{
		EntityID: chi.URLParam(r, "authorID"),
		Limit:    getIntParam(r, "limit", h.cfg.Recommend.DefaultLimit),
		Age:      getAgeParam(r),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	group, err := h.engine.ByAuthor(r.Context(), req.EntityID, req.Limit, req.Age)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, group, start)
}

// SubmitFeedback handles POST /api/v1/recommendations/feedback.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.engine.RecordFeedback(r.Context(), &recommend.Feedback{
		UserID: req.UserID,
		BookID: req.BookID,
		Liked:  *req.Liked,
	})
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrBookNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		case errors.Is(err, recommend.ErrInvalidFeedback):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, "FEEDBACK_ERROR", "Failed to record feedback", err)
		}
		return
	}

	respondSuccess(w, map[string]bool{"recorded": true}, start)
}

// respondEngineError maps engine failures to API error responses. Missing
// anchor entities surface as 404; everything else is an internal
// recommendation failure.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrUserNotFound),
		errors.Is(err, recommend.ErrBookNotFound),
		errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("recommendation request failed")
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to assemble recommendations", err)
	}
}
