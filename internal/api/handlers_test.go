// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/readnfeed/readnfeed/internal/config"
	"github.com/readnfeed/readnfeed/internal/models"
	"github.com/readnfeed/readnfeed/internal/recommend"
)

// stubEngine implements Recommender with canned responses.
type stubEngine struct {
	personalized *recommend.PersonalizedResponse
	similar      *recommend.SimilarBooksResponse
	group        *recommend.Group
	err          error

	lastParams   recommend.Params
	lastFeedback *recommend.Feedback
}

func (s *stubEngine) Personalized(_ context.Context, params recommend.Params) (*recommend.PersonalizedResponse, error) {
	s.lastParams = params
	return s.personalized, s.err
}

func (s *stubEngine) SimilarBooks(_ context.Context, _ string, _ int, _ *int) (*recommend.SimilarBooksResponse, error) {
	return s.similar, s.err
}

func (s *stubEngine) ByGenre(_ context.Context, _ string, _ int, _ *int) (*recommend.Group, error) {
	return s.group, s.err
}

func (s *stubEngine) ByAuthor(_ context.Context, _ string, _ int, _ *int) (*recommend.Group, error) {
	return s.group, s.err
}

func (s *stubEngine) RecordFeedback(_ context.Context, fb *recommend.Feedback) error {
	s.lastFeedback = fb
	return s.err
}

type stubPinger struct{ err error }

func (p *stubPinger) Ping(context.Context) error { return p.err }

func setupRouter(t *testing.T, engine *stubEngine) http.Handler {
	t.Helper()
	cfg := config.Default()
	handler := NewHandler(engine, &stubPinger{}, cfg)
	return NewRouter(handler, &cfg.API).Setup()
}

func doRequest(t *testing.T, router http.Handler, method, path string, body string) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an APIResponse envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, &resp
}

func TestPersonalizedRecommendationsOK(t *testing.T) {
	engine := &stubEngine{
		personalized: &recommend.PersonalizedResponse{
			ForYou:   recommend.Group{ID: "for-you", Source: recommend.SourceUserHistory},
			Trending: recommend.Group{ID: "trending", Source: recommend.SourceTrending},
		},
	}
	router := setupRouter(t, engine)

	userID := uuid.NewString()
	rec, resp := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/user/"+userID+"?limit=10&include_read=true&age=25", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %s", resp.Status)
	}
	if engine.lastParams.UserID != userID || engine.lastParams.Limit != 10 || !engine.lastParams.IncludeRead {
		t.Errorf("params not forwarded: %+v", engine.lastParams)
	}
	if engine.lastParams.UserAge == nil || *engine.lastParams.UserAge != 25 {
		t.Errorf("age not forwarded: %v", engine.lastParams.UserAge)
	}
}

func TestPersonalizedRecommendationsInvalidUserID(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/recommendations/user/not-a-uuid", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestPersonalizedRecommendationsUnknownUser(t *testing.T) {
	router := setupRouter(t, &stubEngine{err: recommend.ErrUserNotFound})

	rec, resp := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/user/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
	}
}

func TestSimilarBooksOK(t *testing.T) {
	engine := &stubEngine{
		similar: &recommend.SimilarBooksResponse{OriginalBookTitle: "Anchor"},
	}
	router := setupRouter(t, engine)

	rec, resp := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/similar/"+uuid.NewString(), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %s", resp.Status)
	}
}

func TestSimilarBooksUnknownAnchor(t *testing.T) {
	router := setupRouter(t, &stubEngine{err: recommend.ErrBookNotFound})

	rec, _ := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/similar/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRecommendationsByGenreOK(t *testing.T) {
	engine := &stubEngine{
		group: &recommend.Group{ID: "genre-x", Source: recommend.SourceGenreBased},
	}
	router := setupRouter(t, engine)

	rec, _ := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/genre/"+uuid.NewString()+"?limit=5", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRecommendationsByGenreNotFound(t *testing.T) {
	router := setupRouter(t, &stubEngine{err: models.ErrNotFound})

	rec, _ := doRequest(t, router, http.MethodGet,
		"/api/v1/recommendations/genre/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitFeedbackOK(t *testing.T) {
	engine := &stubEngine{}
	router := setupRouter(t, engine)

	userID, bookID := uuid.NewString(), uuid.NewString()
	body := `{"user_id":"` + userID + `","book_id":"` + bookID + `","liked":true}`
	rec, resp := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/feedback", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %s", resp.Status)
	}
	if engine.lastFeedback == nil || engine.lastFeedback.UserID != userID || !engine.lastFeedback.Liked {
		t.Errorf("feedback not forwarded: %+v", engine.lastFeedback)
	}
}

func TestSubmitFeedbackMissingLiked(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	body := `{"user_id":"` + uuid.NewString() + `","book_id":"` + uuid.NewString() + `"}`
	rec, resp := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/feedback", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestSubmitFeedbackInvalidJSON(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/feedback", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitFeedbackUnknownBook(t *testing.T) {
	router := setupRouter(t, &stubEngine{err: recommend.ErrBookNotFound})

	body := `{"user_id":"` + uuid.NewString() + `","book_id":"` + uuid.NewString() + `","liked":false}`
	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/feedback", body)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %s", resp.Status)
	}
}

func TestHealthLive(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/health/live", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("envelope status = %s", resp.Status)
	}
}

func TestHealthReadyDatabaseDown(t *testing.T) {
	cfg := config.Default()
	handler := NewHandler(&stubEngine{}, &stubPinger{err: context.DeadlineExceeded}, cfg)
	router := NewRouter(handler, &cfg.API).Setup()

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/health/ready", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_READY" {
		t.Errorf("error = %+v, want NOT_READY", resp.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := setupRouter(t, &stubEngine{})

	rec, resp := doRequest(t, router, http.MethodDelete,
		"/api/v1/recommendations/user/"+uuid.NewString(), "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("error = %+v, want METHOD_NOT_ALLOWED", resp.Error)
	}
}
