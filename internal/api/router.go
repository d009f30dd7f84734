// Read-n-Feed - Digital Library and Book Recommendation Platform
// Copyright 2026 Read-n-Feed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readnfeed/readnfeed

// Package api provides the HTTP surface of the recommendation service:
// chi routing, request parsing and validation, and the standardized
// APIResponse envelope. Authentication is handled upstream by the
// platform gateway, which forwards the caller's identity and age.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readnfeed/readnfeed/internal/config"
	"github.com/readnfeed/readnfeed/internal/middleware"
)

// Router builds the service's HTTP handler.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates a Router around the given handler.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all routes and the middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/api/v1/health", router.handler.Health)
	r.Get("/api/v1/health/live", router.handler.HealthLive)
	r.Get("/api/v1/health/ready", router.handler.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimit, router.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Timeout(router.cfg.RequestTimeout))

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/user/{userID}", router.handler.PersonalizedRecommendations)
			r.Get("/similar/{bookID}", router.handler.SimilarBooks)
			r.Get("/genre/{genreID}", router.handler.RecommendationsByGenre)
			r.Get("/author/{authorID}", router.handler.RecommendationsByAuthor)
			r.Post("/feedback", router.handler.SubmitFeedback)
		})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
