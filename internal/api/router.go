// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/discograph/discograph/internal/middleware"
)

// RouterConfig tunes the outer middleware chain.
type RouterConfig struct {
	// RateLimitRequests per RateLimitWindow per client IP; zero disables
	// rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORSOrigins lists allowed origins; empty disables CORS headers.
	CORSOrigins []string

	// HealthChecks probe the backing stores for /healthz.
	HealthChecks map[string]HealthCheck
}

// NewRouter builds the chi router with the full middleware chain and
// every resource route.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Prometheus)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if cfg.RateLimitRequests > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, window))
	}

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/artists", func(r chi.Router) {
		r.Get("/{id}", h.handleGetArtist)
		r.Get("/{id}/tracks", h.handleGetArtistTracks)
	})

	r.Route("/releases", func(r chi.Router) {
		r.Get("/{id}", h.handleGetRelease)
		r.Get("/{id}/ratings", h.handleGetReleaseRatings)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Route("/{username}", func(r chi.Router) {
			r.Get("/", h.handleGetUser)
			r.Patch("/", h.handleUpdateUser)
			r.Delete("/", h.handleDeleteUser)

			r.Get("/friends", h.handleListFriends)
			r.Post("/friends", h.handleBefriend)
			r.Delete("/friends/{friend_username}", h.handleUnfriend)

			r.Get("/ratings", h.handleListRatings)
			r.Post("/ratings", h.handleRate)
			r.Delete("/ratings/{release_id}", h.handleUnrate)

			r.Get("/follows", h.handleListFollows)
			r.Post("/follows", h.handleFollow)
			r.Delete("/follows/{artist_id}", h.handleUnfollow)
		})
	})

	r.Route("/recs/{username}", func(r chi.Router) {
		r.Get("/artists", h.handleArtistRecsByGenre)
		r.Get("/artist", h.handleArtistRec)
		r.Get("/friends", h.handleFriendRec)
		r.Get("/releases/friends", h.handleReleaseRec)
	})

	return r
}
