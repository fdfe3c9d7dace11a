// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/discograph/discograph/internal/apperr"
)

// handleArtistRecsByGenre serves GET /recs/{username}/artists?genre=&limit=.
// The genre is required; the limit defaults and is clamped by the engine,
// but a non-positive or non-numeric value is rejected.
func (h *Handlers) handleArtistRecsByGenre(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("genre")
	if genre == "" {
		respondError(w, r, apperr.NoQueryParameter("genre"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, r, apperr.InvalidQueryParameter("limit", raw))
			return
		}
		limit = parsed
	}

	artists, err := h.recs.ArtistsByGenre(r.Context(), chi.URLParam(r, "username"), genre, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, artists)
}

// handleArtistRec serves GET /recs/{username}/artist: one artist from the
// user's most-followed genre.
func (h *Handlers) handleArtistRec(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recs.ArtistByTopGenre(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rec)
}

// handleFriendRec serves GET /recs/{username}/friends?by=genre|reviews.
func (h *Handlers) handleFriendRec(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	method := r.URL.Query().Get("by")
	switch method {
	case "":
		respondError(w, r, apperr.NoQueryParameter("by"))
	case "genre":
		rec, err := h.recs.FriendByGenre(r.Context(), username)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, rec)
	case "reviews":
		rec, err := h.recs.FriendByReviews(r.Context(), username)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, rec)
	default:
		respondError(w, r, apperr.InvalidRecMethod(method))
	}
}

// handleReleaseRec serves GET /recs/{username}/releases/friends.
func (h *Handlers) handleReleaseRec(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recs.ReleaseByFriends(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rec)
}
