// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetArtist serves GET /artists/{id}.
func (h *Handlers) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.catalog.GetArtist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, artist)
}

// handleGetArtistTracks serves GET /artists/{id}/tracks.
func (h *Handlers) handleGetArtistTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.GetArtistTracks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, tracks)
}

// handleGetRelease serves GET /releases/{id}.
func (h *Handlers) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	release, err := h.catalog.GetRelease(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, release)
}

// handleGetReleaseRatings serves GET /releases/{id}/ratings.
func (h *Handlers) handleGetReleaseRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.catalog.GetReleaseRatings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ratings)
}
