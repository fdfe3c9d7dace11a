// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/coordinator"
	"github.com/discograph/discograph/internal/validation"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
}

// handleRegister serves POST /users.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req, "username"); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.mutator.Register(r.Context(), coordinator.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, nil)
}

// handleGetUser serves GET /users/{username}.
func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// handleDeleteUser serves DELETE /users/{username}.
func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.mutator.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nil)
}

type updateUserRequest struct {
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
}

// handleUpdateUser serves PATCH /users/{username}.
func (h *Handlers) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req, "password"); err != nil {
		// An empty body means nothing to update; malformed JSON keeps its
		// own error.
		if e, ok := apperr.As(err); ok && e.Code == "PropertyNotProvided" {
			err = apperr.NoValidFields()
		}
		respondError(w, r, err)
		return
	}

	err := h.mutator.UpdateProfile(r.Context(), chi.URLParam(r, "username"), coordinator.UpdateInput{
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nil)
}

// handleListFriends serves GET /users/{username}/friends.
func (h *Handlers) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.accounts.ListFriends(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, friends)
}

// handleListRatings serves GET /users/{username}/ratings.
func (h *Handlers) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.accounts.ListRatings(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ratings)
}

// handleListFollows serves GET /users/{username}/follows.
func (h *Handlers) handleListFollows(w http.ResponseWriter, r *http.Request) {
	follows, err := h.accounts.ListFollows(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, follows)
}

type rateRequest struct {
	ID     string `json:"id" validate:"required"`
	Rating *int   `json:"rating" validate:"required"`
}

// handleRate serves POST /users/{username}/ratings.
func (h *Handlers) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeBody(r, &req, "id"); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.mutator.Rate(r.Context(), chi.URLParam(r, "username"), req.ID, *req.Rating)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, nil)
}

// handleUnrate serves DELETE /users/{username}/ratings/{release_id}.
func (h *Handlers) handleUnrate(w http.ResponseWriter, r *http.Request) {
	err := h.mutator.Unrate(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "release_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nil)
}

type followRequest struct {
	ID string `json:"id" validate:"required"`
}

// handleFollow serves POST /users/{username}/follows.
func (h *Handlers) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := decodeBody(r, &req, "id"); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.mutator.Follow(r.Context(), chi.URLParam(r, "username"), req.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, nil)
}

// handleUnfollow serves DELETE /users/{username}/follows/{artist_id}.
func (h *Handlers) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	err := h.mutator.Unfollow(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "artist_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nil)
}

type befriendRequest struct {
	Username string `json:"username" validate:"required"`
}

// handleBefriend serves POST /users/{username}/friends.
func (h *Handlers) handleBefriend(w http.ResponseWriter, r *http.Request) {
	var req befriendRequest
	if err := decodeBody(r, &req, "username"); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Validate(&req); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.mutator.Befriend(r.Context(), chi.URLParam(r, "username"), req.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, nil)
}

// handleUnfriend serves DELETE /users/{username}/friends/{friend_username}.
func (h *Handlers) handleUnfriend(w http.ResponseWriter, r *http.Request) {
	err := h.mutator.Unfriend(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "friend_username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nil)
}
