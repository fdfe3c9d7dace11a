// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package api provides the HTTP surface: the chi router, the request
// handlers and the JSON response helpers.
//
// Successful responses carry the bare resource body. Failures carry a
// {code, message} error body whose status comes from the domain error
// kind; store internals never leak to clients.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/logging"
	"github.com/discograph/discograph/internal/models"
)

// respondJSON writes the resource body with the given status. A nil body
// writes just the status, used by 201/200 responses without content.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// respondError translates any error into the {code, message} body. Domain
// errors map to their own status; anything else is an opaque 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		logging.Ctx(r.Context()).Error().Err(err).Msg("unclassified error")
		respondJSON(w, r, http.StatusInternalServerError, models.APIError{
			Code:    "InternalError",
			Message: "An internal error occurred.",
		})
		return
	}

	if e.Kind == apperr.KindUnavailable || e.Kind == apperr.KindInconsistency {
		logging.Ctx(r.Context()).Error().Err(e).Str("code", e.Code).Msg("request failed")
	}
	respondJSON(w, r, e.Status(), models.APIError{Code: e.Code, Message: e.Message})
}

// decodeBody parses a JSON request body into dst. An absent or empty body
// reports the named property as not provided, matching the validation
// contract for absent fields; a body that is present but not valid JSON
// reports MalformedBody so the error never names a field the client sent.
func decodeBody(r *http.Request, dst interface{}, firstProperty string) error {
	if r.Body == nil {
		return apperr.PropertyNotProvided(firstProperty)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.PropertyNotProvided(firstProperty)
		}
		return apperr.MalformedBody()
	}
	return nil
}
