// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package middleware provides the HTTP middleware chain: request IDs,
// request logging and Prometheus instrumentation. Rate limiting and CORS
// come from go-chi/httprate and go-chi/cors, wired in the router.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/discograph/discograph/internal/logging"
)

// RequestID tags each request with a unique ID, propagated through the
// context for logging and echoed in the X-Request-ID response header. An
// upstream-provided ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
