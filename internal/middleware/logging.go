// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package middleware

import (
	"net/http"
	"time"

	"github.com/discograph/discograph/internal/logging"
)

// RequestLogger emits one structured log line per request after it
// completes. Successes log at debug to keep noise down, client errors at
// info, server errors at error.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		log := logging.Ctx(r.Context())
		event := log.Debug()
		if wrapper.status >= http.StatusInternalServerError {
			event = log.Error()
		} else if wrapper.status >= http.StatusBadRequest {
			event = log.Info()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}
