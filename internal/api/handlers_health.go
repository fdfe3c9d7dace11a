// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// healthHandler serves GET /healthz. It reports per-dependency status and
// answers 503 when any check fails.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		detail := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				detail[name] = "unavailable"
				continue
			}
			detail[name] = "ok"
		}

		body := map[string]any{
			"status": "ok",
			"checks": detail,
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		respondJSON(w, r, status, body)
	}
}
