// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package reconcile

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/discograph/discograph/internal/logging"
	"github.com/discograph/discograph/internal/metrics"
)

// RepairFunc replays the unapplied steps of one recorded event. It must
// be idempotent: replaying an already-repaired event must succeed without
// double-applying anything.
type RepairFunc func(ctx context.Context, event Event) error

// Repairer drains the reconciliation log in the background. It runs as a
// supervised service: Serve blocks until the context is cancelled.
type Repairer struct {
	log      *Log
	repair   RepairFunc
	interval time.Duration
	batch    int
	limiter  *rate.Limiter
}

// NewRepairer creates a repairer that sweeps the log every interval,
// repairing at most batch events per sweep, paced at perSec repairs per
// second so a deep backlog cannot saturate the stores.
func NewRepairer(log *Log, repair RepairFunc, interval time.Duration, batch int, perSec float64) *Repairer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	if perSec <= 0 {
		perSec = 10
	}
	return &Repairer{
		log:      log,
		repair:   repair,
		interval: interval,
		batch:    batch,
		limiter:  rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Serve implements suture.Service.
func (r *Repairer) Serve(ctx context.Context) error {
	log := logging.With("reconcile")
	log.Info().
		Dur("interval", r.interval).
		Int("batch", r.batch).
		Msg("reconciliation repairer started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Sweep once on startup to drain events left over from a crash.
	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reconciliation repairer stopping")
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (r *Repairer) String() string { return "reconcile-repairer" }

func (r *Repairer) sweep(ctx context.Context) {
	log := logging.With("reconcile")

	events, err := r.log.Pending(r.batch)
	if err != nil {
		log.Error().Err(err).Msg("failed to read reconciliation backlog")
		return
	}
	if len(events) == 0 {
		return
	}
	log.Info().Int("events", len(events)).Msg("repairing reconciliation backlog")

	for _, event := range events {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}

		if err := r.repair(ctx, event); err != nil {
			metrics.ReconcileRepairs.WithLabelValues(event.Action, "failed").Inc()
			log.Warn().Err(err).
				Str("event_id", event.ID).
				Str("action", event.Action).
				Int("attempts", event.Attempts+1).
				Msg("repair attempt failed")
			if markErr := r.log.MarkAttempt(event, err); markErr != nil {
				log.Error().Err(markErr).Str("event_id", event.ID).Msg("failed to update event")
			}
			continue
		}

		if err := r.log.Resolve(event.ID); err != nil {
			log.Error().Err(err).Str("event_id", event.ID).Msg("failed to resolve repaired event")
			continue
		}
		metrics.ReconcileRepairs.WithLabelValues(event.Action, "repaired").Inc()
		log.Info().
			Str("event_id", event.ID).
			Str("action", event.Action).
			Msg("event repaired")
	}
}
