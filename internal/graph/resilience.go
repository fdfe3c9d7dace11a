// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package graph

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/discograph/discograph/internal/logging"
	"github.com/discograph/discograph/internal/metrics"
)

const (
	readMaxAttempts = 3
	readRetryDelay  = 100 * time.Millisecond
)

// resilientReader wraps read-only graph queries in a circuit breaker with
// bounded retry. Writes never go through it: a retried write could
// double-apply a mutation the first attempt actually landed.
type resilientReader struct {
	name    string
	breaker *gobreaker.CircuitBreaker[any]
}

func newResilientReader(name string) *resilientReader {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			log := logging.With("graph")
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))
	return &resilientReader{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// execute runs fn through the breaker, retrying transient failures up to
// readMaxAttempts times with a fixed delay. Context cancellation and an
// open breaker stop the retry loop immediately.
func (r *resilientReader) execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= readMaxAttempts; attempt++ {
		value, err := r.breaker.Execute(func() (any, error) {
			return fn(ctx)
		})
		if err == nil {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
			return value, nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			return nil, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < readMaxAttempts {
			select {
			case <-time.After(readRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
