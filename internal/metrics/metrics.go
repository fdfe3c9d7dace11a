// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package metrics provides Prometheus instrumentation for:
//   - API endpoint latency and throughput
//   - Document and graph store operation timing
//   - Saga step outcomes and partial-failure reconcile events
//   - Graph read circuit-breaker state
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Store metrics

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of document/graph store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of store operation errors",
		},
		[]string{"store", "operation"},
	)

	// Saga metrics

	SagaSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_steps_total",
			Help: "Total number of saga steps executed, by action and outcome",
		},
		[]string{"action", "step", "outcome"}, // outcome: "ok" or "failed"
	)

	SagaPartialFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_partial_failures_total",
			Help: "Sagas that failed after their first applied mutation",
		},
		[]string{"action"},
	)

	// Reconciliation metrics

	ReconcileBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_backlog_events",
			Help: "Number of unresolved reconciliation events",
		},
	)

	ReconcileRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_repairs_total",
			Help: "Reconciliation repair attempts by outcome",
		},
		[]string{"action", "outcome"}, // outcome: "repaired" or "failed"
	)

	// Circuit breaker metrics (graph reads)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "outcome"}, // outcome: "success", "failure", "rejected"
	)
)

// ObserveStoreOp records one store operation's duration and, when err is
// non-nil, its error.
func ObserveStoreOp(store, operation string, start time.Time, err error) {
	StoreOpDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(store, operation).Inc()
	}
}

// ObserveHTTP records one HTTP request.
func ObserveHTTP(method, route string, status int, start time.Time) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}
