// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package reconcile records dual-write saga steps that failed after an
// earlier step already mutated a store. The log is append-only BadgerDB;
// a background repairer replays the missing steps idempotently and
// resolves each event once the stores agree again.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/discograph/discograph/internal/logging"
	"github.com/discograph/discograph/internal/metrics"
)

// Saga step names recorded in events. The step identifies the first
// mutation that FAILED; everything before it is known applied.
const (
	StepAccount = "account"
	StepCatalog = "catalog"
	StepGraph   = "graph"
)

// Event is one recorded partial failure. Keys carries the entity keys the
// repairer needs to replay the remaining steps: username, artist_id,
// release_id, friend or rating, whichever the action uses.
type Event struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Keys      map[string]string `json:"keys"`
	Step      string            `json:"step"`
	CreatedAt time.Time         `json:"created_at"`
	Attempts  int               `json:"attempts"`
	LastError string            `json:"last_error,omitempty"`
}

const pendingPrefix = "pending:"

// Log is the append-only reconciliation log.
type Log struct {
	db *badger.DB
}

// Open opens (or creates) the log at path. An empty path opens an
// in-memory database, used by tests.
func Open(path string) (*Log, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.SyncWrites = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open reconcile log: %w", err)
	}

	l := &Log{db: db}
	if backlog, err := l.count(); err == nil {
		metrics.ReconcileBacklog.Set(float64(backlog))
	}
	return l, nil
}

// Close shuts the underlying database down.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records a partial failure. It must not fail silently: when the
// log itself is unavailable the caller still surfaces the saga error, but
// the inconsistency is then only visible in logs.
func (l *Log) Append(ctx context.Context, action, step string, keys map[string]string, cause error) string {
	event := Event{
		ID:        uuid.NewString(),
		Action:    action,
		Keys:      keys,
		Step:      step,
		CreatedAt: time.Now().UTC(),
	}
	if cause != nil {
		event.LastError = cause.Error()
	}

	payload, err := json.Marshal(event)
	if err == nil {
		err = l.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(pendingPrefix+event.ID), payload)
		})
	}

	log := logging.Ctx(ctx)
	if err != nil {
		log.Error().Err(err).
			Str("component", "reconcile").
			Str("action", action).
			Str("step", step).
			Msg("failed to record reconciliation event")
		return ""
	}

	metrics.SagaPartialFailures.WithLabelValues(action).Inc()
	metrics.ReconcileBacklog.Inc()
	log.Warn().
		Str("component", "reconcile").
		Str("event_id", event.ID).
		Str("action", action).
		Str("step", step).
		Msg("recorded reconciliation event")
	return event.ID
}

// Pending returns up to limit unresolved events, oldest first.
func (l *Log) Pending(limit int) ([]Event, error) {
	var events []Event
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(events) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var event Event
				if err := json.Unmarshal(val, &event); err != nil {
					return err
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read pending events: %w", err)
	}
	return events, nil
}

// Resolve removes a repaired event from the log.
func (l *Log) Resolve(id string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(pendingPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("resolve event %s: %w", id, err)
	}
	metrics.ReconcileBacklog.Dec()
	return nil
}

// MarkAttempt persists the updated attempt count and error of a failed
// repair so the backlog stays inspectable.
func (l *Log) MarkAttempt(event Event, cause error) error {
	event.Attempts++
	if cause != nil {
		event.LastError = cause.Error()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pendingPrefix+event.ID), payload)
	})
}

func (l *Log) count() (int, error) {
	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
