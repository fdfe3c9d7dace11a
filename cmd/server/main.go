// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Command server runs the Discograph API: the catalog and account stores
// on MongoDB, the relationship graph on Neo4j, the dual-write consistency
// coordinator with its reconciliation repairer, and the recommendation
// engine, all behind one HTTP server under a suture supervision tree.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/discograph/discograph/internal/account"
	"github.com/discograph/discograph/internal/api"
	"github.com/discograph/discograph/internal/catalog"
	"github.com/discograph/discograph/internal/config"
	"github.com/discograph/discograph/internal/coordinator"
	"github.com/discograph/discograph/internal/graph"
	"github.com/discograph/discograph/internal/logging"
	"github.com/discograph/discograph/internal/recommend"
	"github.com/discograph/discograph/internal/reconcile"
	"github.com/discograph/discograph/internal/supervisor"
	"github.com/discograph/discograph/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.With("server")
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("starting discograph")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store.
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	// Graph store.
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI,
		neo4j.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, ""))
	if err != nil {
		return fmt.Errorf("create neo4j driver: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := driver.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("neo4j close failed")
		}
	}()
	if err := driver.VerifyConnectivity(connectCtx); err != nil {
		return fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	// Reconciliation log.
	reconcileLog, err := reconcile.Open(cfg.Reconcile.Path)
	if err != nil {
		return fmt.Errorf("open reconcile log: %w", err)
	}
	defer func() {
		if err := reconcileLog.Close(); err != nil {
			log.Warn().Err(err).Msg("reconcile log close failed")
		}
	}()

	catalogStore := catalog.NewStore(db)
	accountStore := account.NewStore(db)
	graphStore := graph.NewStore(driver, cfg.Neo4j.Database)

	coord := coordinator.New(accountStore, catalogStore, graphStore, reconcileLog, cfg.Security.BcryptCost)

	engine := recommend.New(
		graphStore,
		catalogStore,
		accountStore,
		recommend.NewRandomPicker(time.Now().UnixNano()),
		recommend.Options{
			DefaultLimit: cfg.Recs.DefaultLimit,
			MaxLimit:     cfg.Recs.MaxLimit,
			TopPool:      cfg.Recs.TopPool,
			MinRating:    cfg.Recs.MinRating,
		},
	)

	handlers := api.NewHandlers(catalogStore, accountStore, coord, engine)
	router := api.NewRouter(handlers, api.RouterConfig{
		RateLimitRequests: cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		CORSOrigins:       cfg.Security.CORSOrigins,
		HealthChecks: map[string]api.HealthCheck{
			"mongodb": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			},
			"neo4j": func(ctx context.Context) error {
				return driver.VerifyConnectivity(ctx)
			},
		},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	repairer := reconcile.NewRepairer(
		reconcileLog,
		coord.Repair,
		cfg.Reconcile.RepairInterval,
		cfg.Reconcile.RepairBatch,
		cfg.Reconcile.RepairPerSec,
	)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(repairer)
	tree.AddAPIService(services.NewHTTPService(server, 10*time.Second))

	log.Info().Str("addr", server.Addr).Msg("serving")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}
