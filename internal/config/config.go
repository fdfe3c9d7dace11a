// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package config loads and validates application configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (MONGO_URI, NEO4J_URI, SERVER_PORT, ...)
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Reconcile ReconcileConfig `koanf:"reconcile"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recs      RecsConfig      `koanf:"recs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// MongoConfig holds document-store connection settings. The artists and
// users collections live in the same database.
type MongoConfig struct {
	URI         string        `koanf:"uri"`
	Database    string        `koanf:"database"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxPoolSize uint64        `koanf:"max_pool_size"`
}

// Neo4jConfig holds graph-store connection settings.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// ReconcileConfig holds reconciliation-log settings. The log records saga
// steps that never ran so the repair worker can replay them.
type ReconcileConfig struct {
	Path           string        `koanf:"path"`
	RepairInterval time.Duration `koanf:"repair_interval"`
	RepairBatch    int           `koanf:"repair_batch"`
	RepairPerSec   float64       `koanf:"repair_per_sec"`
}

// SecurityConfig holds hashing and rate-limit settings.
type SecurityConfig struct {
	BcryptCost      int           `koanf:"bcrypt_cost"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecsConfig holds recommendation-engine tuning.
type RecsConfig struct {
	// DefaultLimit applies when a rec endpoint gets no limit parameter.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit is the clamp ceiling for caller-supplied limits.
	MaxLimit int `koanf:"max_limit"`

	// TopPool is the size of the ranked pool the random pick draws from.
	TopPool int `koanf:"top_pool"`

	// MinRating is the threshold for "rated highly" in friend/release recs.
	MinRating int `koanf:"min_rating"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8314,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Mongo: MongoConfig{
			URI:         "mongodb://127.0.0.1:27017",
			Database:    "discograph",
			Timeout:     10 * time.Second,
			MaxPoolSize: 100,
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://127.0.0.1:7687",
			Username: "neo4j",
			Password: "",
			Database: "neo4j",
		},
		Reconcile: ReconcileConfig{
			Path:           "/data/reconcile",
			RepairInterval: time.Minute,
			RepairBatch:    100,
			RepairPerSec:   20,
		},
		Security: SecurityConfig{
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recs: RecsConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
			TopPool:      10,
			MinRating:    6,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be in 4..31, got %d", c.Security.BcryptCost)
	}
	if c.Recs.DefaultLimit < 1 {
		return fmt.Errorf("recs.default_limit must be positive, got %d", c.Recs.DefaultLimit)
	}
	if c.Recs.MaxLimit < c.Recs.DefaultLimit {
		return fmt.Errorf("recs.max_limit %d is below recs.default_limit %d",
			c.Recs.MaxLimit, c.Recs.DefaultLimit)
	}
	if c.Recs.TopPool < 1 {
		return fmt.Errorf("recs.top_pool must be positive, got %d", c.Recs.TopPool)
	}
	if c.Recs.MinRating < 0 || c.Recs.MinRating > 10 {
		return fmt.Errorf("recs.min_rating must be in 0..10, got %d", c.Recs.MinRating)
	}
	if c.Reconcile.RepairBatch < 1 {
		return fmt.Errorf("reconcile.repair_batch must be positive, got %d", c.Reconcile.RepairBatch)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
