// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

//go:build integration

// Package testinfra manages Docker containers for integration tests with
// testcontainers-go: a real MongoDB for the document stores and a real
// Neo4j for the graph store.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipIfNoDocker skips the test when the Docker daemon is unavailable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable reports whether the Docker daemon answers.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// MongoContainer is a running MongoDB instance for tests.
type MongoContainer struct {
	container testcontainers.Container
	URI       string
}

// StartMongo launches a MongoDB container and waits until it accepts
// connections.
func StartMongo(ctx context.Context) (*MongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start mongodb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		return nil, err
	}
	return &MongoContainer{
		container: container,
		URI:       fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops the container.
func (c *MongoContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}

// Neo4jContainer is a running Neo4j instance for tests.
type Neo4jContainer struct {
	container testcontainers.Container
	URI       string
	Username  string
	Password  string
}

// StartNeo4j launches a Neo4j container with a known password and waits
// for the bolt port.
func StartNeo4j(ctx context.Context) (*Neo4jContainer, error) {
	const password = "testpassword"
	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/" + password,
		},
		WaitingFor: wait.ForListeningPort("7687/tcp").WithStartupTimeout(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start neo4j container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "7687/tcp")
	if err != nil {
		return nil, err
	}
	return &Neo4jContainer{
		container: container,
		URI:       fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username:  "neo4j",
		Password:  password,
	}, nil
}

// Terminate stops the container.
func (c *Neo4jContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
