// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package graph implements the Graph Store on Neo4j. It holds the
// relationship topology (User, Artist and Genre nodes; FOLLOWS, RATED,
// FRIENDS_WITH and BELONGS_TO edges) as a derived index over what the
// document stores also carry denormalized.
//
// Edge merges are idempotent: creating an already-existing edge is a no-op
// at the store level. The consistency coordinator still pre-checks
// existence so it can report domain-level conflicts instead of silently
// succeeding.
//
// Read-only traversal queries run behind a circuit breaker with bounded
// retry (see resilience.go); writes are never retried blindly.
package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/metrics"
)

// Store owns the Neo4j driver.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	reader   *resilientReader
}

// NewStore creates a graph store on the given driver.
func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{
		driver:   driver,
		database: database,
		reader:   newResilientReader("neo4j-read"),
	}
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// session config helpers

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// write runs a mutation query and drains the result.
func (s *Store) write(ctx context.Context, op, query string, params map[string]any) error {
	start := time.Now()
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err == nil {
		_, err = result.Consume(ctx)
	}
	metrics.ObserveStoreOp("graph", op, start, err)
	if err != nil {
		return apperr.Unavailable("graph."+op, err)
	}
	return nil
}

// readBool runs an existence query through the resilient reader.
func (s *Store) readBool(ctx context.Context, op, query string, params map[string]any) (bool, error) {
	start := time.Now()
	value, err := s.reader.execute(ctx, func(ctx context.Context) (any, error) {
		session := s.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, params)
		if err != nil {
			return false, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return false, err
		}
		exists, _, err := neo4j.GetRecordValue[bool](record, "exists")
		return exists, err
	})
	metrics.ObserveStoreOp("graph", op, start, err)
	if err != nil {
		return false, apperr.Unavailable("graph."+op, err)
	}
	return value.(bool), nil
}

// readRecords runs a traversal query through the resilient reader and
// collects all records.
func (s *Store) readRecords(ctx context.Context, op, query string, params map[string]any) ([]*neo4j.Record, error) {
	start := time.Now()
	value, err := s.reader.execute(ctx, func(ctx context.Context) (any, error) {
		session := s.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	metrics.ObserveStoreOp("graph", op, start, err)
	if err != nil {
		return nil, apperr.Unavailable("graph."+op, err)
	}
	return value.([]*neo4j.Record), nil
}

// Node mutations

// MergeUserNode creates the User node if it does not exist.
func (s *Store) MergeUserNode(ctx context.Context, username string) error {
	return s.write(ctx, "MergeUserNode", `
		MERGE (u:User {username: $username})
	`, map[string]any{"username": username})
}

// DetachDeleteUser removes the User node together with every edge incident
// to it. This is the graph side of the delete-user cascade.
func (s *Store) DetachDeleteUser(ctx context.Context, username string) error {
	return s.write(ctx, "DetachDeleteUser", `
		MATCH (u:User {username: $username})
		DETACH DELETE u
	`, map[string]any{"username": username})
}

// Edge mutations

// MergeFollowsEdge creates the FOLLOWS edge if it does not exist.
func (s *Store) MergeFollowsEdge(ctx context.Context, username, artistID string) error {
	return s.write(ctx, "MergeFollowsEdge", `
		MERGE (u:User {username: $username})
		MERGE (a:Artist {id: $artist_id})
		MERGE (u)-[:FOLLOWS]->(a)
	`, map[string]any{"username": username, "artist_id": artistID})
}

// DeleteFollowsEdge removes the FOLLOWS edge.
func (s *Store) DeleteFollowsEdge(ctx context.Context, username, artistID string) error {
	return s.write(ctx, "DeleteFollowsEdge", `
		MATCH (u:User {username: $username})-[f:FOLLOWS]->(a:Artist {id: $artist_id})
		DELETE f
	`, map[string]any{"username": username, "artist_id": artistID})
}

// MergeRatedEdge creates the RATED edge with the rating as an edge
// property.
func (s *Store) MergeRatedEdge(ctx context.Context, username, releaseID string, rating int) error {
	return s.write(ctx, "MergeRatedEdge", `
		MERGE (u:User {username: $username})
		MERGE (r:Release {id: $release_id})
		MERGE (u)-[rel:RATED]->(r)
		ON CREATE SET rel.rating = $rating
	`, map[string]any{"username": username, "release_id": releaseID, "rating": rating})
}

// DeleteRatedEdge removes the RATED edge.
func (s *Store) DeleteRatedEdge(ctx context.Context, username, releaseID string) error {
	return s.write(ctx, "DeleteRatedEdge", `
		MATCH (u:User {username: $username})-[rel:RATED]->(r:Release {id: $release_id})
		DELETE rel
	`, map[string]any{"username": username, "release_id": releaseID})
}

// MergeFriendship creates both directed FRIENDS_WITH edges in one query so
// the pair appears atomically from the caller's perspective.
func (s *Store) MergeFriendship(ctx context.Context, username1, username2 string) error {
	return s.write(ctx, "MergeFriendship", `
		MERGE (u1:User {username: $username1})
		MERGE (u2:User {username: $username2})
		MERGE (u1)-[:FRIENDS_WITH]->(u2)
		MERGE (u1)<-[:FRIENDS_WITH]-(u2)
	`, map[string]any{"username1": username1, "username2": username2})
}

// DeleteFriendship removes both directed FRIENDS_WITH edges in one query.
func (s *Store) DeleteFriendship(ctx context.Context, username1, username2 string) error {
	return s.write(ctx, "DeleteFriendship", `
		MATCH (u1:User {username: $username1})-[f1:FRIENDS_WITH]->(u2:User {username: $username2})
		MATCH (u1)<-[f2:FRIENDS_WITH]-(u2)
		DELETE f1, f2
	`, map[string]any{"username1": username1, "username2": username2})
}

// Existence checks. Each entity kind has its own typed check; the
// coordinator uses them to report domain-level conflicts before mutating.

// UserNodeExists reports whether the User node exists in the graph.
func (s *Store) UserNodeExists(ctx context.Context, username string) (bool, error) {
	return s.readBool(ctx, "UserNodeExists", `
		MATCH (u:User {username: $username})
		RETURN COUNT(u) > 0 AS exists
	`, map[string]any{"username": username})
}

// ArtistNodeExists reports whether the Artist node exists in the graph.
func (s *Store) ArtistNodeExists(ctx context.Context, artistID string) (bool, error) {
	return s.readBool(ctx, "ArtistNodeExists", `
		MATCH (a:Artist {id: $artist_id})
		RETURN COUNT(a) > 0 AS exists
	`, map[string]any{"artist_id": artistID})
}

// GenreExists reports whether the Genre node exists.
func (s *Store) GenreExists(ctx context.Context, genre string) (bool, error) {
	return s.readBool(ctx, "GenreExists", `
		MATCH (g:Genre {name: $genre})
		RETURN COUNT(g) > 0 AS exists
	`, map[string]any{"genre": genre})
}

// RatingExists reports whether a RATED edge exists for the pair.
func (s *Store) RatingExists(ctx context.Context, username, releaseID string) (bool, error) {
	return s.readBool(ctx, "RatingExists", `
		RETURN EXISTS {
			MATCH (:User {username: $username})-[:RATED]->(:Release {id: $release_id})
		} AS exists
	`, map[string]any{"username": username, "release_id": releaseID})
}

// FollowExists reports whether a FOLLOWS edge exists for the pair.
func (s *Store) FollowExists(ctx context.Context, username, artistID string) (bool, error) {
	return s.readBool(ctx, "FollowExists", `
		RETURN EXISTS {
			MATCH (:User {username: $username})-[:FOLLOWS]->(:Artist {id: $artist_id})
		} AS exists
	`, map[string]any{"username": username, "artist_id": artistID})
}

// FriendshipExists reports whether a FRIENDS_WITH edge exists in either
// direction between the two users.
func (s *Store) FriendshipExists(ctx context.Context, username1, username2 string) (bool, error) {
	return s.readBool(ctx, "FriendshipExists", `
		RETURN EXISTS {
			MATCH (:User {username: $username1})-[:FRIENDS_WITH]-(:User {username: $username2})
		} AS exists
	`, map[string]any{"username1": username1, "username2": username2})
}
