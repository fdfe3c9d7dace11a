// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

//go:build integration

package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/discograph/discograph/internal/testinfra"
)

var testDriver neo4j.DriverWithContext

func TestMain(m *testing.M) {
	if !testinfra.IsDockerAvailable() {
		os.Exit(0)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testinfra.StartNeo4j(ctx)
	if err != nil {
		panic(err)
	}
	testDriver, err = neo4j.NewDriverWithContext(container.URI,
		neo4j.BasicAuth(container.Username, container.Password, ""))
	if err != nil {
		panic(err)
	}
	if err := testDriver.VerifyConnectivity(ctx); err != nil {
		panic(err)
	}

	code := m.Run()

	testDriver.Close(context.Background())
	container.Terminate(context.Background())
	os.Exit(code)
}

func freshGraph(t *testing.T) *Store {
	t.Helper()
	runCypher(t, "MATCH (n) DETACH DELETE n", nil)
	return NewStore(testDriver, "neo4j")
}

func runCypher(t *testing.T, query string, params map[string]any) {
	t.Helper()
	ctx := context.Background()
	session := testDriver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: "neo4j"})
	defer session.Close(ctx)
	if _, err := session.Run(ctx, query, params); err != nil {
		t.Fatalf("cypher %q failed: %v", query, err)
	}
}

func TestUserNodeLifecycle(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	if err := store.MergeUserNode(ctx, "ana"); err != nil {
		t.Fatalf("MergeUserNode failed: %v", err)
	}
	// Merging again is a no-op, not an error.
	if err := store.MergeUserNode(ctx, "ana"); err != nil {
		t.Fatalf("second MergeUserNode failed: %v", err)
	}

	exists, err := store.UserNodeExists(ctx, "ana")
	if err != nil || !exists {
		t.Fatalf("UserNodeExists = %v, %v", exists, err)
	}

	if err := store.DetachDeleteUser(ctx, "ana"); err != nil {
		t.Fatalf("DetachDeleteUser failed: %v", err)
	}
	exists, _ = store.UserNodeExists(ctx, "ana")
	if exists {
		t.Error("user node survived detach delete")
	}
}

func TestFollowsEdge(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	if err := store.MergeFollowsEdge(ctx, "ana", "a1"); err != nil {
		t.Fatalf("MergeFollowsEdge failed: %v", err)
	}
	exists, err := store.FollowExists(ctx, "ana", "a1")
	if err != nil || !exists {
		t.Fatalf("FollowExists = %v, %v", exists, err)
	}

	if err := store.DeleteFollowsEdge(ctx, "ana", "a1"); err != nil {
		t.Fatalf("DeleteFollowsEdge failed: %v", err)
	}
	exists, _ = store.FollowExists(ctx, "ana", "a1")
	if exists {
		t.Error("follows edge survived delete")
	}
}

func TestMergeRatedEdge_KeepsOriginalRatingOnReplay(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	if err := store.MergeRatedEdge(ctx, "ana", "r1", 8); err != nil {
		t.Fatalf("MergeRatedEdge failed: %v", err)
	}
	// A replayed merge must not overwrite the stored rating.
	if err := store.MergeRatedEdge(ctx, "ana", "r1", 3); err != nil {
		t.Fatalf("replayed MergeRatedEdge failed: %v", err)
	}

	rated, err := store.RatedReleases(ctx, "ana", 0)
	if err != nil {
		t.Fatalf("RatedReleases failed: %v", err)
	}
	if len(rated) != 1 || rated[0].Rating != 8 {
		t.Errorf("rated = %+v, want single edge with rating 8", rated)
	}
}

func TestFriendship_Symmetric(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	if err := store.MergeFriendship(ctx, "ana", "bruno"); err != nil {
		t.Fatalf("MergeFriendship failed: %v", err)
	}
	for _, pair := range [][2]string{{"ana", "bruno"}, {"bruno", "ana"}} {
		exists, err := store.FriendshipExists(ctx, pair[0], pair[1])
		if err != nil || !exists {
			t.Fatalf("FriendshipExists(%s, %s) = %v, %v", pair[0], pair[1], exists, err)
		}
	}

	if err := store.DeleteFriendship(ctx, "bruno", "ana"); err != nil {
		t.Fatalf("DeleteFriendship failed: %v", err)
	}
	exists, _ := store.FriendshipExists(ctx, "ana", "bruno")
	if exists {
		t.Error("friendship survived delete")
	}
}

func TestDetachDeleteUser_RemovesIncidentEdges(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	store.MergeFollowsEdge(ctx, "ana", "a1")
	store.MergeRatedEdge(ctx, "ana", "r1", 9)
	store.MergeFriendship(ctx, "ana", "bruno")

	if err := store.DetachDeleteUser(ctx, "ana"); err != nil {
		t.Fatalf("DetachDeleteUser failed: %v", err)
	}

	if exists, _ := store.FollowExists(ctx, "ana", "a1"); exists {
		t.Error("follows edge survived")
	}
	if exists, _ := store.RatingExists(ctx, "ana", "r1"); exists {
		t.Error("rated edge survived")
	}
	if exists, _ := store.FriendshipExists(ctx, "bruno", "ana"); exists {
		t.Error("friendship survived")
	}
	// The other endpoint nodes stay.
	if exists, _ := store.UserNodeExists(ctx, "bruno"); !exists {
		t.Error("friend node deleted too")
	}
}

func TestTopArtistsByGenre_RanksAndExcludesFollowed(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	runCypher(t, `
		CREATE (g:Genre {name: 'jazz'})
		CREATE (:Artist {id: 'a1', popularity: 90})-[:BELONGS_TO]->(g)
		CREATE (:Artist {id: 'a2', popularity: 70})-[:BELONGS_TO]->(g)
		CREATE (:Artist {id: 'a3', popularity: 50})-[:BELONGS_TO]->(g)
	`, nil)
	store.MergeFollowsEdge(ctx, "ana", "a1")

	exists, err := store.GenreExists(ctx, "jazz")
	if err != nil || !exists {
		t.Fatalf("GenreExists = %v, %v", exists, err)
	}

	ids, err := store.TopArtistsByGenre(ctx, "ana", "jazz", 10)
	if err != nil {
		t.Fatalf("TopArtistsByGenre failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a2" || ids[1] != "a3" {
		t.Errorf("ids = %v, want [a2 a3] by popularity with a1 excluded", ids)
	}
}

func TestMostFollowedGenre(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	runCypher(t, `
		CREATE (jazz:Genre {name: 'jazz'})
		CREATE (noise:Genre {name: 'noise'})
		CREATE (:Artist {id: 'a1'})-[:BELONGS_TO]->(jazz)
		CREATE (:Artist {id: 'a2'})-[:BELONGS_TO]->(jazz)
		CREATE (:Artist {id: 'a3'})-[:BELONGS_TO]->(noise)
	`, nil)
	store.MergeFollowsEdge(ctx, "ana", "a1")
	store.MergeFollowsEdge(ctx, "ana", "a2")
	store.MergeFollowsEdge(ctx, "ana", "a3")

	genre, err := store.MostFollowedGenre(ctx, "ana")
	if err != nil {
		t.Fatalf("MostFollowedGenre failed: %v", err)
	}
	if genre != "jazz" {
		t.Errorf("genre = %s, want jazz", genre)
	}

	genre, err = store.MostFollowedGenre(ctx, "nobody")
	if err != nil || genre != "" {
		t.Errorf("no-data genre = %q, %v; want empty", genre, err)
	}
}

func TestCoRatersAndFriendRatings(t *testing.T) {
	store := freshGraph(t)
	ctx := context.Background()

	store.MergeRatedEdge(ctx, "ana", "r1", 8)
	store.MergeRatedEdge(ctx, "bruno", "r1", 10)
	store.MergeRatedEdge(ctx, "carla", "r1", 7)
	store.MergeRatedEdge(ctx, "dora", "r1", 4)
	store.MergeFriendship(ctx, "ana", "carla")

	raters, err := store.CoRaters(ctx, "ana", "r1", 6, 10)
	if err != nil {
		t.Fatalf("CoRaters failed: %v", err)
	}
	// bruno only: carla is a friend, dora is below the threshold.
	if len(raters) != 1 || raters[0].Username != "bruno" || raters[0].Rating != 10 {
		t.Errorf("raters = %+v", raters)
	}

	ratings, err := store.FriendHighRatings(ctx, "ana", 6, 10)
	if err != nil {
		t.Fatalf("FriendHighRatings failed: %v", err)
	}
	if len(ratings) != 1 || ratings[0].Friend != "carla" || ratings[0].ReleaseID != "r1" {
		t.Errorf("ratings = %+v", ratings)
	}
}
