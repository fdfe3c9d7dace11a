// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

//go:build integration

package account

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/models"
	"github.com/discograph/discograph/internal/testinfra"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	if !testinfra.IsDockerAvailable() {
		os.Exit(0)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testinfra.StartMongo(ctx)
	if err != nil {
		panic(err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(container.URI))
	if err != nil {
		panic(err)
	}
	testDB = client.Database("discograph_test")

	code := m.Run()

	client.Disconnect(context.Background())
	container.Terminate(context.Background())
	os.Exit(code)
}

func freshStore(t *testing.T) *Store {
	t.Helper()
	if err := testDB.Collection(CollectionName).Drop(context.Background()); err != nil {
		t.Fatalf("drop collection: %v", err)
	}
	return NewStore(testDB)
}

func createUser(t *testing.T, store *Store, username string) {
	t.Helper()
	err := store.CreateUser(context.Background(), models.User{
		Username: username,
		Password: "$2a$10$hash",
		Friends:  []string{},
		Ratings:  []models.UserRating{},
		Follows:  []models.Follow{},
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
}

func TestGetUser_CountsAndNulls(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	createUser(t, store, "ana")

	store.PushFriend(ctx, "ana", "bruno")
	store.PushRating(ctx, "ana", models.UserRating{ID: "r1", Artist: "The Knots", Name: "First Light", Rating: 8})
	store.PushFollow(ctx, "ana", models.Follow{ID: "a1", Name: "The Knots"})
	store.PushFollow(ctx, "ana", models.Follow{ID: "a2", Name: "Glasshouse"})

	profile, err := store.GetUser(ctx, "ana")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if profile.QtFriends != 1 || profile.QtRatings != 1 || profile.QtFollows != 2 {
		t.Errorf("counts = %d/%d/%d", profile.QtFriends, profile.QtRatings, profile.QtFollows)
	}
	if profile.Name != nil || profile.Bio != nil {
		t.Errorf("absent name/bio must be null, got %v/%v", profile.Name, profile.Bio)
	}

	if _, err := store.GetUser(ctx, "ghost"); !apperr.IsNotFound(err) {
		t.Errorf("missing user: %v", err)
	}
}

func TestUpdateUser_SetAndUnset(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	createUser(t, store, "ana")

	name := "Ana"
	if err := store.UpdateUser(ctx, "ana", Update{Name: &name}); err != nil {
		t.Fatalf("UpdateUser set failed: %v", err)
	}
	profile, _ := store.GetUser(ctx, "ana")
	if profile.Name == nil || *profile.Name != "Ana" {
		t.Errorf("name = %v", profile.Name)
	}

	empty := ""
	if err := store.UpdateUser(ctx, "ana", Update{Name: &empty}); err != nil {
		t.Fatalf("UpdateUser unset failed: %v", err)
	}
	profile, _ = store.GetUser(ctx, "ana")
	if profile.Name != nil {
		t.Errorf("name = %v after unset, want null", profile.Name)
	}
}

func TestPushFriend_Idempotent(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	createUser(t, store, "ana")

	store.PushFriend(ctx, "ana", "bruno")
	store.PushFriend(ctx, "ana", "bruno")

	friends, err := store.ListFriends(ctx, "ana")
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(friends.Items) != 1 {
		t.Errorf("friends = %v, replay must not duplicate", friends.Items)
	}
}

func TestPullOperations(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	createUser(t, store, "ana")

	store.PushRating(ctx, "ana", models.UserRating{ID: "r1", Rating: 8})
	store.PushFollow(ctx, "ana", models.Follow{ID: "a1", Name: "The Knots"})
	store.PushFriend(ctx, "ana", "bruno")

	store.PullRating(ctx, "ana", "r1")
	store.PullFollow(ctx, "ana", "a1")
	store.PullFriend(ctx, "ana", "bruno")

	lists, err := store.CascadeLists(ctx, "ana")
	if err != nil {
		t.Fatalf("CascadeLists failed: %v", err)
	}
	if len(lists.Friends) != 0 || len(lists.Ratings) != 0 || len(lists.Follows) != 0 {
		t.Errorf("lists not emptied: %+v", lists)
	}
}

func TestDeleteUser(t *testing.T) {
	store := freshStore(t)
	ctx := context.Background()
	createUser(t, store, "ana")

	if err := store.DeleteUser(ctx, "ana"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	exists, err := store.ExistsUser(ctx, "ana")
	if err != nil {
		t.Fatalf("ExistsUser failed: %v", err)
	}
	if exists {
		t.Error("user still exists after delete")
	}
}
