// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package account implements the Account Store over the MongoDB users
// collection. User documents embed denormalized friends, ratings and
// follows lists; the consistency coordinator keeps them agreeing with the
// catalog documents and the graph edges.
package account

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/metrics"
	"github.com/discograph/discograph/internal/models"
)

// CollectionName is the users collection name.
const CollectionName = "users"

// Store owns the users collection.
type Store struct {
	users *mongo.Collection
}

// NewStore creates an account store on the given database.
func NewStore(db *mongo.Database) *Store {
	return &Store{users: db.Collection(CollectionName)}
}

// Update is a partial user update. Nil pointers mean "no change"; an empty
// string for Name or Bio means "remove the field". PasswordHash is already
// hashed by the caller.
type Update struct {
	PasswordHash *string
	Name         *string
	Bio          *string
}

// Empty reports whether the update would change nothing.
func (u Update) Empty() bool {
	return u.PasswordHash == nil && u.Name == nil && u.Bio == nil
}

// GetUser returns the user read model: derived counts instead of the raw
// lists, with name/bio null when absent.
func (s *Store) GetUser(ctx context.Context, username string) (*models.UserProfile, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "username", Value: username}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "username", Value: true},
			{Key: "name", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$name", nil}}}},
			{Key: "bio", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$bio", nil}}}},
			{Key: "qt_friends", Value: bson.D{{Key: "$size", Value: "$friends"}}},
			{Key: "qt_ratings", Value: bson.D{{Key: "$size", Value: "$ratings"}}},
			{Key: "qt_follows", Value: bson.D{{Key: "$size", Value: "$follows"}}},
		}}},
	}

	var results []models.UserProfile
	if err := s.aggregate(ctx, "GetUser", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.UserNotFound(username)
	}
	return &results[0], nil
}

// ListFriends returns the user's friends list.
func (s *Store) ListFriends(ctx context.Context, username string) (*models.FriendList, error) {
	var results []models.FriendList
	if err := s.listField(ctx, "ListFriends", username, "$friends", &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.UserNotFound(username)
	}
	return &results[0], nil
}

// ListRatings returns the user's denormalized ratings list.
func (s *Store) ListRatings(ctx context.Context, username string) (*models.RatingList, error) {
	var results []models.RatingList
	if err := s.listField(ctx, "ListRatings", username, "$ratings", &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.UserNotFound(username)
	}
	return &results[0], nil
}

// ListFollows returns the user's follows list.
func (s *Store) ListFollows(ctx context.Context, username string) (*models.FollowList, error) {
	var results []models.FollowList
	if err := s.listField(ctx, "ListFollows", username, "$follows", &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.UserNotFound(username)
	}
	return &results[0], nil
}

func (s *Store) listField(ctx context.Context, op, username, field string, out interface{}) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "username", Value: username}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "username", Value: true},
			{Key: "items", Value: field},
		}}},
	}
	return s.aggregate(ctx, op, pipeline, out)
}

// CreateUser inserts a new user document. The document must already carry
// the password hash and empty friends/ratings/follows lists.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	start := time.Now()
	_, err := s.users.InsertOne(ctx, user)
	metrics.ObserveStoreOp("account", "CreateUser", start, err)
	if err != nil {
		return apperr.Unavailable("account.CreateUser", err)
	}
	return nil
}

// DeleteUser removes the user document. The coordinator reads CascadeLists
// and cascades removal through the other stores before calling this.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	start := time.Now()
	_, err := s.users.DeleteOne(ctx, bson.D{{Key: "username", Value: username}})
	metrics.ObserveStoreOp("account", "DeleteUser", start, err)
	if err != nil {
		return apperr.Unavailable("account.DeleteUser", err)
	}
	return nil
}

// UpdateUser applies a partial update: password rehash, name/bio set or
// unset. Callers validate that the update is non-empty first.
func (s *Store) UpdateUser(ctx context.Context, username string, update Update) error {
	set := bson.D{}
	unset := bson.D{}

	if update.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *update.PasswordHash})
	}
	if update.Name != nil {
		if *update.Name != "" {
			set = append(set, bson.E{Key: "name", Value: *update.Name})
		} else {
			unset = append(unset, bson.E{Key: "name", Value: true})
		}
	}
	if update.Bio != nil {
		if *update.Bio != "" {
			set = append(set, bson.E{Key: "bio", Value: *update.Bio})
		} else {
			unset = append(unset, bson.E{Key: "bio", Value: true})
		}
	}

	updateDoc := bson.D{}
	if len(set) > 0 {
		updateDoc = append(updateDoc, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		updateDoc = append(updateDoc, bson.E{Key: "$unset", Value: unset})
	}
	if len(updateDoc) == 0 {
		return apperr.NoValidFields()
	}

	return s.update(ctx, "UpdateUser", bson.D{{Key: "username", Value: username}}, updateDoc)
}

// CascadeLists reads the user's friends, ratings and follows before
// deletion so the coordinator can cascade removal in the other stores.
func (s *Store) CascadeLists(ctx context.Context, username string) (*models.CascadeLists, error) {
	var lists models.CascadeLists
	start := time.Now()
	err := s.users.FindOne(ctx,
		bson.D{{Key: "username", Value: username}},
		options.FindOne().SetProjection(bson.D{
			{Key: "friends", Value: true},
			{Key: "ratings", Value: true},
			{Key: "follows", Value: true},
		}),
	).Decode(&lists)
	metrics.ObserveStoreOp("account", "CascadeLists", start, ignoreNoDocuments(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.UserNotFound(username)
	}
	if err != nil {
		return nil, apperr.Unavailable("account.CascadeLists", err)
	}
	return &lists, nil
}

// PushRating appends the denormalized rating copy to the user document.
func (s *Store) PushRating(ctx context.Context, username string, rating models.UserRating) error {
	return s.push(ctx, "PushRating", username, "ratings", rating)
}

// PullRating removes the rating for the given release id.
func (s *Store) PullRating(ctx context.Context, username, releaseID string) error {
	return s.pull(ctx, "PullRating", username, "ratings", bson.D{{Key: "id", Value: releaseID}})
}

// PushFollow appends the followed artist to the user document.
func (s *Store) PushFollow(ctx context.Context, username string, follow models.Follow) error {
	return s.push(ctx, "PushFollow", username, "follows", follow)
}

// PullFollow removes the follow for the given artist id.
func (s *Store) PullFollow(ctx context.Context, username, artistID string) error {
	return s.pull(ctx, "PullFollow", username, "follows", bson.D{{Key: "id", Value: artistID}})
}

// PushFriend adds a friend username to one side of a friendship; the
// coordinator calls it once per direction. $addToSet makes replaying a
// half-applied befriend safe.
func (s *Store) PushFriend(ctx context.Context, username, friend string) error {
	return s.update(ctx, "PushFriend",
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "friends", Value: friend}}}},
	)
}

// PullFriend removes a friend username from one side of a friendship.
func (s *Store) PullFriend(ctx context.Context, username, friend string) error {
	return s.pull(ctx, "PullFriend", username, "friends", friend)
}

// ExistsUser reports whether a user document exists.
func (s *Store) ExistsUser(ctx context.Context, username string) (bool, error) {
	start := time.Now()
	err := s.users.FindOne(ctx,
		bson.D{{Key: "username", Value: username}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: true}}),
	).Err()
	metrics.ObserveStoreOp("account", "ExistsUser", start, ignoreNoDocuments(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Unavailable("account.ExistsUser", err)
	}
	return true, nil
}

func (s *Store) push(ctx context.Context, op, username, field string, value interface{}) error {
	return s.update(ctx, op,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: value}}}},
	)
}

func (s *Store) pull(ctx context.Context, op, username, field string, value interface{}) error {
	return s.update(ctx, op,
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: value}}}},
	)
}

func (s *Store) update(ctx context.Context, op string, filter, updateDoc bson.D) error {
	start := time.Now()
	_, err := s.users.UpdateOne(ctx, filter, updateDoc)
	metrics.ObserveStoreOp("account", op, start, err)
	if err != nil {
		return apperr.Unavailable("account."+op, err)
	}
	return nil
}

func (s *Store) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline, out interface{}) error {
	start := time.Now()
	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err == nil {
		defer cursor.Close(ctx)
		err = cursor.All(ctx, out)
	}
	metrics.ObserveStoreOp("account", op, start, err)
	if err != nil {
		return apperr.Unavailable("account."+op, err)
	}
	return nil
}

// ignoreNoDocuments keeps absent documents out of the error metrics; an
// empty lookup is a domain outcome, not a store failure.
func ignoreNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}
