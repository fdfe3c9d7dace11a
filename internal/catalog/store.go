// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package catalog implements the Catalog Store over the MongoDB artists
// collection. Artists embed releases, which embed tracks and ratings; all
// read models are computed server-side with aggregation pipelines so the
// documents are never shipped whole.
//
// Lookups return typed apperr NotFound errors when an id resolves to
// nothing; store-level failures are classified apperr.Unavailable.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/metrics"
	"github.com/discograph/discograph/internal/models"
)

// CollectionName is the artists collection name.
const CollectionName = "artists"

// Store owns the artists collection.
type Store struct {
	artists *mongo.Collection
}

// NewStore creates a catalog store on the given database.
func NewStore(db *mongo.Database) *Store {
	return &Store{artists: db.Collection(CollectionName)}
}

// ReleaseOwner resolves a release id to its owning artist, carrying the
// names both denormalized rating copies need.
type ReleaseOwner struct {
	ReleaseID   string `bson:"id"`
	ReleaseName string `bson:"name"`
	ArtistID    string `bson:"artist_id"`
	ArtistName  string `bson:"artist"`
}

// GetArtist returns the artist read model: bio, genres, follower count, an
// average over every rating in the artist's catalog (null when none) and
// releases projected to id/name/release_year.
func (s *Store) GetArtist(ctx context.Context, id string) (*models.ArtistDetail, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "allRatings", Value: bson.D{{Key: "$reduce", Value: bson.D{
				{Key: "input", Value: "$releases"},
				{Key: "initialValue", Value: bson.A{}},
				{Key: "in", Value: bson.D{{Key: "$concatArrays", Value: bson.A{"$$value", "$$this.ratings"}}}},
			}}}},
			{Key: "mappedReleases", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: "$releases"},
				{Key: "as", Value: "release"},
				{Key: "in", Value: bson.D{
					{Key: "id", Value: "$$release.id"},
					{Key: "name", Value: "$$release.name"},
					{Key: "release_year", Value: bson.D{{Key: "$year", Value: bson.D{
						{Key: "$dateFromString", Value: bson.D{{Key: "dateString", Value: "$$release.release_date"}}},
					}}}},
				}},
			}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "id", Value: "$_id"},
			{Key: "name", Value: true},
			{Key: "genres", Value: true},
			{Key: "bio", Value: true},
			{Key: "qt_followers", Value: true},
			{Key: "average_rating", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{
					bson.D{{Key: "$size", Value: "$allRatings"}}, 0,
				}}}},
				{Key: "then", Value: bson.D{{Key: "$avg", Value: "$allRatings.rating"}}},
				{Key: "else", Value: nil},
			}}}},
			{Key: "releases", Value: "$mappedReleases"},
		}}},
	}

	var results []models.ArtistDetail
	if err := s.aggregate(ctx, "GetArtist", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.ArtistNotFound(id)
	}
	return &results[0], nil
}

// GetArtistTracks groups the artist's tracks by name across all releases
// and returns the groups ordered alphabetically by track name.
func (s *Store) GetArtistTracks(ctx context.Context, id string) (*models.ArtistTracks, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		bson.D{{Key: "$unwind", Value: "$releases"}},
		bson.D{{Key: "$unwind", Value: "$releases.tracks"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "artist_id", Value: "$_id"},
				{Key: "artist_name", Value: "$name"},
				{Key: "track_name", Value: "$releases.tracks.name"},
			}},
			{Key: "releases", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "id", Value: "$releases.id"},
				{Key: "name", Value: "$releases.name"},
			}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "id", Value: "$_id.artist_id"},
				{Key: "name", Value: "$_id.artist_name"},
			}},
			{Key: "items", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "name", Value: "$_id.track_name"},
				{Key: "releases", Value: "$releases"},
			}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "artist", Value: "$_id"},
			{Key: "items", Value: bson.D{{Key: "$sortArray", Value: bson.D{
				{Key: "input", Value: "$items"},
				{Key: "sortBy", Value: bson.D{{Key: "name", Value: 1}}},
			}}}},
		}}},
	}

	var results []models.ArtistTracks
	if err := s.aggregate(ctx, "GetArtistTracks", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.ArtistNotFound(id)
	}
	return &results[0], nil
}

// GetRelease returns the release read model with its owning artist and an
// average over only this release's ratings (null when it has none).
func (s *Store) GetRelease(ctx context.Context, releaseID string) (*models.ReleaseDetail, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$unwind", Value: "$releases"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "id", Value: "$releases.id"},
			{Key: "name", Value: "$releases.name"},
			{Key: "artist", Value: bson.D{
				{Key: "id", Value: "$_id"},
				{Key: "name", Value: "$name"},
			}},
			{Key: "release_date", Value: "$releases.release_date"},
			{Key: "rating_average", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{
					bson.D{{Key: "$size", Value: "$releases.ratings"}}, 0,
				}}}},
				{Key: "then", Value: bson.D{{Key: "$avg", Value: "$releases.ratings.rating"}}},
				{Key: "else", Value: nil},
			}}}},
			{Key: "tracks", Value: "$releases.tracks"},
		}}},
	}

	var results []models.ReleaseDetail
	if err := s.aggregate(ctx, "GetRelease", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.ReleaseNotFound(releaseID)
	}
	return &results[0], nil
}

// GetReleaseRatings lists every rating on one release.
func (s *Store) GetReleaseRatings(ctx context.Context, releaseID string) (*models.ReleaseRatings, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$unwind", Value: "$releases"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "release", Value: bson.D{
				{Key: "id", Value: "$releases.id"},
				{Key: "name", Value: "$releases.name"},
				{Key: "artist", Value: "$name"},
			}},
			{Key: "items", Value: "$releases.ratings"},
		}}},
	}

	var results []models.ReleaseRatings
	if err := s.aggregate(ctx, "GetReleaseRatings", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.ReleaseNotFound(releaseID)
	}
	return &results[0], nil
}

// ResolveRelease maps a release id to its owning artist. Release ids are
// globally unique; more than one owner is data corruption and reported as
// an inconsistency rather than resolved arbitrarily.
func (s *Store) ResolveRelease(ctx context.Context, releaseID string) (*ReleaseOwner, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$unwind", Value: "$releases"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "releases.id", Value: releaseID}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: false},
			{Key: "id", Value: "$releases.id"},
			{Key: "name", Value: "$releases.name"},
			{Key: "artist_id", Value: "$_id"},
			{Key: "artist", Value: "$name"},
		}}},
	}

	var results []ReleaseOwner
	if err := s.aggregate(ctx, "ResolveRelease", pipeline, &results); err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, apperr.ReleaseNotFound(releaseID)
	case 1:
		return &results[0], nil
	default:
		return nil, apperr.Inconsistency(
			fmt.Sprintf("release id %q is embedded in %d artists", releaseID, len(results)))
	}
}

// ArtistRef returns the id/name pair for an artist, for denormalizing into
// a user's follows list.
func (s *Store) ArtistRef(ctx context.Context, id string) (*models.ArtistRef, error) {
	var doc struct {
		ID   string `bson:"_id"`
		Name string `bson:"name"`
	}
	start := time.Now()
	err := s.artists.FindOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		findProjection(bson.D{{Key: "_id", Value: true}, {Key: "name", Value: true}}),
	).Decode(&doc)
	metrics.ObserveStoreOp("catalog", "ArtistRef", start, ignoreNoDocuments(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ArtistNotFound(id)
	}
	if err != nil {
		return nil, apperr.Unavailable("catalog.ArtistRef", err)
	}
	return &models.ArtistRef{ID: doc.ID, Name: doc.Name}, nil
}

// ArtistSummary returns the projection used to enrich recommendations.
func (s *Store) ArtistSummary(ctx context.Context, id string) (*models.ArtistSummary, error) {
	var doc struct {
		ID     string   `bson:"_id"`
		Name   string   `bson:"name"`
		Bio    string   `bson:"bio"`
		Genres []string `bson:"genres"`
	}
	start := time.Now()
	err := s.artists.FindOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		findProjection(bson.D{
			{Key: "_id", Value: true},
			{Key: "name", Value: true},
			{Key: "bio", Value: true},
			{Key: "genres", Value: true},
		}),
	).Decode(&doc)
	metrics.ObserveStoreOp("catalog", "ArtistSummary", start, ignoreNoDocuments(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ArtistNotFound(id)
	}
	if err != nil {
		return nil, apperr.Unavailable("catalog.ArtistSummary", err)
	}
	return &models.ArtistSummary{ID: doc.ID, Name: doc.Name, Bio: doc.Bio, Genres: doc.Genres}, nil
}

// PushRating appends a rating to the embedded ratings of the release.
func (s *Store) PushRating(ctx context.Context, releaseID string, rating models.Rating) error {
	return s.update(ctx, "PushRating",
		bson.D{{Key: "releases.id", Value: releaseID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "releases.$.ratings", Value: rating}}}},
	)
}

// PullRating removes the named user's rating from the release's embedded
// ratings.
func (s *Store) PullRating(ctx context.Context, releaseID, username string) error {
	return s.update(ctx, "PullRating",
		bson.D{{Key: "releases.id", Value: releaseID}},
		bson.D{{Key: "$pull", Value: bson.D{
			{Key: "releases.$.ratings", Value: bson.D{{Key: "username", Value: username}}},
		}}},
	)
}

// IncrementFollowers adjusts the denormalized follower counter by delta
// (+1 on follow, -1 on unfollow or cascade).
func (s *Store) IncrementFollowers(ctx context.Context, artistID string, delta int64) error {
	return s.update(ctx, "IncrementFollowers",
		bson.D{{Key: "_id", Value: artistID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "qt_followers", Value: delta}}}},
	)
}

// ExistsArtist reports whether an artist document exists.
func (s *Store) ExistsArtist(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "ExistsArtist", bson.D{{Key: "_id", Value: id}})
}

// ExistsRelease reports whether any artist embeds the release id.
func (s *Store) ExistsRelease(ctx context.Context, releaseID string) (bool, error) {
	return s.exists(ctx, "ExistsRelease", bson.D{{Key: "releases.id", Value: releaseID}})
}

// HasReleaseRating reports whether the release already embeds a rating by
// the user. The repairer uses it to avoid duplicating a rating when it
// replays a half-applied saga.
func (s *Store) HasReleaseRating(ctx context.Context, releaseID, username string) (bool, error) {
	return s.exists(ctx, "HasReleaseRating", bson.D{
		{Key: "releases", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "id", Value: releaseID},
			{Key: "ratings.username", Value: username},
		}}}},
	})
}

func (s *Store) exists(ctx context.Context, op string, filter bson.D) (bool, error) {
	start := time.Now()
	err := s.artists.FindOne(ctx, filter,
		findProjection(bson.D{{Key: "_id", Value: true}}),
	).Err()
	metrics.ObserveStoreOp("catalog", op, start, ignoreNoDocuments(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Unavailable("catalog."+op, err)
	}
	return true, nil
}

func findProjection(proj bson.D) *options.FindOneOptions {
	return options.FindOne().SetProjection(proj)
}

// ignoreNoDocuments keeps absent documents out of the error metrics; an
// empty lookup is a domain outcome, not a store failure.
func ignoreNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

func (s *Store) update(ctx context.Context, op string, filter, updateDoc bson.D) error {
	start := time.Now()
	_, err := s.artists.UpdateOne(ctx, filter, updateDoc)
	metrics.ObserveStoreOp("catalog", op, start, err)
	if err != nil {
		return apperr.Unavailable("catalog."+op, err)
	}
	return nil
}

func (s *Store) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline, out interface{}) error {
	start := time.Now()
	cursor, err := s.artists.Aggregate(ctx, pipeline)
	if err == nil {
		defer cursor.Close(ctx)
		err = cursor.All(ctx, out)
	}
	metrics.ObserveStoreOp("catalog", op, start, err)
	if err != nil {
		return apperr.Unavailable("catalog."+op, err)
	}
	return nil
}
