// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"context"

	"github.com/discograph/discograph/internal/coordinator"
	"github.com/discograph/discograph/internal/models"
)

// CatalogReads is the read surface of the catalog store.
type CatalogReads interface {
	GetArtist(ctx context.Context, id string) (*models.ArtistDetail, error)
	GetArtistTracks(ctx context.Context, id string) (*models.ArtistTracks, error)
	GetRelease(ctx context.Context, releaseID string) (*models.ReleaseDetail, error)
	GetReleaseRatings(ctx context.Context, releaseID string) (*models.ReleaseRatings, error)
}

// AccountReads is the read surface of the account store.
type AccountReads interface {
	GetUser(ctx context.Context, username string) (*models.UserProfile, error)
	ListFriends(ctx context.Context, username string) (*models.FriendList, error)
	ListRatings(ctx context.Context, username string) (*models.RatingList, error)
	ListFollows(ctx context.Context, username string) (*models.FollowList, error)
}

// Mutator is the coordinator surface the handlers drive.
type Mutator interface {
	Register(ctx context.Context, in coordinator.RegisterInput) error
	Delete(ctx context.Context, username string) error
	UpdateProfile(ctx context.Context, username string, in coordinator.UpdateInput) error
	Rate(ctx context.Context, username, releaseID string, rating int) error
	Unrate(ctx context.Context, username, releaseID string) error
	Follow(ctx context.Context, username, artistID string) error
	Unfollow(ctx context.Context, username, artistID string) error
	Befriend(ctx context.Context, username, friend string) error
	Unfriend(ctx context.Context, username, friend string) error
}

// Recommender is the recommendation engine surface.
type Recommender interface {
	ArtistsByGenre(ctx context.Context, username, genre string, limit int) ([]models.ArtistSummary, error)
	ArtistByTopGenre(ctx context.Context, username string) (*models.ArtistRec, error)
	FriendByGenre(ctx context.Context, username string) (*models.FriendByGenreRec, error)
	FriendByReviews(ctx context.Context, username string) (*models.FriendByReviewsRec, error)
	ReleaseByFriends(ctx context.Context, username string) (*models.ReleaseRec, error)
}

// Handlers carries the stores and services the endpoints need.
type Handlers struct {
	catalog  CatalogReads
	accounts AccountReads
	mutator  Mutator
	recs     Recommender
}

// NewHandlers creates the handler set.
func NewHandlers(catalog CatalogReads, accounts AccountReads, mutator Mutator, recs Recommender) *Handlers {
	return &Handlers{
		catalog:  catalog,
		accounts: accounts,
		mutator:  mutator,
		recs:     recs,
	}
}
