// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package api

import (
	"context"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/coordinator"
	"github.com/discograph/discograph/internal/models"
)

type fakeCatalogReads struct {
	artists  map[string]*models.ArtistDetail
	releases map[string]*models.ReleaseDetail
}

func (f *fakeCatalogReads) GetArtist(_ context.Context, id string) (*models.ArtistDetail, error) {
	if a, ok := f.artists[id]; ok {
		return a, nil
	}
	return nil, apperr.ArtistNotFound(id)
}

func (f *fakeCatalogReads) GetArtistTracks(_ context.Context, id string) (*models.ArtistTracks, error) {
	if a, ok := f.artists[id]; ok {
		return &models.ArtistTracks{Artist: models.ArtistRef{ID: a.ID, Name: a.Name}}, nil
	}
	return nil, apperr.ArtistNotFound(id)
}

func (f *fakeCatalogReads) GetRelease(_ context.Context, releaseID string) (*models.ReleaseDetail, error) {
	if r, ok := f.releases[releaseID]; ok {
		return r, nil
	}
	return nil, apperr.ReleaseNotFound(releaseID)
}

func (f *fakeCatalogReads) GetReleaseRatings(_ context.Context, releaseID string) (*models.ReleaseRatings, error) {
	if r, ok := f.releases[releaseID]; ok {
		return &models.ReleaseRatings{
			Release: models.ReleaseRef{ID: r.ID, Name: r.Name, Artist: r.Artist.Name},
		}, nil
	}
	return nil, apperr.ReleaseNotFound(releaseID)
}

type fakeAccountReads struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeAccountReads) GetUser(_ context.Context, username string) (*models.UserProfile, error) {
	if p, ok := f.profiles[username]; ok {
		return p, nil
	}
	return nil, apperr.UserNotFound(username)
}

func (f *fakeAccountReads) ListFriends(_ context.Context, username string) (*models.FriendList, error) {
	if _, ok := f.profiles[username]; !ok {
		return nil, apperr.UserNotFound(username)
	}
	return &models.FriendList{Username: username, Items: []string{}}, nil
}

func (f *fakeAccountReads) ListRatings(_ context.Context, username string) (*models.RatingList, error) {
	if _, ok := f.profiles[username]; !ok {
		return nil, apperr.UserNotFound(username)
	}
	return &models.RatingList{Username: username, Items: []models.UserRating{}}, nil
}

func (f *fakeAccountReads) ListFollows(_ context.Context, username string) (*models.FollowList, error) {
	if _, ok := f.profiles[username]; !ok {
		return nil, apperr.UserNotFound(username)
	}
	return &models.FollowList{Username: username, Items: []models.Follow{}}, nil
}

// fakeMutator records the last call per operation and returns the
// configured error, if any.
type fakeMutator struct {
	err error

	registered coordinator.RegisterInput
	deleted    string
	updated    coordinator.UpdateInput
	rated      struct {
		username, releaseID string
		rating              int
	}
	followed struct{ username, artistID string }
	friended struct{ username, friend string }
}

func (f *fakeMutator) Register(_ context.Context, in coordinator.RegisterInput) error {
	f.registered = in
	return f.err
}

func (f *fakeMutator) Delete(_ context.Context, username string) error {
	f.deleted = username
	return f.err
}

func (f *fakeMutator) UpdateProfile(_ context.Context, _ string, in coordinator.UpdateInput) error {
	f.updated = in
	return f.err
}

func (f *fakeMutator) Rate(_ context.Context, username, releaseID string, rating int) error {
	f.rated.username = username
	f.rated.releaseID = releaseID
	f.rated.rating = rating
	return f.err
}

func (f *fakeMutator) Unrate(context.Context, string, string) error { return f.err }

func (f *fakeMutator) Follow(_ context.Context, username, artistID string) error {
	f.followed.username = username
	f.followed.artistID = artistID
	return f.err
}

func (f *fakeMutator) Unfollow(context.Context, string, string) error { return f.err }

func (f *fakeMutator) Befriend(_ context.Context, username, friend string) error {
	f.friended.username = username
	f.friended.friend = friend
	return f.err
}

func (f *fakeMutator) Unfriend(context.Context, string, string) error { return f.err }

type fakeRecommender struct {
	err       error
	lastGenre string
	lastLimit int
}

func (f *fakeRecommender) ArtistsByGenre(_ context.Context, _, genre string, limit int) ([]models.ArtistSummary, error) {
	f.lastGenre = genre
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []models.ArtistSummary{{ID: "a1", Name: "Alpha"}}, nil
}

func (f *fakeRecommender) ArtistByTopGenre(context.Context, string) (*models.ArtistRec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ArtistRec{Genre: "jazz", Artist: models.ArtistSummary{ID: "a1", Name: "Alpha"}}, nil
}

func (f *fakeRecommender) FriendByGenre(context.Context, string) (*models.FriendByGenreRec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.FriendByGenreRec{Genre: "jazz", Username: "bruno", QtFollows: 7}, nil
}

func (f *fakeRecommender) FriendByReviews(context.Context, string) (*models.FriendByReviewsRec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.FriendByReviewsRec{Username: "dora", Rating: 10}, nil
}

func (f *fakeRecommender) ReleaseByFriends(context.Context, string) (*models.ReleaseRec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReleaseRec{Friend: "bruno", Rating: 9}, nil
}
