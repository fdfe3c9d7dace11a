// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package recommend implements the graph-traversal recommendation engine.
//
// Every query traverses the graph store first, then enriches the winning
// node(s) against the document stores. No query ever returns an entity
// the requesting user already follows or is friends with, and none returns
// the user itself.
//
// The single-result queries rank candidates deterministically, narrow to a
// small top pool, and pick one member of the pool at random: ranking
// guards quality, randomness gives variety across repeated calls. The
// randomness lives behind the Picker interface so tests can pin it.
package recommend

import (
	"context"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/catalog"
	"github.com/discograph/discograph/internal/graph"
	"github.com/discograph/discograph/internal/models"
)

// GraphReader is the slice of the graph store the engine needs.
type GraphReader interface {
	GenreExists(ctx context.Context, genre string) (bool, error)
	TopArtistsByGenre(ctx context.Context, username, genre string, limit int) ([]string, error)
	MostFollowedGenre(ctx context.Context, username string) (string, error)
	TopGenreFollowers(ctx context.Context, username, genre string, limit int) ([]graph.GenreFollower, error)
	RatedReleases(ctx context.Context, username string, min int) ([]graph.RatedRelease, error)
	CoRaters(ctx context.Context, username, releaseID string, min, limit int) ([]graph.CoRater, error)
	FriendHighRatings(ctx context.Context, username string, min, limit int) ([]graph.FriendRating, error)
}

// CatalogReader enriches graph results with document-store detail.
type CatalogReader interface {
	ArtistSummary(ctx context.Context, id string) (*models.ArtistSummary, error)
	ResolveRelease(ctx context.Context, releaseID string) (*catalog.ReleaseOwner, error)
	GetRelease(ctx context.Context, releaseID string) (*models.ReleaseDetail, error)
}

// AccountReader checks the requesting user exists before traversing.
type AccountReader interface {
	ExistsUser(ctx context.Context, username string) (bool, error)
}

// Options tunes the engine's ranking bounds.
type Options struct {
	// DefaultLimit applies when the caller passes limit <= 0.
	DefaultLimit int
	// MaxLimit caps any caller-supplied limit.
	MaxLimit int
	// TopPool is the pool size the single-result queries pick from.
	TopPool int
	// MinRating is the lowest rating treated as an endorsement.
	MinRating int
}

// DefaultOptions returns the production ranking bounds.
func DefaultOptions() Options {
	return Options{DefaultLimit: 10, MaxLimit: 50, TopPool: 10, MinRating: 6}
}

// Engine runs the recommendation queries.
type Engine struct {
	graph    GraphReader
	catalog  CatalogReader
	accounts AccountReader
	picker   Picker
	opts     Options
}

// New creates an engine. A nil picker falls back to FirstPicker.
func New(g GraphReader, c CatalogReader, a AccountReader, picker Picker, opts Options) *Engine {
	if picker == nil {
		picker = FirstPicker{}
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 50
	}
	if opts.TopPool <= 0 {
		opts.TopPool = 10
	}
	if opts.MinRating <= 0 {
		opts.MinRating = 6
	}
	return &Engine{graph: g, catalog: c, accounts: a, picker: picker, opts: opts}
}

// clampLimit applies the default and the ceiling. Exceeding the maximum is
// never an error; the limit is silently capped.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.opts.DefaultLimit
	}
	if limit > e.opts.MaxLimit {
		return e.opts.MaxLimit
	}
	return limit
}

func (e *Engine) requireUser(ctx context.Context, username string) error {
	exists, err := e.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}
	return nil
}

// ArtistsByGenre ranks artists in the given genre by popularity,
// excluding artists the user already follows, and enriches each winner
// with its catalog summary.
func (e *Engine) ArtistsByGenre(ctx context.Context, username, genre string, limit int) ([]models.ArtistSummary, error) {
	limit = e.clampLimit(limit)

	if err := e.requireUser(ctx, username); err != nil {
		return nil, err
	}
	exists, err := e.graph.GenreExists(ctx, genre)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.GenreNotFound(genre)
	}

	ids, err := e.graph.TopArtistsByGenre(ctx, username, genre, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.ArtistRecsByGenreNotFound(username, genre)
	}

	artists := make([]models.ArtistSummary, 0, len(ids))
	for _, id := range ids {
		artist, err := e.catalog.ArtistSummary(ctx, id)
		if err != nil {
			if apperr.IsNotFound(err) {
				// Node without a catalog document; skip it rather than
				// fail the whole listing.
				continue
			}
			return nil, err
		}
		artists = append(artists, *artist)
	}
	if len(artists) == 0 {
		return nil, apperr.ArtistRecsByGenreNotFound(username, genre)
	}
	return artists, nil
}

// ArtistByTopGenre infers the user's most-followed genre, ranks that
// genre's unfollowed artists, and picks one from the top pool.
func (e *Engine) ArtistByTopGenre(ctx context.Context, username string) (*models.ArtistRec, error) {
	if err := e.requireUser(ctx, username); err != nil {
		return nil, err
	}

	genre, err := e.graph.MostFollowedGenre(ctx, username)
	if err != nil {
		return nil, err
	}
	if genre == "" {
		return nil, apperr.NoGenreDataFound(username)
	}

	ids, err := e.graph.TopArtistsByGenre(ctx, username, genre, e.opts.TopPool)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.ArtistRecsByGenreNotFound(username, genre)
	}

	artist, err := e.catalog.ArtistSummary(ctx, ids[e.picker.Pick(len(ids))])
	if err != nil {
		return nil, err
	}
	return &models.ArtistRec{Genre: genre, Artist: *artist}, nil
}

// FriendByGenre infers the user's most-followed genre and recommends one
// user (not self, not a current friend) who follows that genre, weighted
// toward heavy followers via the ranked top pool.
func (e *Engine) FriendByGenre(ctx context.Context, username string) (*models.FriendByGenreRec, error) {
	if err := e.requireUser(ctx, username); err != nil {
		return nil, err
	}

	genre, err := e.graph.MostFollowedGenre(ctx, username)
	if err != nil {
		return nil, err
	}
	if genre == "" {
		return nil, apperr.NoGenreDataFound(username)
	}

	followers, err := e.graph.TopGenreFollowers(ctx, username, genre, e.opts.TopPool)
	if err != nil {
		return nil, err
	}
	if len(followers) == 0 {
		return nil, apperr.FriendRecsNotFound(username)
	}

	pick := followers[e.picker.Pick(len(followers))]
	return &models.FriendByGenreRec{
		Genre:     genre,
		Username:  pick.Username,
		QtFollows: pick.QtFollows,
	}, nil
}

// FriendByReviews picks one release the user endorsed at random, then
// recommends one co-rater (not self, not a friend) who endorsed the same
// release, drawn from the top pool ranked by their rating.
func (e *Engine) FriendByReviews(ctx context.Context, username string) (*models.FriendByReviewsRec, error) {
	if err := e.requireUser(ctx, username); err != nil {
		return nil, err
	}

	rated, err := e.graph.RatedReleases(ctx, username, e.opts.MinRating)
	if err != nil {
		return nil, err
	}
	if len(rated) == 0 {
		return nil, apperr.NoRatingsFound(username)
	}

	release := rated[e.picker.Pick(len(rated))]
	raters, err := e.graph.CoRaters(ctx, username, release.ReleaseID, e.opts.MinRating, e.opts.TopPool)
	if err != nil {
		return nil, err
	}
	if len(raters) == 0 {
		return nil, apperr.FriendRecsNotFound(username)
	}
	rater := raters[e.picker.Pick(len(raters))]

	owner, err := e.catalog.ResolveRelease(ctx, release.ReleaseID)
	if err != nil {
		return nil, err
	}
	return &models.FriendByReviewsRec{
		Release: models.ReleaseRef{
			ID:     owner.ReleaseID,
			Name:   owner.ReleaseName,
			Artist: owner.ArtistName,
		},
		Username: rater.Username,
		Rating:   int(rater.Rating),
	}, nil
}

// ReleaseByFriends recommends one release a friend endorsed, drawn from
// the top pool of the friends' highest ratings and enriched with full
// release detail.
func (e *Engine) ReleaseByFriends(ctx context.Context, username string) (*models.ReleaseRec, error) {
	if err := e.requireUser(ctx, username); err != nil {
		return nil, err
	}

	ratings, err := e.graph.FriendHighRatings(ctx, username, e.opts.MinRating, e.opts.TopPool)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, apperr.NoFriendsRatingsFound(username)
	}

	pick := ratings[e.picker.Pick(len(ratings))]
	release, err := e.catalog.GetRelease(ctx, pick.ReleaseID)
	if err != nil {
		return nil, err
	}
	return &models.ReleaseRec{
		Friend:  pick.Friend,
		Rating:  int(pick.Rating),
		Release: *release,
	}, nil
}
