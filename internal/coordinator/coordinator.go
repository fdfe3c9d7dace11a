// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package coordinator implements the dual-write sagas that keep the
// document stores and the graph store mutually consistent.
//
// Every mutating operation follows the same shape:
//
//  1. validate input
//  2. check precondition entities exist (document stores)
//  3. check the target relationship does not already exist (graph store)
//  4. apply the Account Store write
//  5. apply the Catalog Store write, if any
//  6. create or delete the Graph Store edge last
//
// Steps 4-6 are not transactional across stores. When a step fails after
// an earlier step already mutated a store, the coordinator records a
// reconciliation event naming the first failed step; the background
// repairer replays the remaining steps idempotently. Creations put the
// graph edge last so a partial failure leaves denormalized data present
// but the edge absent, which a replay can finish safely.
package coordinator

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/discograph/discograph/internal/account"
	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/catalog"
	"github.com/discograph/discograph/internal/metrics"
	"github.com/discograph/discograph/internal/models"
	"github.com/discograph/discograph/internal/reconcile"
)

// Saga action names, shared with the reconciliation log.
const (
	ActionRegister = "register_user"
	ActionDelete   = "delete_user"
	ActionRate     = "rate_release"
	ActionUnrate   = "unrate_release"
	ActionFollow   = "follow_artist"
	ActionUnfollow = "unfollow_artist"
	ActionBefriend = "befriend_user"
	ActionUnfriend = "unfriend_user"
)

// AccountStore is the slice of the account store the coordinator needs.
type AccountStore interface {
	ExistsUser(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, username string) error
	CascadeLists(ctx context.Context, username string) (*models.CascadeLists, error)
	UpdateUser(ctx context.Context, username string, update account.Update) error
	PushRating(ctx context.Context, username string, rating models.UserRating) error
	PullRating(ctx context.Context, username, releaseID string) error
	PushFollow(ctx context.Context, username string, follow models.Follow) error
	PullFollow(ctx context.Context, username, artistID string) error
	PushFriend(ctx context.Context, username, friend string) error
	PullFriend(ctx context.Context, username, friend string) error
}

// CatalogStore is the slice of the catalog store the coordinator needs.
type CatalogStore interface {
	ExistsArtist(ctx context.Context, id string) (bool, error)
	ExistsRelease(ctx context.Context, releaseID string) (bool, error)
	ResolveRelease(ctx context.Context, releaseID string) (*catalog.ReleaseOwner, error)
	HasReleaseRating(ctx context.Context, releaseID, username string) (bool, error)
	ArtistRef(ctx context.Context, id string) (*models.ArtistRef, error)
	PushRating(ctx context.Context, releaseID string, rating models.Rating) error
	PullRating(ctx context.Context, releaseID, username string) error
	IncrementFollowers(ctx context.Context, artistID string, delta int64) error
}

// GraphStore is the slice of the graph store the coordinator needs.
type GraphStore interface {
	MergeUserNode(ctx context.Context, username string) error
	DetachDeleteUser(ctx context.Context, username string) error
	MergeRatedEdge(ctx context.Context, username, releaseID string, rating int) error
	DeleteRatedEdge(ctx context.Context, username, releaseID string) error
	MergeFollowsEdge(ctx context.Context, username, artistID string) error
	DeleteFollowsEdge(ctx context.Context, username, artistID string) error
	MergeFriendship(ctx context.Context, username1, username2 string) error
	DeleteFriendship(ctx context.Context, username1, username2 string) error
	RatingExists(ctx context.Context, username, releaseID string) (bool, error)
	FollowExists(ctx context.Context, username, artistID string) (bool, error)
	FriendshipExists(ctx context.Context, username1, username2 string) (bool, error)
}

// Log records partial saga failures for out-of-band repair.
type Log interface {
	Append(ctx context.Context, action, step string, keys map[string]string, cause error) string
}

// Coordinator runs the dual-write sagas.
type Coordinator struct {
	accounts   AccountStore
	catalog    CatalogStore
	graph      GraphStore
	log        Log
	bcryptCost int
}

// New creates a coordinator over the three stores and the
// reconciliation log.
func New(accounts AccountStore, cat CatalogStore, graph GraphStore, log Log, bcryptCost int) *Coordinator {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Coordinator{
		accounts:   accounts,
		catalog:    cat,
		graph:      graph,
		log:        log,
		bcryptCost: bcryptCost,
	}
}

func step(action, name string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metrics.SagaSteps.WithLabelValues(action, name, outcome).Inc()
	return err
}

// RegisterInput is the register payload after shape validation.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Bio      string
}

// Register creates a user in the account store and mirrors the User node
// into the graph.
func (c *Coordinator) Register(ctx context.Context, in RegisterInput) error {
	exists, err := c.accounts.ExistsUser(ctx, in.Username)
	if err != nil {
		return err
	}
	if exists {
		return apperr.UserAlreadyExists(in.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), c.bcryptCost)
	if err != nil {
		return apperr.Unavailable("coordinator.Register", err)
	}

	user := models.User{
		Username: in.Username,
		Password: string(hash),
		Name:     in.Name,
		Bio:      in.Bio,
		Friends:  []string{},
		Ratings:  []models.UserRating{},
		Follows:  []models.Follow{},
	}
	if err := step(ActionRegister, reconcile.StepAccount, c.accounts.CreateUser(ctx, user)); err != nil {
		return err
	}

	if err := step(ActionRegister, reconcile.StepGraph, c.graph.MergeUserNode(ctx, in.Username)); err != nil {
		c.log.Append(ctx, ActionRegister, reconcile.StepGraph,
			map[string]string{"username": in.Username}, err)
		return err
	}
	return nil
}

// UpdateInput is the profile update payload. Nil means the field was not
// in the request; an empty Name or Bio removes the field.
type UpdateInput struct {
	Password *string
	Name     *string
	Bio      *string
}

// UpdateProfile applies a partial profile update. This touches the
// account store only; no denormalized copy or graph edge depends on
// password, name or bio.
func (c *Coordinator) UpdateProfile(ctx context.Context, username string, in UpdateInput) error {
	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}

	update := account.Update{Name: in.Name, Bio: in.Bio}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), c.bcryptCost)
		if err != nil {
			return apperr.Unavailable("coordinator.UpdateProfile", err)
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}
	if update.Empty() {
		return apperr.NoValidFields()
	}
	return c.accounts.UpdateUser(ctx, username, update)
}

// Delete removes a user and cascades the removal through every
// denormalized copy and graph edge: friends lists of other users, ratings
// embedded in catalog releases, follower counters, and finally the User
// node with all incident edges.
//
// Each cascaded entry is also pulled from the user's own document as soon
// as it is applied, so a replayed cascade re-reads only the work that
// never ran. The follower decrement is the one non-idempotent step: a
// failure between it and its list pull records the artist id, letting the
// repair finish the pull without decrementing again.
func (c *Coordinator) Delete(ctx context.Context, username string) error {
	lists, err := c.accounts.CascadeLists(ctx, username)
	if err != nil {
		return err
	}

	for _, friend := range lists.Friends {
		if err := step(ActionDelete, reconcile.StepAccount, c.accounts.PullFriend(ctx, friend, username)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepAccount,
				map[string]string{"username": username}, err)
			return err
		}
		if err := step(ActionDelete, reconcile.StepAccount, c.accounts.PullFriend(ctx, username, friend)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepAccount,
				map[string]string{"username": username}, err)
			return err
		}
	}

	for _, rating := range lists.Ratings {
		if err := step(ActionDelete, reconcile.StepCatalog, c.catalog.PullRating(ctx, rating.ID, username)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepCatalog,
				map[string]string{"username": username}, err)
			return err
		}
		if err := step(ActionDelete, reconcile.StepAccount, c.accounts.PullRating(ctx, username, rating.ID)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepAccount,
				map[string]string{"username": username}, err)
			return err
		}
	}
	for _, follow := range lists.Follows {
		if err := step(ActionDelete, reconcile.StepCatalog, c.catalog.IncrementFollowers(ctx, follow.ID, -1)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepCatalog,
				map[string]string{"username": username, "artist_id": follow.ID}, err)
			return err
		}
		if err := step(ActionDelete, reconcile.StepAccount, c.accounts.PullFollow(ctx, username, follow.ID)); err != nil {
			c.log.Append(ctx, ActionDelete, reconcile.StepAccount,
				map[string]string{"username": username, "artist_id": follow.ID}, err)
			return err
		}
	}

	if err := step(ActionDelete, reconcile.StepAccount, c.accounts.DeleteUser(ctx, username)); err != nil {
		c.log.Append(ctx, ActionDelete, reconcile.StepAccount,
			map[string]string{"username": username}, err)
		return err
	}

	if err := step(ActionDelete, reconcile.StepGraph, c.graph.DetachDeleteUser(ctx, username)); err != nil {
		c.log.Append(ctx, ActionDelete, reconcile.StepGraph,
			map[string]string{"username": username}, err)
		return err
	}
	return nil
}

// Rate records a rating in all three stores: the user's denormalized
// ratings list, the release's embedded ratings array, and the RATED edge.
func (c *Coordinator) Rate(ctx context.Context, username, releaseID string, rating int) error {
	if rating < 0 || rating > 10 {
		return apperr.InvalidRating(float64(rating))
	}

	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}

	owner, err := c.catalog.ResolveRelease(ctx, releaseID)
	if err != nil {
		return err
	}

	rated, err := c.graph.RatingExists(ctx, username, releaseID)
	if err != nil {
		return err
	}
	if rated {
		return apperr.RatingAlreadyExists(username, releaseID)
	}

	keys := map[string]string{
		"username":    username,
		"release_id":  releaseID,
		"artist_name": owner.ArtistName,
		"release":     owner.ReleaseName,
		"rating":      strconv.Itoa(rating),
	}

	userRating := models.UserRating{
		ID:     owner.ReleaseID,
		Artist: owner.ArtistName,
		Name:   owner.ReleaseName,
		Rating: rating,
	}
	if err := step(ActionRate, reconcile.StepAccount, c.accounts.PushRating(ctx, username, userRating)); err != nil {
		return err
	}

	catalogRating := models.Rating{Username: username, Rating: rating}
	if err := step(ActionRate, reconcile.StepCatalog, c.catalog.PushRating(ctx, releaseID, catalogRating)); err != nil {
		c.log.Append(ctx, ActionRate, reconcile.StepCatalog, keys, err)
		return err
	}

	if err := step(ActionRate, reconcile.StepGraph, c.graph.MergeRatedEdge(ctx, username, releaseID, rating)); err != nil {
		c.log.Append(ctx, ActionRate, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}

// Unrate removes a rating from all three stores.
func (c *Coordinator) Unrate(ctx context.Context, username, releaseID string) error {
	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}

	exists, err = c.catalog.ExistsRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ReleaseNotFound(releaseID)
	}

	rated, err := c.graph.RatingExists(ctx, username, releaseID)
	if err != nil {
		return err
	}
	if !rated {
		return apperr.RatingNotFound(releaseID, username)
	}

	keys := map[string]string{"username": username, "release_id": releaseID}

	if err := step(ActionUnrate, reconcile.StepAccount, c.accounts.PullRating(ctx, username, releaseID)); err != nil {
		return err
	}
	if err := step(ActionUnrate, reconcile.StepCatalog, c.catalog.PullRating(ctx, releaseID, username)); err != nil {
		c.log.Append(ctx, ActionUnrate, reconcile.StepCatalog, keys, err)
		return err
	}
	if err := step(ActionUnrate, reconcile.StepGraph, c.graph.DeleteRatedEdge(ctx, username, releaseID)); err != nil {
		c.log.Append(ctx, ActionUnrate, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}

// Follow records a follow in all three stores: the user's follows list,
// the artist's follower counter, and the FOLLOWS edge.
func (c *Coordinator) Follow(ctx context.Context, username, artistID string) error {
	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}

	artist, err := c.catalog.ArtistRef(ctx, artistID)
	if err != nil {
		return err
	}

	follows, err := c.graph.FollowExists(ctx, username, artistID)
	if err != nil {
		return err
	}
	if follows {
		return apperr.FollowAlreadyExists(username, artistID)
	}

	keys := map[string]string{"username": username, "artist_id": artistID, "artist_name": artist.Name}

	follow := models.Follow{ID: artist.ID, Name: artist.Name}
	if err := step(ActionFollow, reconcile.StepAccount, c.accounts.PushFollow(ctx, username, follow)); err != nil {
		return err
	}
	if err := step(ActionFollow, reconcile.StepCatalog, c.catalog.IncrementFollowers(ctx, artistID, 1)); err != nil {
		c.log.Append(ctx, ActionFollow, reconcile.StepCatalog, keys, err)
		return err
	}
	if err := step(ActionFollow, reconcile.StepGraph, c.graph.MergeFollowsEdge(ctx, username, artistID)); err != nil {
		c.log.Append(ctx, ActionFollow, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}

// Unfollow removes a follow from all three stores.
func (c *Coordinator) Unfollow(ctx context.Context, username, artistID string) error {
	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.UserNotFound(username)
	}

	exists, err = c.catalog.ExistsArtist(ctx, artistID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ArtistNotFound(artistID)
	}

	follows, err := c.graph.FollowExists(ctx, username, artistID)
	if err != nil {
		return err
	}
	if !follows {
		return apperr.FollowNotFound(artistID, username)
	}

	keys := map[string]string{"username": username, "artist_id": artistID}

	if err := step(ActionUnfollow, reconcile.StepAccount, c.accounts.PullFollow(ctx, username, artistID)); err != nil {
		return err
	}
	if err := step(ActionUnfollow, reconcile.StepCatalog, c.catalog.IncrementFollowers(ctx, artistID, -1)); err != nil {
		c.log.Append(ctx, ActionUnfollow, reconcile.StepCatalog, keys, err)
		return err
	}
	if err := step(ActionUnfollow, reconcile.StepGraph, c.graph.DeleteFollowsEdge(ctx, username, artistID)); err != nil {
		c.log.Append(ctx, ActionUnfollow, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}

// Befriend creates a symmetric friendship: both users' friends lists and
// both directions of the FRIENDS_WITH edge.
func (c *Coordinator) Befriend(ctx context.Context, username, friend string) error {
	if username == friend {
		return apperr.InvalidFriendship(username)
	}

	for _, name := range []string{username, friend} {
		exists, err := c.accounts.ExistsUser(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.UserNotFound(name)
		}
	}

	friends, err := c.graph.FriendshipExists(ctx, username, friend)
	if err != nil {
		return err
	}
	if friends {
		return apperr.FriendshipAlreadyExists(username, friend)
	}

	keys := map[string]string{"username": username, "friend": friend}

	if err := step(ActionBefriend, reconcile.StepAccount, c.accounts.PushFriend(ctx, username, friend)); err != nil {
		return err
	}
	if err := step(ActionBefriend, reconcile.StepAccount, c.accounts.PushFriend(ctx, friend, username)); err != nil {
		c.log.Append(ctx, ActionBefriend, reconcile.StepAccount, keys, err)
		return err
	}
	if err := step(ActionBefriend, reconcile.StepGraph, c.graph.MergeFriendship(ctx, username, friend)); err != nil {
		c.log.Append(ctx, ActionBefriend, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}

// Unfriend removes a friendship from both users' lists and both edge
// directions.
func (c *Coordinator) Unfriend(ctx context.Context, username, friend string) error {
	for _, name := range []string{username, friend} {
		exists, err := c.accounts.ExistsUser(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.UserNotFound(name)
		}
	}

	friends, err := c.graph.FriendshipExists(ctx, username, friend)
	if err != nil {
		return err
	}
	if !friends {
		return apperr.FriendshipNotFound(username, friend)
	}

	keys := map[string]string{"username": username, "friend": friend}

	if err := step(ActionUnfriend, reconcile.StepAccount, c.accounts.PullFriend(ctx, username, friend)); err != nil {
		return err
	}
	if err := step(ActionUnfriend, reconcile.StepAccount, c.accounts.PullFriend(ctx, friend, username)); err != nil {
		c.log.Append(ctx, ActionUnfriend, reconcile.StepAccount, keys, err)
		return err
	}
	if err := step(ActionUnfriend, reconcile.StepGraph, c.graph.DeleteFriendship(ctx, username, friend)); err != nil {
		c.log.Append(ctx, ActionUnfriend, reconcile.StepGraph, keys, err)
		return err
	}
	return nil
}
