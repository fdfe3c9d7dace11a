// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package coordinator

import (
	"context"
	"errors"
	"slices"

	"github.com/discograph/discograph/internal/account"
	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/catalog"
	"github.com/discograph/discograph/internal/models"
	"github.com/discograph/discograph/internal/reconcile"
)

// The fakes model the same denormalized state the real stores hold so the
// tests can assert cross-store agreement after each saga. Each mutating
// method can be forced to fail by name via failOn.

type fakeAccounts struct {
	users  map[string]*models.User
	failOn string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: make(map[string]*models.User)}
}

func (f *fakeAccounts) fail(op string) error {
	if f.failOn == op {
		return apperr.Unavailable(op, errors.New("injected failure"))
	}
	return nil
}

func (f *fakeAccounts) ExistsUser(_ context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeAccounts) CreateUser(_ context.Context, user models.User) error {
	if err := f.fail("CreateUser"); err != nil {
		return err
	}
	u := user
	f.users[user.Username] = &u
	return nil
}

func (f *fakeAccounts) DeleteUser(_ context.Context, username string) error {
	if err := f.fail("DeleteUser"); err != nil {
		return err
	}
	delete(f.users, username)
	return nil
}

func (f *fakeAccounts) CascadeLists(_ context.Context, username string) (*models.CascadeLists, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, apperr.UserNotFound(username)
	}
	return &models.CascadeLists{
		Friends: slices.Clone(u.Friends),
		Ratings: slices.Clone(u.Ratings),
		Follows: slices.Clone(u.Follows),
	}, nil
}

func (f *fakeAccounts) UpdateUser(_ context.Context, username string, update account.Update) error {
	if err := f.fail("UpdateUser"); err != nil {
		return err
	}
	u, ok := f.users[username]
	if !ok {
		return apperr.UserNotFound(username)
	}
	if update.PasswordHash != nil {
		u.Password = *update.PasswordHash
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	return nil
}

func (f *fakeAccounts) PushRating(_ context.Context, username string, rating models.UserRating) error {
	if err := f.fail("PushRating"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok {
		u.Ratings = append(u.Ratings, rating)
	}
	return nil
}

func (f *fakeAccounts) PullRating(_ context.Context, username, releaseID string) error {
	if err := f.fail("PullRating"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok {
		u.Ratings = slices.DeleteFunc(u.Ratings, func(r models.UserRating) bool {
			return r.ID == releaseID
		})
	}
	return nil
}

func (f *fakeAccounts) PushFollow(_ context.Context, username string, follow models.Follow) error {
	if err := f.fail("PushFollow"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok {
		u.Follows = append(u.Follows, follow)
	}
	return nil
}

func (f *fakeAccounts) PullFollow(_ context.Context, username, artistID string) error {
	if err := f.fail("PullFollow"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok {
		u.Follows = slices.DeleteFunc(u.Follows, func(fl models.Follow) bool {
			return fl.ID == artistID
		})
	}
	return nil
}

func (f *fakeAccounts) PushFriend(_ context.Context, username, friend string) error {
	if err := f.fail("PushFriend"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok && !slices.Contains(u.Friends, friend) {
		u.Friends = append(u.Friends, friend)
	}
	return nil
}

func (f *fakeAccounts) PullFriend(_ context.Context, username, friend string) error {
	if err := f.fail("PullFriend"); err != nil {
		return err
	}
	if u, ok := f.users[username]; ok {
		u.Friends = slices.DeleteFunc(u.Friends, func(name string) bool {
			return name == friend
		})
	}
	return nil
}

type fakeRelease struct {
	id      string
	name    string
	ratings []models.Rating
}

type fakeArtist struct {
	id          string
	name        string
	qtFollowers int64
	releases    []*fakeRelease
}

type fakeCatalog struct {
	artists map[string]*fakeArtist
	failOn  string

	// failOnCall makes failOn fire only on the Nth call of that op; zero
	// fails every call.
	failOnCall int
	calls      map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{artists: make(map[string]*fakeArtist)}
}

func (f *fakeCatalog) addArtist(id, name string, releases ...*fakeRelease) {
	f.artists[id] = &fakeArtist{id: id, name: name, releases: releases}
}

func (f *fakeCatalog) fail(op string) error {
	if f.failOn != op {
		return nil
	}
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	if f.failOnCall != 0 && f.calls[op] != f.failOnCall {
		return nil
	}
	return apperr.Unavailable(op, errors.New("injected failure"))
}

func (f *fakeCatalog) findRelease(releaseID string) (*fakeArtist, *fakeRelease) {
	for _, a := range f.artists {
		for _, r := range a.releases {
			if r.id == releaseID {
				return a, r
			}
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ExistsArtist(_ context.Context, id string) (bool, error) {
	_, ok := f.artists[id]
	return ok, nil
}

func (f *fakeCatalog) ExistsRelease(_ context.Context, releaseID string) (bool, error) {
	_, r := f.findRelease(releaseID)
	return r != nil, nil
}

func (f *fakeCatalog) ResolveRelease(_ context.Context, releaseID string) (*catalog.ReleaseOwner, error) {
	a, r := f.findRelease(releaseID)
	if r == nil {
		return nil, apperr.ReleaseNotFound(releaseID)
	}
	return &catalog.ReleaseOwner{
		ReleaseID:   r.id,
		ReleaseName: r.name,
		ArtistID:    a.id,
		ArtistName:  a.name,
	}, nil
}

func (f *fakeCatalog) HasReleaseRating(_ context.Context, releaseID, username string) (bool, error) {
	_, r := f.findRelease(releaseID)
	if r == nil {
		return false, nil
	}
	return slices.ContainsFunc(r.ratings, func(rt models.Rating) bool {
		return rt.Username == username
	}), nil
}

func (f *fakeCatalog) ArtistRef(_ context.Context, id string) (*models.ArtistRef, error) {
	a, ok := f.artists[id]
	if !ok {
		return nil, apperr.ArtistNotFound(id)
	}
	return &models.ArtistRef{ID: a.id, Name: a.name}, nil
}

func (f *fakeCatalog) PushRating(_ context.Context, releaseID string, rating models.Rating) error {
	if err := f.fail("PushRating"); err != nil {
		return err
	}
	if _, r := f.findRelease(releaseID); r != nil {
		r.ratings = append(r.ratings, rating)
	}
	return nil
}

func (f *fakeCatalog) PullRating(_ context.Context, releaseID, username string) error {
	if err := f.fail("PullRating"); err != nil {
		return err
	}
	if _, r := f.findRelease(releaseID); r != nil {
		r.ratings = slices.DeleteFunc(r.ratings, func(rt models.Rating) bool {
			return rt.Username == username
		})
	}
	return nil
}

func (f *fakeCatalog) IncrementFollowers(_ context.Context, artistID string, delta int64) error {
	if err := f.fail("IncrementFollowers"); err != nil {
		return err
	}
	if a, ok := f.artists[artistID]; ok {
		a.qtFollowers += delta
	}
	return nil
}

type edge struct{ from, to string }

type fakeGraph struct {
	users   map[string]bool
	follows map[edge]bool
	rated   map[edge]int
	friends map[edge]bool
	failOn  string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		users:   make(map[string]bool),
		follows: make(map[edge]bool),
		rated:   make(map[edge]int),
		friends: make(map[edge]bool),
	}
}

func (f *fakeGraph) fail(op string) error {
	if f.failOn == op {
		return apperr.Unavailable(op, errors.New("injected failure"))
	}
	return nil
}

func (f *fakeGraph) MergeUserNode(_ context.Context, username string) error {
	if err := f.fail("MergeUserNode"); err != nil {
		return err
	}
	f.users[username] = true
	return nil
}

func (f *fakeGraph) DetachDeleteUser(_ context.Context, username string) error {
	if err := f.fail("DetachDeleteUser"); err != nil {
		return err
	}
	delete(f.users, username)
	for e := range f.follows {
		if e.from == username {
			delete(f.follows, e)
		}
	}
	for e := range f.rated {
		if e.from == username {
			delete(f.rated, e)
		}
	}
	for e := range f.friends {
		if e.from == username || e.to == username {
			delete(f.friends, e)
		}
	}
	return nil
}

func (f *fakeGraph) MergeRatedEdge(_ context.Context, username, releaseID string, rating int) error {
	if err := f.fail("MergeRatedEdge"); err != nil {
		return err
	}
	e := edge{username, releaseID}
	if _, ok := f.rated[e]; !ok {
		f.rated[e] = rating
	}
	return nil
}

func (f *fakeGraph) DeleteRatedEdge(_ context.Context, username, releaseID string) error {
	if err := f.fail("DeleteRatedEdge"); err != nil {
		return err
	}
	delete(f.rated, edge{username, releaseID})
	return nil
}

func (f *fakeGraph) MergeFollowsEdge(_ context.Context, username, artistID string) error {
	if err := f.fail("MergeFollowsEdge"); err != nil {
		return err
	}
	f.follows[edge{username, artistID}] = true
	return nil
}

func (f *fakeGraph) DeleteFollowsEdge(_ context.Context, username, artistID string) error {
	if err := f.fail("DeleteFollowsEdge"); err != nil {
		return err
	}
	delete(f.follows, edge{username, artistID})
	return nil
}

func (f *fakeGraph) MergeFriendship(_ context.Context, username1, username2 string) error {
	if err := f.fail("MergeFriendship"); err != nil {
		return err
	}
	f.friends[edge{username1, username2}] = true
	f.friends[edge{username2, username1}] = true
	return nil
}

func (f *fakeGraph) DeleteFriendship(_ context.Context, username1, username2 string) error {
	if err := f.fail("DeleteFriendship"); err != nil {
		return err
	}
	delete(f.friends, edge{username1, username2})
	delete(f.friends, edge{username2, username1})
	return nil
}

func (f *fakeGraph) RatingExists(_ context.Context, username, releaseID string) (bool, error) {
	_, ok := f.rated[edge{username, releaseID}]
	return ok, nil
}

func (f *fakeGraph) FollowExists(_ context.Context, username, artistID string) (bool, error) {
	return f.follows[edge{username, artistID}], nil
}

func (f *fakeGraph) FriendshipExists(_ context.Context, username1, username2 string) (bool, error) {
	return f.friends[edge{username1, username2}] || f.friends[edge{username2, username1}], nil
}

type loggedEvent struct {
	action string
	step   string
	keys   map[string]string
}

type fakeLog struct {
	events []loggedEvent
}

func (f *fakeLog) Append(_ context.Context, action, step string, keys map[string]string, _ error) string {
	f.events = append(f.events, loggedEvent{action: action, step: step, keys: keys})
	return "event-id"
}

// toEvent turns a captured log entry into the event the repairer would
// hand back.
func toEvent(e loggedEvent) reconcile.Event {
	return reconcile.Event{
		ID:     "event-id",
		Action: e.action,
		Step:   e.step,
		Keys:   e.keys,
	}
}
