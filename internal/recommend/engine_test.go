// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package recommend

import (
	"context"
	"testing"

	"github.com/discograph/discograph/internal/apperr"
	"github.com/discograph/discograph/internal/catalog"
	"github.com/discograph/discograph/internal/graph"
	"github.com/discograph/discograph/internal/models"
)

type fakeGraphReader struct {
	genres        map[string]bool
	topArtists    map[string][]string // genre -> ranked artist ids
	topGenre      string
	follows       map[string]bool // artist ids the user follows
	genreFollower []graph.GenreFollower
	rated         []graph.RatedRelease
	coRaters      map[string][]graph.CoRater
	friendRatings []graph.FriendRating

	lastLimit int
}

func (f *fakeGraphReader) GenreExists(_ context.Context, genre string) (bool, error) {
	return f.genres[genre], nil
}

func (f *fakeGraphReader) TopArtistsByGenre(_ context.Context, _, genre string, limit int) ([]string, error) {
	f.lastLimit = limit
	ranked := f.topArtists[genre]
	var eligible []string
	for _, id := range ranked {
		if !f.follows[id] {
			eligible = append(eligible, id)
		}
		if len(eligible) == limit {
			break
		}
	}
	return eligible, nil
}

func (f *fakeGraphReader) MostFollowedGenre(context.Context, string) (string, error) {
	return f.topGenre, nil
}

func (f *fakeGraphReader) TopGenreFollowers(_ context.Context, _, _ string, limit int) ([]graph.GenreFollower, error) {
	if len(f.genreFollower) > limit {
		return f.genreFollower[:limit], nil
	}
	return f.genreFollower, nil
}

func (f *fakeGraphReader) RatedReleases(context.Context, string, int) ([]graph.RatedRelease, error) {
	return f.rated, nil
}

func (f *fakeGraphReader) CoRaters(_ context.Context, _, releaseID string, _, _ int) ([]graph.CoRater, error) {
	return f.coRaters[releaseID], nil
}

func (f *fakeGraphReader) FriendHighRatings(context.Context, string, int, int) ([]graph.FriendRating, error) {
	return f.friendRatings, nil
}

type fakeCatalogReader struct {
	artists  map[string]models.ArtistSummary
	owners   map[string]catalog.ReleaseOwner
	releases map[string]models.ReleaseDetail
}

func (f *fakeCatalogReader) ArtistSummary(_ context.Context, id string) (*models.ArtistSummary, error) {
	a, ok := f.artists[id]
	if !ok {
		return nil, apperr.ArtistNotFound(id)
	}
	return &a, nil
}

func (f *fakeCatalogReader) ResolveRelease(_ context.Context, releaseID string) (*catalog.ReleaseOwner, error) {
	o, ok := f.owners[releaseID]
	if !ok {
		return nil, apperr.ReleaseNotFound(releaseID)
	}
	return &o, nil
}

func (f *fakeCatalogReader) GetRelease(_ context.Context, releaseID string) (*models.ReleaseDetail, error) {
	r, ok := f.releases[releaseID]
	if !ok {
		return nil, apperr.ReleaseNotFound(releaseID)
	}
	return &r, nil
}

type fakeAccountReader struct {
	users map[string]bool
}

func (f *fakeAccountReader) ExistsUser(_ context.Context, username string) (bool, error) {
	return f.users[username], nil
}

func newEngine(g *fakeGraphReader, c *fakeCatalogReader, picker Picker) *Engine {
	return New(g, c, &fakeAccountReader{users: map[string]bool{"ana": true}}, picker, DefaultOptions())
}

func TestArtistsByGenre_ExcludesFollowedAndRanks(t *testing.T) {
	g := &fakeGraphReader{
		genres:     map[string]bool{"jazz": true},
		topArtists: map[string][]string{"jazz": {"a1", "a2", "a3"}},
		follows:    map[string]bool{"a2": true},
	}
	c := &fakeCatalogReader{artists: map[string]models.ArtistSummary{
		"a1": {ID: "a1", Name: "Alpha", Genres: []string{"jazz"}},
		"a3": {ID: "a3", Name: "Gamma", Genres: []string{"jazz"}},
	}}
	e := newEngine(g, c, FirstPicker{})

	artists, err := e.ArtistsByGenre(context.Background(), "ana", "jazz", 0)
	if err != nil {
		t.Fatalf("ArtistsByGenre failed: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("got %d artists, want 2", len(artists))
	}
	if artists[0].ID != "a1" || artists[1].ID != "a3" {
		t.Errorf("ranking order = %s, %s; followed artist must be excluded", artists[0].ID, artists[1].ID)
	}
}

func TestArtistsByGenre_LimitClamping(t *testing.T) {
	g := &fakeGraphReader{
		genres:     map[string]bool{"jazz": true},
		topArtists: map[string][]string{"jazz": {"a1"}},
	}
	c := &fakeCatalogReader{artists: map[string]models.ArtistSummary{
		"a1": {ID: "a1", Name: "Alpha"},
	}}
	e := newEngine(g, c, FirstPicker{})

	cases := []struct {
		limit int
		want  int
	}{
		{0, 10},   // default
		{7, 7},    // passthrough
		{500, 50}, // clamped to ceiling
	}
	for _, tc := range cases {
		if _, err := e.ArtistsByGenre(context.Background(), "ana", "jazz", tc.limit); err != nil {
			t.Fatalf("ArtistsByGenre(limit=%d) failed: %v", tc.limit, err)
		}
		if g.lastLimit != tc.want {
			t.Errorf("limit %d: query limit = %d, want %d", tc.limit, g.lastLimit, tc.want)
		}
	}
}

func TestArtistsByGenre_UnknownGenre(t *testing.T) {
	g := &fakeGraphReader{genres: map[string]bool{}}
	e := newEngine(g, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.ArtistsByGenre(context.Background(), "ana", "polka", 0)
	e2, ok := apperr.As(err)
	if !ok || e2.Code != "GenreNotFound" {
		t.Fatalf("expected GenreNotFound, got %v", err)
	}
}

func TestArtistsByGenre_NoEligibleArtists(t *testing.T) {
	g := &fakeGraphReader{
		genres:     map[string]bool{"jazz": true},
		topArtists: map[string][]string{"jazz": {"a1"}},
		follows:    map[string]bool{"a1": true},
	}
	e := newEngine(g, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.ArtistsByGenre(context.Background(), "ana", "jazz", 0)
	e2, ok := apperr.As(err)
	if !ok || e2.Code != "ArtistRecsByGenreNotFound" {
		t.Fatalf("expected ArtistRecsByGenreNotFound, got %v", err)
	}
}

func TestArtistByTopGenre_PinnedPick(t *testing.T) {
	g := &fakeGraphReader{
		topGenre:   "jazz",
		topArtists: map[string][]string{"jazz": {"a1", "a2", "a3"}},
	}
	c := &fakeCatalogReader{artists: map[string]models.ArtistSummary{
		"a1": {ID: "a1", Name: "Alpha"},
		"a2": {ID: "a2", Name: "Beta"},
		"a3": {ID: "a3", Name: "Gamma"},
	}}
	e := newEngine(g, c, pinnedPicker(2))

	rec, err := e.ArtistByTopGenre(context.Background(), "ana")
	if err != nil {
		t.Fatalf("ArtistByTopGenre failed: %v", err)
	}
	if rec.Genre != "jazz" {
		t.Errorf("genre = %s, want jazz", rec.Genre)
	}
	if rec.Artist.ID != "a3" {
		t.Errorf("picked %s, want a3 (pool index 2)", rec.Artist.ID)
	}
}

func TestArtistByTopGenre_NoGenreData(t *testing.T) {
	g := &fakeGraphReader{topGenre: ""}
	e := newEngine(g, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.ArtistByTopGenre(context.Background(), "ana")
	e2, ok := apperr.As(err)
	if !ok || e2.Code != "NoGenreDataFound" {
		t.Fatalf("expected NoGenreDataFound, got %v", err)
	}
}

func TestFriendByGenre(t *testing.T) {
	g := &fakeGraphReader{
		topGenre: "jazz",
		genreFollower: []graph.GenreFollower{
			{Username: "bruno", QtFollows: 7},
			{Username: "carla", QtFollows: 4},
		},
	}
	e := newEngine(g, &fakeCatalogReader{}, FirstPicker{})

	rec, err := e.FriendByGenre(context.Background(), "ana")
	if err != nil {
		t.Fatalf("FriendByGenre failed: %v", err)
	}
	if rec.Username != "bruno" || rec.QtFollows != 7 || rec.Genre != "jazz" {
		t.Errorf("rec = %+v", rec)
	}
}

func TestFriendByReviews(t *testing.T) {
	g := &fakeGraphReader{
		rated: []graph.RatedRelease{{ReleaseID: "r1", Rating: 9}},
		coRaters: map[string][]graph.CoRater{
			"r1": {{Username: "dora", Rating: 10}},
		},
	}
	c := &fakeCatalogReader{owners: map[string]catalog.ReleaseOwner{
		"r1": {ReleaseID: "r1", ReleaseName: "First Light", ArtistID: "a1", ArtistName: "The Knots"},
	}}
	e := newEngine(g, c, FirstPicker{})

	rec, err := e.FriendByReviews(context.Background(), "ana")
	if err != nil {
		t.Fatalf("FriendByReviews failed: %v", err)
	}
	if rec.Username != "dora" || rec.Rating != 10 {
		t.Errorf("rec = %+v", rec)
	}
	if rec.Release.ID != "r1" || rec.Release.Artist != "The Knots" {
		t.Errorf("release ref = %+v", rec.Release)
	}
}

func TestFriendByReviews_NoRatings(t *testing.T) {
	e := newEngine(&fakeGraphReader{}, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.FriendByReviews(context.Background(), "ana")
	e2, ok := apperr.As(err)
	if !ok || e2.Code != "NoRatingsFound" {
		t.Fatalf("expected NoRatingsFound, got %v", err)
	}
}

func TestReleaseByFriends(t *testing.T) {
	g := &fakeGraphReader{
		friendRatings: []graph.FriendRating{
			{Friend: "bruno", ReleaseID: "r1", Rating: 9},
		},
	}
	c := &fakeCatalogReader{releases: map[string]models.ReleaseDetail{
		"r1": {ID: "r1", Name: "First Light", Artist: models.ArtistRef{ID: "a1", Name: "The Knots"}},
	}}
	e := newEngine(g, c, FirstPicker{})

	rec, err := e.ReleaseByFriends(context.Background(), "ana")
	if err != nil {
		t.Fatalf("ReleaseByFriends failed: %v", err)
	}
	if rec.Friend != "bruno" || rec.Rating != 9 || rec.Release.ID != "r1" {
		t.Errorf("rec = %+v", rec)
	}
}

func TestReleaseByFriends_NoFriendRatings(t *testing.T) {
	e := newEngine(&fakeGraphReader{}, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.ReleaseByFriends(context.Background(), "ana")
	e2, ok := apperr.As(err)
	if !ok || e2.Code != "NoFriendsRatingsFound" {
		t.Fatalf("expected NoFriendsRatingsFound, got %v", err)
	}
}

func TestUnknownUser(t *testing.T) {
	e := newEngine(&fakeGraphReader{genres: map[string]bool{"jazz": true}}, &fakeCatalogReader{}, FirstPicker{})

	_, err := e.ArtistsByGenre(context.Background(), "ghost", "jazz", 0)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// pinnedPicker always returns the given index, clamped to the pool.
type pinnedPicker int

func (p pinnedPicker) Pick(n int) int {
	if int(p) >= n {
		return n - 1
	}
	return int(p)
}
