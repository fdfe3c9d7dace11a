// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package models

// Artist is the catalog document stored in the artists collection.
// Releases embed tracks and ratings; the follower counter is denormalized
// from the graph's FOLLOWS edges and mutated by follow/unfollow.
type Artist struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Bio         string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Genres      []string  `bson:"genres" json:"genres"`
	QtFollowers int64     `bson:"qt_followers" json:"qt_followers"`
	Releases    []Release `bson:"releases" json:"releases"`
}

// Release is embedded in Artist. Release ids are unique across the whole
// catalog, not just within one artist.
type Release struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	ReleaseDate string   `bson:"release_date" json:"release_date"`
	Tracks      []Track  `bson:"tracks" json:"tracks"`
	Ratings     []Rating `bson:"ratings" json:"ratings"`
}

// Track is embedded in Release. Tracks have no id of their own; listings
// group them by name across an artist's releases.
type Track struct {
	Name string `bson:"name" json:"name"`
}

// Rating is the release-side copy of a rating. The user-side copy lives in
// UserRating; the graph holds the same pair as a RATED edge property.
type Rating struct {
	Username string `bson:"username" json:"username"`
	Rating   int    `bson:"rating" json:"rating"`
}

// ArtistDetail is the artist read model: releases are projected down to
// id/name/release_year and an average over every rating in the catalog of
// the artist is attached (null when the artist has no ratings at all).
type ArtistDetail struct {
	ID            string           `bson:"id" json:"id"`
	Name          string           `bson:"name" json:"name"`
	Bio           string           `bson:"bio,omitempty" json:"bio,omitempty"`
	Genres        []string         `bson:"genres" json:"genres"`
	QtFollowers   int64            `bson:"qt_followers" json:"qt_followers"`
	AverageRating *float64         `bson:"average_rating" json:"average_rating"`
	Releases      []ReleaseSummary `bson:"releases" json:"releases"`
}

// ReleaseSummary is a release as it appears inside ArtistDetail.
type ReleaseSummary struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	ReleaseYear int    `bson:"release_year" json:"release_year"`
}

// ArtistRef identifies an artist inside another read model.
type ArtistRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// TrackGroup is one distinct track name with every release of the artist
// that carries a track of that name.
type TrackGroup struct {
	Name     string     `bson:"name" json:"name"`
	Releases []TrackRef `bson:"releases" json:"releases"`
}

// TrackRef identifies a release containing a grouped track.
type TrackRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// ArtistTracks is the artist track listing: groups ordered alphabetically
// by track name.
type ArtistTracks struct {
	Artist ArtistRef    `bson:"artist" json:"artist"`
	Items  []TrackGroup `bson:"items" json:"items"`
}

// ReleaseDetail is the release read model with its owning artist and the
// average over the release's own ratings (null when it has none).
type ReleaseDetail struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Artist        ArtistRef `bson:"artist" json:"artist"`
	ReleaseDate   string    `bson:"release_date" json:"release_date"`
	RatingAverage *float64  `bson:"rating_average" json:"rating_average"`
	Tracks        []Track   `bson:"tracks" json:"tracks"`
}

// ReleaseRef identifies a release together with its owning artist's name.
type ReleaseRef struct {
	ID     string `bson:"id" json:"id"`
	Name   string `bson:"name" json:"name"`
	Artist string `bson:"artist" json:"artist"`
}

// ReleaseRatings lists every rating on one release.
type ReleaseRatings struct {
	Release ReleaseRef `bson:"release" json:"release"`
	Items   []Rating   `bson:"items" json:"items"`
}

// ArtistSummary is the enrichment projection used by recommendation
// responses.
type ArtistSummary struct {
	ID     string   `bson:"id" json:"id"`
	Name   string   `bson:"name" json:"name"`
	Bio    string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Genres []string `bson:"genres" json:"genres"`
}
