// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package models

// User is the account document stored in the users collection. Friends,
// ratings and follows are denormalized copies of the graph's FRIENDS_WITH,
// RATED and FOLLOWS edges; the consistency coordinator keeps them in sync.
// The password hash is never serialized to JSON.
type User struct {
	Username string       `bson:"username" json:"username"`
	Password string       `bson:"password" json:"-"`
	Name     string       `bson:"name,omitempty" json:"name,omitempty"`
	Bio      string       `bson:"bio,omitempty" json:"bio,omitempty"`
	Friends  []string     `bson:"friends" json:"friends"`
	Ratings  []UserRating `bson:"ratings" json:"ratings"`
	Follows  []Follow     `bson:"follows" json:"follows"`
}

// UserRating is the user-side copy of a rating, denormalized with the
// artist and release names for cheap listing.
type UserRating struct {
	ID     string `bson:"id" json:"id"`
	Artist string `bson:"artist" json:"artist"`
	Name   string `bson:"name" json:"name"`
	Rating int    `bson:"rating" json:"rating"`
}

// Follow is one followed artist as stored on the user document.
type Follow struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// UserProfile is the user read model: derived counts instead of the raw
// lists. Name and bio are null when absent, never omitted.
type UserProfile struct {
	Username  string  `bson:"username" json:"username"`
	Name      *string `bson:"name" json:"name"`
	Bio       *string `bson:"bio" json:"bio"`
	QtFriends int     `bson:"qt_friends" json:"qt_friends"`
	QtRatings int     `bson:"qt_ratings" json:"qt_ratings"`
	QtFollows int     `bson:"qt_follows" json:"qt_follows"`
}

// FriendList is the friends listing body.
type FriendList struct {
	Username string   `bson:"username" json:"username"`
	Items    []string `bson:"items" json:"items"`
}

// RatingList is the ratings listing body.
type RatingList struct {
	Username string       `bson:"username" json:"username"`
	Items    []UserRating `bson:"items" json:"items"`
}

// FollowList is the follows listing body.
type FollowList struct {
	Username string   `bson:"username" json:"username"`
	Items    []Follow `bson:"items" json:"items"`
}

// CascadeLists holds the relationship lists read from a user document
// before deletion; the coordinator uses them to cascade removal through
// the other stores.
type CascadeLists struct {
	Friends []string     `bson:"friends"`
	Ratings []UserRating `bson:"ratings"`
	Follows []Follow     `bson:"follows"`
}
