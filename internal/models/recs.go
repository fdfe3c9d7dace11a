// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package models

// ArtistRec is a single recommended artist picked from the top of the
// ranking for the user's most-followed genre.
type ArtistRec struct {
	Genre  string        `json:"genre"`
	Artist ArtistSummary `json:"artist"`
}

// FriendByGenreRec is a recommended user who follows artists in the
// requesting user's most-followed genre.
type FriendByGenreRec struct {
	Genre     string `json:"genre"`
	Username  string `json:"username"`
	QtFollows int64  `json:"qt_follows"`
}

// FriendByReviewsRec is a recommended user who rated the same release as
// the requesting user at least as favourably.
type FriendByReviewsRec struct {
	Release  ReleaseRef `json:"release"`
	Username string     `json:"username"`
	Rating   int        `json:"rating"`
}

// ReleaseRec is a release one of the user's friends rated highly.
type ReleaseRec struct {
	Friend  string        `json:"friend"`
	Rating  int           `json:"rating"`
	Release ReleaseDetail `json:"release"`
}
