// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Traversal result rows. The graph layer returns bare keys and scores;
// the recommendation engine enriches them against the document stores.

// GenreFollower is a candidate friend ranked by follow count in a genre.
type GenreFollower struct {
	Username  string
	QtFollows int64
}

// RatedRelease is one release the user rated, with the edge rating.
type RatedRelease struct {
	ReleaseID string
	Rating    int64
}

// CoRater is another user who rated the same release, with their rating.
type CoRater struct {
	Username string
	Rating   int64
}

// FriendRating is one high rating among the user's friends.
type FriendRating struct {
	Friend    string
	ReleaseID string
	Rating    int64
}

// TopArtistsByGenre ranks artists in the genre by stored popularity,
// descending, excluding artists the user already follows.
func (s *Store) TopArtistsByGenre(ctx context.Context, username, genre string, limit int) ([]string, error) {
	records, err := s.readRecords(ctx, "TopArtistsByGenre", `
		MATCH (a:Artist)-[:BELONGS_TO]->(g:Genre {name: $genre})
		WHERE NOT EXISTS {
			MATCH (u:User {username: $username})-[:FOLLOWS]->(a)
		}
		RETURN a.id AS id
		ORDER BY a.popularity DESC
		LIMIT $limit
	`, map[string]any{"genre": genre, "username": username, "limit": limit})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		id, _, err := neo4j.GetRecordValue[string](record, "id")
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MostFollowedGenre returns the genre with the most distinct followed
// artists for the user, or "" when the user follows no genre-tagged
// artist. Ties break on first encountered.
func (s *Store) MostFollowedGenre(ctx context.Context, username string) (string, error) {
	records, err := s.readRecords(ctx, "MostFollowedGenre", `
		MATCH (u:User {username: $username})-[:FOLLOWS]->(a:Artist)-[:BELONGS_TO]->(g:Genre)
		RETURN g.name AS genre, COUNT(DISTINCT a) AS qt_follows
		ORDER BY qt_follows DESC
		LIMIT 1
	`, map[string]any{"username": username})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	genre, _, err := neo4j.GetRecordValue[string](records[0], "genre")
	if err != nil {
		return "", nil
	}
	return genre, nil
}

// TopGenreFollowers finds users following artists in the genre, ranked by
// distinct follow count in that genre, excluding the user and their
// current friends.
func (s *Store) TopGenreFollowers(ctx context.Context, username, genre string, limit int) ([]GenreFollower, error) {
	records, err := s.readRecords(ctx, "TopGenreFollowers", `
		MATCH (other:User)-[:FOLLOWS]->(a:Artist)-[:BELONGS_TO]->(g:Genre {name: $genre})
		WHERE other.username <> $username
		  AND NOT EXISTS {
			MATCH (:User {username: $username})-[:FRIENDS_WITH]->(other)
		  }
		RETURN other.username AS username, COUNT(DISTINCT a) AS qt_follows
		ORDER BY qt_follows DESC
		LIMIT $limit
	`, map[string]any{"username": username, "genre": genre, "limit": limit})
	if err != nil {
		return nil, err
	}

	followers := make([]GenreFollower, 0, len(records))
	for _, record := range records {
		name, _, err := neo4j.GetRecordValue[string](record, "username")
		if err != nil {
			continue
		}
		count, _, _ := neo4j.GetRecordValue[int64](record, "qt_follows")
		followers = append(followers, GenreFollower{Username: name, QtFollows: count})
	}
	return followers, nil
}

// RatedReleases returns every release the user rated at or above min.
func (s *Store) RatedReleases(ctx context.Context, username string, min int) ([]RatedRelease, error) {
	records, err := s.readRecords(ctx, "RatedReleases", `
		MATCH (u:User {username: $username})-[rel:RATED]->(r:Release)
		WHERE rel.rating >= $min
		RETURN r.id AS id, rel.rating AS rating
	`, map[string]any{"username": username, "min": min})
	if err != nil {
		return nil, err
	}

	releases := make([]RatedRelease, 0, len(records))
	for _, record := range records {
		id, _, err := neo4j.GetRecordValue[string](record, "id")
		if err != nil {
			continue
		}
		rating, _, _ := neo4j.GetRecordValue[int64](record, "rating")
		releases = append(releases, RatedRelease{ReleaseID: id, Rating: rating})
	}
	return releases, nil
}

// CoRaters finds other users who rated the release at or above min,
// ranked by their rating descending, excluding the user and their
// current friends.
func (s *Store) CoRaters(ctx context.Context, username, releaseID string, min, limit int) ([]CoRater, error) {
	records, err := s.readRecords(ctx, "CoRaters", `
		MATCH (other:User)-[rel:RATED]->(r:Release {id: $release_id})
		WHERE other.username <> $username
		  AND rel.rating >= $min
		  AND NOT EXISTS {
			MATCH (:User {username: $username})-[:FRIENDS_WITH]->(other)
		  }
		RETURN other.username AS username, rel.rating AS rating
		ORDER BY rating DESC
		LIMIT $limit
	`, map[string]any{"username": username, "release_id": releaseID, "min": min, "limit": limit})
	if err != nil {
		return nil, err
	}

	raters := make([]CoRater, 0, len(records))
	for _, record := range records {
		name, _, err := neo4j.GetRecordValue[string](record, "username")
		if err != nil {
			continue
		}
		rating, _, _ := neo4j.GetRecordValue[int64](record, "rating")
		raters = append(raters, CoRater{Username: name, Rating: rating})
	}
	return raters, nil
}

// FriendHighRatings returns the top ratings at or above min among the
// user's friends, ordered by rating descending.
func (s *Store) FriendHighRatings(ctx context.Context, username string, min, limit int) ([]FriendRating, error) {
	records, err := s.readRecords(ctx, "FriendHighRatings", `
		MATCH (u:User {username: $username})-[:FRIENDS_WITH]->(friend:User)-[rel:RATED]->(r:Release)
		WHERE rel.rating >= $min
		RETURN friend.username AS friend, r.id AS id, rel.rating AS rating
		ORDER BY rating DESC
		LIMIT $limit
	`, map[string]any{"username": username, "min": min, "limit": limit})
	if err != nil {
		return nil, err
	}

	ratings := make([]FriendRating, 0, len(records))
	for _, record := range records {
		friend, _, err := neo4j.GetRecordValue[string](record, "friend")
		if err != nil {
			continue
		}
		id, _, _ := neo4j.GetRecordValue[string](record, "id")
		rating, _, _ := neo4j.GetRecordValue[int64](record, "rating")
		ratings = append(ratings, FriendRating{Friend: friend, ReleaseID: id, Rating: rating})
	}
	return ratings, nil
}
