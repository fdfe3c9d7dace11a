// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

// Package apperr defines the domain error taxonomy shared by the stores,
// the consistency coordinator and the HTTP layer.
//
// Every error carries a stable machine-readable code, a human-readable
// message and exactly one HTTP status. Handlers translate an *Error into
// the standard {code, message} error body; nothing else ever leaks to a
// client. The kinds are:
//
//   - NotFound (404): an entity is absent (user, artist, release, genre,
//     rating, follow, friendship, recommendation set)
//   - Conflict (409): duplicate creation (user, rating, follow, friendship)
//   - Validation (422): missing property, out-of-range rating, no valid
//     update fields, missing or invalid query parameter
//   - Unavailable (503): a store-level failure (connectivity, timeout)
//   - Inconsistency (500): an invariant violation discovered mid-operation,
//     e.g. a release id owned by more than one artist
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping and retry policy.
type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindValidation
	KindUnavailable
	KindInconsistency
)

// Error is a domain error with a stable code and HTTP status.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// Err holds the underlying cause for Unavailable/Inconsistency errors.
	// Never rendered to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNotFound
}

// IsConflict reports whether err is a Conflict domain error.
func IsConflict(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindConflict
}

// IsUnavailable reports whether err is an Unavailable domain error.
func IsUnavailable(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindUnavailable
}

// Entity not found errors.

func ArtistNotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "ArtistNotFound",
		Message: fmt.Sprintf("Artist with ID '%s' not found.", id),
	}
}

func GenreNotFound(genre string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "GenreNotFound",
		Message: fmt.Sprintf("No artists found for the genre '%s'.", genre),
	}
}

func ReleaseNotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "ReleaseNotFound",
		Message: fmt.Sprintf("Release with ID '%s' not found.", id),
	}
}

func UserNotFound(username string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "UserNotFound",
		Message: fmt.Sprintf("User with username '%s' not found.", username),
	}
}

func RatingNotFound(releaseID, username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "RatingNotFound",
		Message: fmt.Sprintf(
			"Rating of release with ID '%s' by user with username '%s' not found.",
			releaseID, username,
		),
	}
}

func FollowNotFound(artistID, username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "FollowNotFound",
		Message: fmt.Sprintf(
			"Follow of artist with ID '%s' by user with username '%s' not found.",
			artistID, username,
		),
	}
}

func FriendshipNotFound(username1, username2 string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "FriendshipNotFound",
		Message: fmt.Sprintf(
			"Friendship between user with username '%s' and user with username '%s' not found.",
			username1, username2,
		),
	}
}

// Recommendation not found errors.

func ArtistRecsByGenreNotFound(username, genre string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "ArtistRecsByGenreNotFound",
		Message: fmt.Sprintf(
			"No recommendations for the user with username '%s' in the genre '%s'.",
			username, genre,
		),
	}
}

func NoGenreDataFound(username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "NoGenreDataFound",
		Message: fmt.Sprintf(
			"No genre data found for the user with username '%s'.",
			username,
		),
	}
}

func FriendRecsNotFound(username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "FriendRecsNotFound",
		Message: fmt.Sprintf(
			"No friend recommendations for the user with username '%s'.",
			username,
		),
	}
}

func NoRatingsFound(username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "NoRatingsFound",
		Message: fmt.Sprintf(
			"No qualifying ratings found for the user with username '%s'.",
			username,
		),
	}
}

func NoFriendsRatingsFound(username string) *Error {
	return &Error{
		Kind: KindNotFound,
		Code: "NoFriendsRatingsFound",
		Message: fmt.Sprintf(
			"No ratings by friends of the user with username '%s' found.",
			username,
		),
	}
}

// Entity already exists errors.

func UserAlreadyExists(username string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "UserAlreadyExists",
		Message: fmt.Sprintf("A user with the username '%s' already exists.", username),
	}
}

func RatingAlreadyExists(username, releaseID string) *Error {
	return &Error{
		Kind: KindConflict,
		Code: "RatingAlreadyExists",
		Message: fmt.Sprintf(
			"The user with username '%s' already rated the release with ID '%s'.",
			username, releaseID,
		),
	}
}

func FollowAlreadyExists(username, artistID string) *Error {
	return &Error{
		Kind: KindConflict,
		Code: "FollowAlreadyExists",
		Message: fmt.Sprintf(
			"The user with username '%s' already follows the artist with ID '%s'.",
			username, artistID,
		),
	}
}

func FriendshipAlreadyExists(username1, username2 string) *Error {
	return &Error{
		Kind: KindConflict,
		Code: "FriendshipAlreadyExists",
		Message: fmt.Sprintf(
			"The user with username '%s' is already friends with the user with username '%s'.",
			username1, username2,
		),
	}
}

// Validation errors.

func PropertyNotProvided(property string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "PropertyNotProvided",
		Message: fmt.Sprintf("'%s' was not provided.", property),
	}
}

func MalformedBody() *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "MalformedBody",
		Message: "The request body is not valid JSON.",
	}
}

func NoValidFields() *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "NoValidFields",
		Message: "No valid fields to update or remove.",
	}
}

func InvalidRating(rating float64) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "InvalidRating",
		Message: fmt.Sprintf("Rating must be an integer between 0 and 10, got %v.", rating),
	}
}

func InvalidFriendship(username string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "InvalidFriendship",
		Message: fmt.Sprintf("The user with username '%s' cannot befriend themselves.", username),
	}
}

func NoQueryParameter(name string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "NoQueryParameter",
		Message: fmt.Sprintf("Query parameter '%s' is required.", name),
	}
}

func InvalidQueryParameter(name, value string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "InvalidQueryParameter",
		Message: fmt.Sprintf("'%s' is not a valid value for query parameter '%s'.", value, name),
	}
}

func InvalidRecMethod(method string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "InvalidRecMethod",
		Message: fmt.Sprintf("'%s' is not a valid recommendation method.", method),
	}
}

// Infrastructure errors.

// Unavailable wraps a store-level failure (connectivity, timeout). Write
// sagas surface it immediately; read paths may retry a bounded number of
// times before giving up.
func Unavailable(op string, err error) *Error {
	return &Error{
		Kind:    KindUnavailable,
		Code:    "StoreUnavailable",
		Message: "A backing store is temporarily unavailable.",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

// Inconsistency flags an invariant violation discovered mid-operation,
// e.g. a release id resolving to more than one artist.
func Inconsistency(detail string) *Error {
	return &Error{
		Kind:    KindInconsistency,
		Code:    "DataInconsistency",
		Message: "An internal data inconsistency was detected.",
		Err:     errors.New(detail),
	}
}
