package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrRemoteFetch indicates the bookmark list could not be read from remote storage
	ErrRemoteFetch = errors.New("failed to fetch bookmarks")

	// ErrRemoteSync indicates the bookmark list could not be written to remote storage
	ErrRemoteSync = errors.New("failed to sync bookmarks")

	// ErrNotLoaded indicates a bookmark write attempted before the list was read
	ErrNotLoaded = errors.New("bookmarks not loaded")

	// ErrNoSession indicates there is no signed-in user
	ErrNoSession = errors.New("no active session")

	// ErrNotFound indicates the requested record or title does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a record with the same identity already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrServiceOffline indicates a remote service is unreachable
	ErrServiceOffline = errors.New("remote service is unreachable")

	// ErrAuthFailed indicates credentials or tokens were rejected
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the remote service asked us to slow down
	ErrRateLimited = errors.New("too many requests")

	// ErrInvalidAction indicates an unknown proxy action
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidMediaType indicates a type other than movie or tv
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrNoTrailer indicates a movie has no trailer video
	ErrNoTrailer = errors.New("no trailer found")

	// ErrEmptyResults indicates a list endpoint returned no items where some were required
	ErrEmptyResults = errors.New("data array is empty")

	// ErrInvalidAvatar indicates an avatar that is not an image or is too large
	ErrInvalidAvatar = errors.New("invalid avatar")
)
