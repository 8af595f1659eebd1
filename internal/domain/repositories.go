package domain

import (
	"context"
)

// BookmarkStore persists a user's ordered bookmark list.
// Writes always replace the whole list.
type BookmarkStore interface {
	// ReadBookmarks returns the stored list (empty, not an error, for a new user)
	ReadBookmarks(ctx context.Context, userID string) ([]BookmarkRecord, error)

	// ReplaceBookmarks overwrites the stored list with records
	ReplaceBookmarks(ctx context.Context, userID string, records []BookmarkRecord) error
}

// UserProvider resolves the signed-in user.
// It returns (nil, nil) when there is no session.
type UserProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Authenticator signs users in and out of the backend
type Authenticator interface {
	UserProvider
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error

	// UpdateProfile edits the signed-in user and returns the refreshed session
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*Session, error)
}

// ContentSource provides the shared content row (genre list and random media pool)
type ContentSource interface {
	Genres(ctx context.Context) ([]Genre, error)
	RandomMedia(ctx context.Context) (MediaRef, error)

	// CreateRecord provisions the empty bookmark row for a new user
	CreateRecord(ctx context.Context, userID string) error
}

// AvatarStore stores one profile image per user
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userID string, avatar Avatar) error
	DownloadAvatar(ctx context.Context, userID string) (*Avatar, error)
}

// MetadataSource provides movie and TV metadata (TMDB or the proxy in front of it)
type MetadataSource interface {
	Upcoming(ctx context.Context) ([]Media, error)
	TrailerKey(ctx context.Context, movieID int) (string, error)
	Trending(ctx context.Context) ([]Media, error)
	Recommendations(ctx context.Context, movieID, seriesID int) (*Recommendations, error)
	TopRated(ctx context.Context, t MediaType, page int) ([]Media, error)
	Search(ctx context.Context, query string) ([]Media, error)
	Details(ctx context.Context, t MediaType, id int) (*MediaDetails, error)
}
