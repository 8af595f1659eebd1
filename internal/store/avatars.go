package store

import (
	"context"
	"fmt"

	"github.com/mmcdole/moviedb/internal/domain"
)

type avatarEntry struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// UploadAvatar stores (or replaces) the user's avatar
func (s *Store) UploadAvatar(ctx context.Context, userID string, avatar domain.Avatar) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := avatarEntry{MimeType: avatar.MimeType, Data: avatar.Data}
	if err := s.set(bucketAvatars, userID, entry); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

// DownloadAvatar returns the user's avatar or domain.ErrNotFound
func (s *Store) DownloadAvatar(ctx context.Context, userID string) (*domain.Avatar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entry avatarEntry
	ok, err := s.get(bucketAvatars, userID, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Avatar{Data: entry.Data, MimeType: entry.MimeType}, nil
}
