package store

import (
	"context"
	"fmt"

	"github.com/mmcdole/moviedb/internal/domain"
)

// ReadBookmarks returns the user's bookmark list; a user with no row gets an empty list
func (s *Store) ReadBookmarks(ctx context.Context, userID string) ([]domain.BookmarkRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []domain.BookmarkRecord
	ok, err := s.get(bucketBookmarks, userID, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	if !ok || records == nil {
		return []domain.BookmarkRecord{}, nil
	}
	return records, nil
}

// ReplaceBookmarks overwrites the user's bookmark list
func (s *Store) ReplaceBookmarks(ctx context.Context, userID string, records []domain.BookmarkRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.BookmarkRecord{}
	}
	if err := s.set(bucketBookmarks, userID, records); err != nil {
		return fmt.Errorf("failed to write bookmarks: %w", err)
	}
	return nil
}

// CreateRecord provisions an empty bookmark list. An existing list is left alone.
func (s *Store) CreateRecord(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.setIfAbsent(bucketBookmarks, userID, []domain.BookmarkRecord{}); err != nil {
		return fmt.Errorf("failed to create bookmark record: %w", err)
	}
	return nil
}
