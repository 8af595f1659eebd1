package store

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/mmcdole/moviedb/internal/domain"
)

const (
	keyGenres    = "genres"
	keyMediaPool = "media_pool"
)

// Genres returns the stored genre list
func (s *Store) Genres(ctx context.Context) ([]domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var genres []domain.Genre
	ok, err := s.get(bucketContent, keyGenres, &genres)
	if err != nil {
		return nil, fmt.Errorf("failed to read genres: %w", err)
	}
	if !ok {
		return []domain.Genre{}, nil
	}
	return genres, nil
}

// SaveGenres replaces the genre list
func (s *Store) SaveGenres(genres []domain.Genre) error {
	return s.set(bucketContent, keyGenres, genres)
}

// RandomMedia picks one entry of the media pool uniformly at random
func (s *Store) RandomMedia(ctx context.Context) (domain.MediaRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.MediaRef{}, err
	}
	pool, err := s.MediaPool()
	if err != nil {
		return domain.MediaRef{}, err
	}
	if len(pool) == 0 {
		return domain.MediaRef{}, fmt.Errorf("media pool is empty: %w", domain.ErrNotFound)
	}
	return pool[rand.IntN(len(pool))], nil
}

// MediaPool returns every title RandomMedia can pick from
func (s *Store) MediaPool() ([]domain.MediaRef, error) {
	var pool []domain.MediaRef
	if _, err := s.get(bucketContent, keyMediaPool, &pool); err != nil {
		return nil, fmt.Errorf("failed to read media pool: %w", err)
	}
	return pool, nil
}

// SaveMediaPool replaces the media pool
func (s *Store) SaveMediaPool(pool []domain.MediaRef) error {
	return s.set(bucketContent, keyMediaPool, pool)
}
