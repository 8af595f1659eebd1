package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/moviedb/internal/auth"
	"github.com/mmcdole/moviedb/internal/breaker"
	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/functions"
	"github.com/mmcdole/moviedb/internal/store"
	"github.com/mmcdole/moviedb/internal/supabase"
	"github.com/mmcdole/moviedb/internal/tmdb"
)

const seedTimeout = 15 * time.Second

// services is everything a command can need, built for the configured backend
type services struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	Auth      domain.Authenticator
	Bookmarks domain.BookmarkStore
	Content   domain.ContentSource
	Avatars   domain.AvatarStore
	Metadata  domain.MetadataSource
}

// newServices wires the backend selected by cfg.Backend
func newServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		// Another process holds the file; run without the cache
		logger.Warn("local store unavailable, using memory", "path", cfg.Store.Path, "error", err)
		st, _ = store.Open("")
	}

	session := auth.FromConfig(cfg)
	s := &services{cfg: cfg, logger: logger, store: st}

	switch cfg.Backend {
	case config.BackendSupabase:
		sb := supabase.NewClient(supabaseOptions(cfg, false), session, logger)
		s.Auth, s.Bookmarks, s.Content, s.Avatars = sb, sb, sb, sb
		s.Metadata = newMetadata(cfg, st, logger)

	case config.BackendFunctions:
		// Sign in still goes to Supabase; its tokens authorize proxy calls
		sb := supabase.NewClient(supabaseOptions(cfg, false), session, logger)
		proxy := functions.NewClient(cfg.Functions.URL, sb, logger)
		s.Auth = sb
		s.Bookmarks, s.Content, s.Avatars, s.Metadata = proxy, proxy, proxy, proxy

	case config.BackendLocal:
		s.Auth = auth.NewLocalAuthenticator(st, session, logger)
		s.Bookmarks, s.Content, s.Avatars = st, st, st
		s.Metadata = newMetadata(cfg, st, logger)

	default:
		st.Close()
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return s, nil
}

// newServerServices wires the proxy's own backend. Supabase is reached with
// the service key so the proxy can read any user's row.
func newServerServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Warn("local store unavailable, using memory", "path", cfg.Store.Path, "error", err)
		st, _ = store.Open("")
	}
	s := &services{cfg: cfg, logger: logger, store: st, Metadata: newMetadata(cfg, st, logger)}

	switch cfg.Backend {
	case config.BackendSupabase:
		sb := supabase.NewClient(supabaseOptions(cfg, true), nil, logger)
		s.Auth, s.Bookmarks, s.Content, s.Avatars = sb, sb, sb, sb
	case config.BackendLocal:
		s.Auth = auth.NewLocalAuthenticator(st, nil, logger)
		s.Bookmarks, s.Content, s.Avatars = st, st, st
	default:
		st.Close()
		return nil, fmt.Errorf("serve needs backend %q or %q, not %q",
			config.BackendSupabase, config.BackendLocal, cfg.Backend)
	}
	return s, nil
}

func supabaseOptions(cfg *config.Config, server bool) supabase.Options {
	opts := supabase.Options{
		URL:            cfg.Supabase.URL,
		AnonKey:        cfg.Supabase.AnonKey,
		BookmarksTable: cfg.Supabase.BookmarksTable,
		ContentTable:   cfg.Supabase.ContentTable,
		AvatarBucket:   cfg.Supabase.AvatarBucket,
	}
	if server {
		opts.ServiceKey = cfg.Supabase.ServiceKey
	}
	return opts
}

// newMetadata builds the TMDB client behind a circuit breaker, caching responses in st
func newMetadata(cfg *config.Config, st *store.Store, logger *slog.Logger) *tmdb.GuardedSource {
	client := tmdb.NewClient(tmdb.Options{
		BaseURL:           cfg.TMDB.BaseURL,
		Token:             cfg.TMDB.Token,
		Language:          cfg.TMDB.Language,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Cache:             st,
		CacheTTL:          cfg.TMDB.CacheTTL,
	}, logger)
	return tmdb.NewGuardedSource(client, breaker.DefaultSettings(), logger)
}

// seedLocalContent fills an empty local content row: genres from TMDB and a
// media pool from the trending list
func (s *services) seedLocalContent(ctx context.Context) error {
	if s.cfg.Backend != config.BackendLocal || s.cfg.TMDB.Token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	genres, err := s.store.Genres(ctx)
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		client := tmdb.NewClient(tmdb.Options{
			BaseURL:  s.cfg.TMDB.BaseURL,
			Token:    s.cfg.TMDB.Token,
			Language: s.cfg.TMDB.Language,
		}, s.logger)
		genres, err := client.Genres(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch genres: %w", err)
		}
		if err := s.store.SaveGenres(genres); err != nil {
			return err
		}
		s.logger.Info("seeded genres", "count", len(genres))
	}

	pool, err := s.store.MediaPool()
	if err != nil {
		return err
	}
	if len(pool) > 0 {
		return nil
	}
	trending, err := s.Metadata.Trending(ctx)
	if err != nil && !errors.Is(err, domain.ErrEmptyResults) {
		return fmt.Errorf("failed to fetch media pool: %w", err)
	}
	pool = make([]domain.MediaRef, 0, len(trending))
	for _, m := range trending {
		pool = append(pool, domain.MediaRef{ID: m.ID, Type: m.Type})
	}
	if err := s.store.SaveMediaPool(pool); err != nil {
		return err
	}
	s.logger.Info("seeded media pool", "count", len(pool))
	return nil
}

// currentUser returns the signed-in user or an error telling how to sign in
func (s *services) currentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: run `moviedb login` first", domain.ErrNoSession)
	}
	return user, nil
}

func (s *services) Close() {
	if s.store != nil {
		s.store.Close()
	}
}
