package auth

import (
	"context"
	"sync"

	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/domain"
)

// SessionState holds the signed-in user in memory. Authenticators embed it
// to satisfy domain.UserProvider.
type SessionState struct {
	mu      sync.RWMutex
	session *domain.Session
}

// NewSessionState seeds the state from a stored session (nil for none)
func NewSessionState(s *domain.Session) *SessionState {
	return &SessionState{session: s}
}

// CurrentUser returns the signed-in user, or nil when signed out
func (s *SessionState) CurrentUser(ctx context.Context) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.User.ID == "" {
		return nil, nil
	}
	u := s.session.User
	return &u, nil
}

// Session returns a copy of the current session
func (s *SessionState) Session() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

// AccessToken returns the bearer token of the current session
func (s *SessionState) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// Set replaces the current session; nil signs out
func (s *SessionState) Set(session *domain.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

// FromConfig converts the stored session, returning nil if nobody is signed in
func FromConfig(cfg *config.Config) *domain.Session {
	if !cfg.HasSession() {
		return nil
	}
	return &domain.Session{
		AccessToken:  cfg.Session.AccessToken,
		RefreshToken: cfg.Session.RefreshToken,
		User: domain.User{
			ID:          cfg.Session.UserID,
			Email:       cfg.Session.Email,
			DisplayName: cfg.Session.Name,
		},
	}
}

// ToConfig converts a session into its stored form
func ToConfig(s *domain.Session) config.SessionConfig {
	if s == nil {
		return config.SessionConfig{}
	}
	return config.SessionConfig{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID,
		Email:        s.User.Email,
		Name:         s.User.DisplayName,
	}
}
