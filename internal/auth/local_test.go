package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmcdole/moviedb/internal/config"
	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/logging"
	"github.com/mmcdole/moviedb/internal/store"
	"github.com/mmcdole/moviedb/internal/validation"
)

func newTestAuth(t *testing.T) (*LocalAuthenticator, *store.Store) {
	t.Helper()
	s, err := store.Open("")
	if err != nil {
		t.Fatal(err)
	}
	a := NewLocalAuthenticator(s, nil, logging.NullLogger())
	a.cost = bcrypt.MinCost
	return a, s
}

func TestSignUpSignIn(t *testing.T) {
	ctx := context.Background()
	a, s := newTestAuth(t)

	user, err := a.SignUp(ctx, " Viewer@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if user.ID == "" || user.Email != "viewer@example.com" {
		t.Errorf("SignUp() = %+v", user)
	}

	// sign up provisions the empty bookmark row but does not sign in
	list, err := s.ReadBookmarks(ctx, user.ID)
	if err != nil || len(list) != 0 {
		t.Errorf("ReadBookmarks() = %v, %v; want empty list", list, err)
	}
	if u, _ := a.CurrentUser(ctx); u != nil {
		t.Errorf("CurrentUser() after SignUp = %+v, want nil", u)
	}

	session, err := a.SignIn(ctx, "viewer@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if session.AccessToken == "" || session.User.ID != user.ID {
		t.Errorf("SignIn() = %+v", session)
	}

	current, err := a.CurrentUser(ctx)
	if err != nil || current == nil || current.ID != user.ID {
		t.Errorf("CurrentUser() = %+v, %v", current, err)
	}

	if err := a.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if u, _ := a.CurrentUser(ctx); u != nil {
		t.Errorf("CurrentUser() after SignOut = %+v", u)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	if _, err := a.SignUp(ctx, "viewer@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := a.SignIn(ctx, "viewer@example.com", "wrong-password"); !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("wrong password error = %v, want ErrAuthFailed", err)
	}
	if _, err := a.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("unknown email error = %v, want ErrAuthFailed", err)
	}

	_, err := a.SignIn(ctx, "not-an-email", "123")
	msgs := validation.Messages(err)
	if len(msgs) != 2 {
		t.Errorf("validation messages = %v, want 2", msgs)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	if _, err := a.SignUp(ctx, "viewer@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SignUp(ctx, "VIEWER@example.com", "secret2"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate SignUp() error = %v, want ErrAlreadyExists", err)
	}
}

func TestSessionConfigRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSupabase
	if FromConfig(cfg) != nil {
		t.Fatal("FromConfig() on empty config should be nil")
	}

	cfg.Session = ToConfig(&domain.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         domain.User{ID: "u1", Email: "a@b.co", DisplayName: "Viewer"},
	})
	got := FromConfig(cfg)
	if got == nil || got.AccessToken != "access" || got.User.ID != "u1" || got.User.Email != "a@b.co" || got.User.DisplayName != "Viewer" {
		t.Errorf("FromConfig() = %+v", got)
	}

	state := NewSessionState(got)
	if state.AccessToken() != "access" {
		t.Errorf("AccessToken() = %q", state.AccessToken())
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	a, s := newTestAuth(t)
	if _, err := a.SignUp(ctx, "viewer@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SignUp(ctx, "taken@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := a.UpdateProfile(ctx, domain.ProfileUpdate{Email: "viewer@example.com"}); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("UpdateProfile() signed out error = %v, want ErrNoSession", err)
	}

	session, err := a.SignIn(ctx, "viewer@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := a.UpdateProfile(ctx, domain.ProfileUpdate{Email: "New@Example.com", Name: "Viewer"})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.AccessToken != session.AccessToken {
		t.Errorf("AccessToken = %q, want unchanged %q", updated.AccessToken, session.AccessToken)
	}
	if updated.User.Email != "new@example.com" || updated.User.DisplayName != "Viewer" {
		t.Errorf("UpdateProfile() user = %+v", updated.User)
	}
	if u, _ := a.CurrentUser(ctx); u == nil || u.DisplayName != "Viewer" {
		t.Errorf("CurrentUser() = %+v", u)
	}

	// the old email is released and an empty password keeps the old one
	if _, err := s.AccountByEmail(ctx, "viewer@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AccountByEmail(old) error = %v, want ErrNotFound", err)
	}
	if _, err := a.SignIn(ctx, "new@example.com", "secret1"); err != nil {
		t.Errorf("SignIn() with kept password error = %v", err)
	}

	if _, err := a.UpdateProfile(ctx, domain.ProfileUpdate{Email: "taken@example.com", Name: "Viewer"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("UpdateProfile() to a taken email error = %v, want ErrAlreadyExists", err)
	}

	if _, err := a.UpdateProfile(ctx, domain.ProfileUpdate{Email: "new@example.com", Password: "changed1"}); err != nil {
		t.Fatalf("UpdateProfile() password error = %v", err)
	}
	if _, err := a.SignIn(ctx, "new@example.com", "secret1"); !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("SignIn() with old password error = %v, want ErrAuthFailed", err)
	}
	current, err := a.SignIn(ctx, "new@example.com", "changed1")
	if err != nil {
		t.Fatalf("SignIn() with new password error = %v", err)
	}
	if current.User.DisplayName == "" {
		t.Error("empty name should be replaced with a random one")
	}
}

func TestUpdateProfileTestAccountLocked(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuth(t)
	a.Set(&domain.Session{AccessToken: "t", User: domain.User{ID: validation.TestAccountID, Email: "demo@example.com"}})

	_, err := a.UpdateProfile(ctx, domain.ProfileUpdate{Email: "demo@example.com", Name: "Demo"})
	if !errors.Is(err, validation.ErrTestAccount) {
		t.Errorf("UpdateProfile() error = %v, want ErrTestAccount", err)
	}
}
