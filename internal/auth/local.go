// Package auth signs users in against the local backend and tracks the
// current session for every backend.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/store"
	"github.com/mmcdole/moviedb/internal/validation"
)

// localSessionTTL is reported as ExpiresIn for local sessions
const localSessionTTL = 7 * 24 * time.Hour

// LocalAuthenticator implements domain.Authenticator over accounts kept in the local store
type LocalAuthenticator struct {
	*SessionState

	store  *store.Store
	cost   int
	logger *slog.Logger
}

// NewLocalAuthenticator creates an authenticator seeded with a stored session (nil for none)
func NewLocalAuthenticator(s *store.Store, session *domain.Session, logger *slog.Logger) *LocalAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalAuthenticator{
		SessionState: NewSessionState(session),
		store:        s,
		cost:         bcrypt.DefaultCost,
		logger:       logger,
	}
}

// SignIn checks the password and starts a session
func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	form := validation.LoginForm{Email: email, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(form); err != nil {
		return nil, err
	}

	acct, err := a.store.AccountByEmail(ctx, form.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: Invalid login credentials.", domain.ErrAuthFailed)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(form.Password)); err != nil {
		a.logger.Info("local sign in rejected", "email", form.Email)
		return nil, fmt.Errorf("%w: Invalid login credentials.", domain.ErrAuthFailed)
	}

	session := &domain.Session{
		AccessToken: uuid.NewString(),
		ExpiresIn:   int(localSessionTTL.Seconds()),
		User:        *acct.User(),
	}
	a.Set(session)
	a.logger.Info("signed in", "user", acct.ID)

	out := *session
	return &out, nil
}

// SignUp creates the account and its empty bookmark row. It does not sign in.
func (a *LocalAuthenticator) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	form := validation.LoginForm{Email: email, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := store.Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(form.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	if err := a.store.CreateRecord(ctx, acct.ID); err != nil {
		return nil, err
	}

	a.logger.Info("account created", "user", acct.ID)
	return acct.User(), nil
}

// SignOut clears the current session
func (a *LocalAuthenticator) SignOut(context.Context) error {
	a.Set(nil)
	return nil
}

// UpdateProfile edits the signed-in account. The session keeps its token.
func (a *LocalAuthenticator) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Session, error) {
	session, signedIn := a.Session()
	if !signedIn || session.User.ID == "" {
		return nil, domain.ErrNoSession
	}
	form := validation.ProfileForm{
		UserID:   session.User.ID,
		Email:    update.Email,
		Name:     update.Name,
		Password: update.Password,
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	acct, err := a.store.AccountByID(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	acct.Email = strings.ToLower(form.Email)
	acct.Name = form.Name
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), a.cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		acct.PasswordHash = hash
	}
	if err := a.store.UpdateAccount(ctx, *acct); err != nil {
		return nil, err
	}

	session.User = *acct.User()
	a.Set(&session)
	a.logger.Info("profile updated", "user", acct.ID)

	out := session
	return &out, nil
}
