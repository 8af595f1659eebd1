package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/moviedb/internal/domain"
)

// Account is a user of the local backend
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash []byte    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User returns the public part of the account
func (a Account) User() *domain.User {
	return &domain.User{ID: a.ID, Email: a.Email, DisplayName: a.Name}
}

func emailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount stores a new account. The email must not be taken.
func (s *Store) CreateAccount(ctx context.Context, acct Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wrote, err := s.setIfAbsent(bucketUsers, emailKey(acct.Email), acct.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if !wrote {
		return fmt.Errorf("account %s: %w", acct.Email, domain.ErrAlreadyExists)
	}
	if err := s.set(bucketUsers, "id:"+acct.ID, acct); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// AccountByID returns the account or domain.ErrNotFound
func (s *Store) AccountByID(ctx context.Context, id string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var acct Account
	ok, err := s.get(bucketUsers, "id:"+id, &acct)
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &acct, nil
}

// AccountByEmail returns the account or domain.ErrNotFound
func (s *Store) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	var id string
	ok, err := s.get(bucketUsers, emailKey(email), &id)
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.AccountByID(ctx, id)
}

// UpdateAccount overwrites an existing account. A changed email must not be taken.
func (s *Store) UpdateAccount(ctx context.Context, acct Account) error {
	prev, err := s.AccountByID(ctx, acct.ID)
	if err != nil {
		return err
	}
	moved := emailKey(prev.Email) != emailKey(acct.Email)
	if moved {
		wrote, err := s.setIfAbsent(bucketUsers, emailKey(acct.Email), acct.ID)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		if !wrote {
			return fmt.Errorf("account %s: %w", acct.Email, domain.ErrAlreadyExists)
		}
	}
	if err := s.set(bucketUsers, "id:"+acct.ID, acct); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if moved {
		if err := s.delete(bucketUsers, emailKey(prev.Email)); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
	}
	return nil
}
