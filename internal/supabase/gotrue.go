package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/validation"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u userDTO) toDomain() domain.User {
	user := domain.User{ID: u.ID, Email: u.Email}
	for _, key := range []string{"name", "display_name"} {
		if name, ok := u.UserMetadata[key].(string); ok && name != "" {
			user.DisplayName = name
			break
		}
	}
	return user
}

// userUpdate is the body of PUT /auth/v1/user; the name lives in user metadata
type userUpdate struct {
	Email    string         `json:"email"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data"`
}

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int     `json:"expires_in"`
	User         userDTO `json:"user"`
}

// signUpResponse is either a bare user (email confirmation pending) or a session
type signUpResponse struct {
	userDTO
	User *userDTO `json:"user"`
}

// signInMessages are the user-facing messages per sign in status
var signInMessages = map[int]string{
	http.StatusBadRequest:      "Invalid login credentials.",
	http.StatusUnauthorized:    "Unauthorized access. Please check your credentials.",
	http.StatusTooManyRequests: "Too many login attempts. Please try again later.",
}

// SignIn exchanges email and password for a session and makes it current
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	form := validation.LoginForm{Email: email, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(form); err != nil {
		return nil, err
	}

	body, err := json.Marshal(credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("grant_type", "password")

	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/token", query: q, body: body})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, signInError(resp)
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	session := &domain.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		User:         tok.User.toDomain(),
	}
	c.Set(session)
	c.logger.Info("signed in", "user", session.User.ID)

	out := *session
	return &out, nil
}

func signInError(resp *response) error {
	if msg, ok := signInMessages[resp.status]; ok {
		if resp.status == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
		}
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
	}
	return fmt.Errorf("unexpected error occurred: %s", errorText(resp))
}

// SignUp registers a new account and provisions its bookmark row
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	form := validation.LoginForm{Email: email, Password: password}
	form.Normalize()
	if err := validation.ValidateStruct(form); err != nil {
		return nil, err
	}

	body, err := json.Marshal(credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/signup", body: body})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}

	var out signUpResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse sign up response: %w", err)
	}
	dto := out.userDTO
	if out.User != nil {
		dto = *out.User
	}
	if dto.ID == "" {
		return nil, fmt.Errorf("sign up response has no user id")
	}

	if err := c.CreateRecord(ctx, dto.ID); err != nil {
		return nil, err
	}
	user := dto.toDomain()
	return &user, nil
}

// SignOut revokes the session server side and forgets it locally
func (c *Client) SignOut(ctx context.Context) error {
	defer c.Set(nil)
	if c.AccessToken() == "" {
		return nil
	}
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout"})
	if err != nil {
		return err
	}
	// an expired token is already signed out
	if !ok(resp.status) && resp.status != http.StatusUnauthorized {
		return statusError(resp)
	}
	return nil
}

// FetchUser asks the auth server who the current token belongs to
func (c *Client) FetchUser(ctx context.Context) (*domain.User, error) {
	if c.AccessToken() == "" {
		return nil, domain.ErrNoSession
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user"})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}
	var u userDTO
	if err := json.Unmarshal(resp.body, &u); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	user := u.toDomain()
	user.Email = strings.ToLower(user.Email)
	return &user, nil
}

// UpdateProfile changes the signed-in user's email and name, and the password when one is given
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Session, error) {
	session, signedIn := c.Session()
	if !signedIn || session.AccessToken == "" {
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

	body, err := json.Marshal(userUpdate{
		Email:    form.Email,
		Password: form.Password,
		Data:     map[string]any{"name": form.Name},
	})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, request{method: http.MethodPut, path: "/auth/v1/user", body: body})
	if err != nil {
		return nil, err
	}
	if !ok(resp.status) {
		return nil, statusError(resp)
	}

	var u userDTO
	if err := json.Unmarshal(resp.body, &u); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	session.User = u.toDomain()
	c.Set(&session)
	c.logger.Info("profile updated", "user", session.User.ID)

	out := session
	return &out, nil
}
