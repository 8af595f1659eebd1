package validation

import (
	"errors"
	"strings"
)

// LoginForm is the sign in form
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// RegisterForm is the sign up form; both passwords must match
type RegisterForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,min=6,eqfield=Password"`
}

// Normalize trims whitespace around the email
func (f *LoginForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

// Normalize trims whitespace around the email
func (f *RegisterForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

// Messages returns the user-facing messages for err, or nil if err is not a validation error
func Messages(err error) []string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	return nil
}
