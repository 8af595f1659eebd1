package validation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// TestAccountID is the shared demo account, whose profile stays fixed
const TestAccountID = "3cc0964a-a9a8-4c6f-bb2c-cd378291a0c5"

// ErrTestAccount is returned when the demo account tries to edit its profile
var ErrTestAccount = errors.New("Profile editing is disabled for test account. Sign up for a regular account to access all features.")

// ProfileForm is the profile edit form. An empty password keeps the current one.
type ProfileForm struct {
	UserID   string `validate:"-"`
	Email    string `validate:"required,email"`
	Name     string `validate:"max=15"`
	Password string `validate:"omitempty,min=6"`
}

// Normalize trims the email and name, and picks a random name when none is given
func (f *ProfileForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		f.Name = RandomName()
	}
}

// Validate rejects the demo account before checking the fields
func (f *ProfileForm) Validate() error {
	if f.UserID == TestAccountID {
		return ErrTestAccount
	}
	return ValidateStruct(f)
}

var (
	nameAdjectives = []string{"Quiet", "Brave", "Lucky", "Mellow", "Rapid", "Sunny", "Witty", "Cosmic", "Silver", "Noble"}
	nameNouns      = []string{"Otter", "Falcon", "Panda", "Comet", "Badger", "Raven", "Tiger", "Lynx", "Heron", "Fox"}
)

// RandomName returns a display name such as "SunnyOtter42". It always fits the name limit.
func RandomName() string {
	adj := nameAdjectives[rand.IntN(len(nameAdjectives))]
	noun := nameNouns[rand.IntN(len(nameNouns))]
	return fmt.Sprintf("%s%s%02d", adj, noun, rand.IntN(100))
}
