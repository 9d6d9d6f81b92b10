package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidUser is returned when a user fails ValidateUser
var ErrInvalidUser = errors.New("invalid user data")

// User represents a system user with authentication data
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // empty = unset
}

// NewUser creates a new user instance. Nothing is validated here.
func NewUser(name, email string) *User {
	return &User{
		Name:  name,
		Email: email,
	}
}

// SetPassword sets the user password. Stored as given.
func (u *User) SetPassword(password string) {
	u.Password = password
}

// GetDisplayName returns "name <email>"
func (u *User) GetDisplayName() string {
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

// IsValid checks if user data is valid
func (u *User) IsValid() bool {
	return ValidateUser(u)
}

// ValidateUser reports whether name and email are both non-empty.
// The email format is not checked.
func ValidateUser(u *User) bool {
	if u == nil {
		return false
	}
	return len(u.Email) > 0 && len(u.Name) > 0
}

// Check returns ErrInvalidUser wrapped with the user's display name when u is not valid
func Check(u *User) error {
	if ValidateUser(u) {
		return nil
	}
	if u == nil {
		return ErrInvalidUser
	}
	return fmt.Errorf("%w: %q", ErrInvalidUser, u.GetDisplayName())
}
