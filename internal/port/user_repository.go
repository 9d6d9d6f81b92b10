package port

import (
	"context"
	"errors"

	"github.com/aegis/userkit/internal/domain"
)

var (
	// ErrNotFound is returned when a requested user doesn't exist
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when creating a user with a taken ID
	ErrAlreadyExists = errors.New("user already exists")
)

// UserRepository persists and retrieves users. Implementations store
// records as given and never validate them.
type UserRepository interface {
	// Create stores user. ID 0 is replaced by the next free ID.
	Create(ctx context.Context, user *domain.User) error

	// Get returns user by ID, ErrNotFound if missing
	Get(ctx context.Context, id int) (*domain.User, error)

	// List returns all users ordered by ID
	List(ctx context.Context) ([]domain.User, error)

	// SetPassword replaces the stored password verbatim
	SetPassword(ctx context.Context, id int, password string) error

	// Delete removes user, ErrNotFound if missing
	Delete(ctx context.Context, id int) error

	Close() error
}
