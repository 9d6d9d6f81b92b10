package account

import (
	"context"
	"fmt"

	"github.com/aegis/userkit/internal/app"
	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
)

// Service registers and checks users against a repository
type Service struct {
	repo  port.UserRepository
	state *app.State
}

// NewService requires an initialized state
func NewService(repo port.UserRepository, state *app.State) *Service {
	return &Service{repo: repo, state: state}
}

// Register stores a new user. The user is not validated.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if !s.state.Initialized() {
		return nil, app.ErrNotInitialized
	}
	user := domain.NewUser(name, email)
	if password != "" {
		user.SetPassword(password)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	if _, err := s.state.Next(); err != nil {
		return nil, err
	}
	return user, nil
}

// Check returns the display name of a valid user, or an error wrapping domain.ErrInvalidUser
func (s *Service) Check(ctx context.Context, id int) (string, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := domain.Check(user); err != nil {
		return "", err
	}
	return user.GetDisplayName(), nil
}

func (s *Service) ChangePassword(ctx context.Context, id int, password string) error {
	return s.repo.SetPassword(ctx, id, password)
}

// Registered is the number of users registered by this process
func (s *Service) Registered() int {
	return s.state.Count()
}
