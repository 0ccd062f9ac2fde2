package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Service implements registration and login.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an identity service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Register creates an enabled admin account.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	u := &domain.User{
		Username:     username,
		PasswordHash: HashPassword(password),
		IsSuperuser:  true,
		IsEnabled:    true,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	logger.Info("identity: admin registered", "username", username)
	return u, nil
}

// Login authenticates an operator. Unknown users, wrong passwords and
// non-admin accounts all fail with ErrInvalidLogin.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(password, u.PasswordHash) || !u.IsSuperuser {
		return nil, ErrInvalidLogin
	}
	return &domain.Identity{UserID: u.ID, Username: u.Username}, nil
}
