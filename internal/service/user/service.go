package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/ignite/massmail/internal/service/identity"
)

// Service implements account administration.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a user service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput holds the fields for creating a sender account.
type CreateInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Enabled  bool   `json:"is_enabled"`
}

// UpdateInput holds an admin edit. An empty password leaves the stored
// credential untouched.
type UpdateInput struct {
	Username    *string `json:"username"`
	Password    string  `json:"password"`
	Enabled     *bool   `json:"is_enabled"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

// ListAdmins returns every superuser.
func (s *Service) ListAdmins(ctx context.Context) ([]domain.User, error) {
	yes := true
	return s.repo.List(ctx, ListFilter{Superuser: &yes})
}

// ListEnabled returns enabled accounts that are not superusers: the senders.
func (s *Service) ListEnabled(ctx context.Context) ([]domain.User, error) {
	yes, no := true, false
	return s.repo.List(ctx, ListFilter{Superuser: &no, Enabled: &yes})
}

// ListAll returns every account.
func (s *Service) ListAll(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx, ListFilter{})
}

// Create adds a non-admin account.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	u := &domain.User{
		Username:     username,
		PasswordHash: identity.HashPassword(in.Password),
		IsEnabled:    in.Enabled,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	logger.Info("user: created", "username", username, "enabled", in.Enabled)
	return u, nil
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	var f UpdateFields
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return ErrUsernameRequired
		}
		f.Username = &name
	}
	if in.Password != "" {
		h := identity.HashPassword(in.Password)
		f.PasswordHash = &h
	}
	f.IsEnabled = in.Enabled
	f.IsSuperuser = in.IsSuperuser
	return s.repo.Update(ctx, id, f)
}

// Delete removes an account. Templates, schedules and counters owned by it
// are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("user: deleted", "id", id)
	return nil
}

// Resolve finds an account by id first and by username second.
func (s *Service) Resolve(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	u, err := s.repo.Get(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalid) {
		return nil, err
	}
	return s.repo.FindByUsername(ctx, ref)
}

// ResolveSender resolves ref and requires the account to be enabled.
func (s *Service) ResolveSender(ctx context.Context, ref string) (*domain.User, error) {
	u, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !u.CanSend() {
		return nil, ErrSenderDisabled
	}
	return u, nil
}
