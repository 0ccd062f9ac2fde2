package template

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Service implements template management.
type Service struct {
	repo      Repository
	users     UserResolver
	validator Validator
	now       func() time.Time
}

// NewService creates a template service. users resolves owner references;
// validator checks syntax on create and update.
func NewService(repo Repository, users UserResolver, validator Validator) *Service {
	return &Service{repo: repo, users: users, validator: validator, now: time.Now}
}

// ResolveOwner maps an owner reference to the stored owner id: blank means
// the shared pool, anything else must name an enabled user.
func (s *Service) ResolveOwner(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if domain.IsSharedOwner(ref) {
		return domain.SharedOwner, nil
	}
	u, err := s.users.ResolveSender(ctx, ref)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// Create stores a template for owner. The name only has to be unique per
// owner; the same name may exist under another owner or in the shared pool.
func (s *Service) Create(ctx context.Context, owner, name, content string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}
	if domain.IsSharedOwner(owner) {
		owner = domain.SharedOwner
	}
	if err := s.validator.Parse(content); err != nil {
		return nil, err
	}

	_, err := s.repo.Find(ctx, owner, name)
	if err == nil {
		return nil, ErrExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	t := &domain.Template{
		OwnerID:   owner,
		Name:      name,
		Content:   content,
		Shared:    owner == domain.SharedOwner,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

// ListForOwner returns the owner's templates plus the shared ones.
func (s *Service) ListForOwner(ctx context.Context, owner string) ([]domain.Template, error) {
	if domain.IsSharedOwner(owner) {
		return s.repo.ListByOwners(ctx, domain.SharedOwner)
	}
	return s.repo.ListByOwners(ctx, owner, domain.SharedOwner)
}

// ListShared returns only the shared templates.
func (s *Service) ListShared(ctx context.Context) ([]domain.Template, error) {
	return s.repo.ListByOwners(ctx, domain.SharedOwner)
}

// ListOwned returns only the owner's own templates.
func (s *Service) ListOwned(ctx context.Context, owner string) ([]domain.Template, error) {
	return s.repo.ListByOwners(ctx, owner)
}

// Lookup returns the owner's template called name, falling back to the
// shared template of that name.
func (s *Service) Lookup(ctx context.Context, owner, name string) (*domain.Template, error) {
	if !domain.IsSharedOwner(owner) {
		t, err := s.repo.Find(ctx, owner, name)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return s.repo.Find(ctx, domain.SharedOwner, name)
}

// Update rewrites the content of every template called name, whoever owns
// it. Returns the number of templates changed.
func (s *Service) Update(ctx context.Context, name, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrContentRequired
	}
	if err := s.validator.Parse(content); err != nil {
		return 0, err
	}
	n, err := s.repo.UpdateContentByName(ctx, name, content)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	logger.Info("template: updated by name", "name", name, "matched", n)
	return n, nil
}

// Delete removes every template called name, whoever owns it.
func (s *Service) Delete(ctx context.Context, name string) (int64, error) {
	n, err := s.repo.DeleteByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	logger.Info("template: deleted by name", "name", name, "removed", n)
	return n, nil
}
