package template

import (
	"context"

	"github.com/ignite/massmail/internal/domain"
)

// Repository defines the data access contract for templates.
// Implementations must be safe for concurrent use.
type Repository interface {
	Create(ctx context.Context, t *domain.Template) (string, error)
	// Find returns the template with this owner and name, or ErrNotFound.
	Find(ctx context.Context, owner, name string) (*domain.Template, error)
	// ListByOwners returns templates owned by any of owners, newest first.
	ListByOwners(ctx context.Context, owners ...string) ([]domain.Template, error)
	// UpdateContentByName rewrites every template with this name and
	// returns how many matched.
	UpdateContentByName(ctx context.Context, name, content string) (int64, error)
	// DeleteByName removes every template with this name and returns how
	// many were removed.
	DeleteByName(ctx context.Context, name string) (int64, error)
}

// UserResolver finds accounts by id or username.
type UserResolver interface {
	ResolveSender(ctx context.Context, ref string) (*domain.User, error)
}

// Validator checks template syntax.
type Validator interface {
	Parse(content string) error
}
