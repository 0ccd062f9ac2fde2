package user

import (
	"context"

	"github.com/ignite/massmail/internal/domain"
)

// Repository defines the data access contract for the users collection.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns ErrNotFound when the id matches nothing and ErrMalformedID
	// when the id is not in the store's id format.
	Get(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns accounts matching the filter, oldest first.
	List(ctx context.Context, f ListFilter) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) (string, error)
	// Update applies the non-nil fields. Returns ErrNotFound when nothing matched.
	Update(ctx context.Context, id string, u UpdateFields) error
	// Delete returns ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows a listing. Nil fields do not filter.
type ListFilter struct {
	Superuser *bool
	Enabled   *bool
}

// UpdateFields holds the mutable fields for an account update.
// Nil fields are not applied.
type UpdateFields struct {
	Username     *string
	PasswordHash *string
	IsEnabled    *bool
	IsSuperuser  *bool
}
