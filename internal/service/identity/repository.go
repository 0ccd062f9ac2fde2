package identity

import (
	"context"

	"github.com/ignite/massmail/internal/domain"
)

// Repository is the slice of the users collection identity needs.
type Repository interface {
	// FindByUsername returns an error wrapping domain.ErrNotFound when no
	// account has that exact username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (string, error)
}
