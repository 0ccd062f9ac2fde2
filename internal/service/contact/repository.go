package contact

import (
	"context"
	"time"

	"github.com/ignite/massmail/internal/domain"
)

// Repository defines the data access contract for contacts.
// Implementations must be safe for concurrent use.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.Contact, error)
	FindByUsername(ctx context.Context, username string) (*domain.Contact, error)
	// List returns every contact, most recently added first.
	List(ctx context.Context) ([]domain.Contact, error)
	Create(ctx context.Context, c *domain.Contact) (string, error)
	// Update sets the username and added_at. Returns ErrNotFound when nothing matched.
	Update(ctx context.Context, id, username string, addedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
