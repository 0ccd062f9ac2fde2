package schedule

import (
	"context"
	"time"

	"github.com/ignite/massmail/internal/domain"
)

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Status    *domain.ScheduledStatus
	DueBefore *time.Time
}

// Transition describes a conditional status change.
type Transition struct {
	From      domain.ScheduledStatus
	To        domain.ScheduledStatus
	LastError string
	SentAt    *time.Time
}

// Lease is a time-bounded claim on a Pending record. A lease whose Until
// has passed at Now may be taken over by another owner.
type Lease struct {
	Owner string
	Now   time.Time
	Until time.Time
}

// Repository is the scheduled_emails collection.
type Repository interface {
	Create(ctx context.Context, e *domain.ScheduledEmail) error
	Get(ctx context.Context, id string) (*domain.ScheduledEmail, error)
	// List returns records ordered by fire time.
	List(ctx context.Context, f ListFilter) ([]domain.ScheduledEmail, error)
	// Transition moves id from t.From to t.To, setting LastError and SentAt,
	// and reports false when the record was not in t.From. A successful
	// transition drops any lease.
	Transition(ctx context.Context, id string, t Transition) (bool, error)
	// Claim leases a Pending record to l.Owner and reports false when the
	// record is not Pending or another owner holds a live lease.
	Claim(ctx context.Context, id string, l Lease) (bool, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}

// Armer arms and disarms in-process fire timers.
type Armer interface {
	Arm(id string, at time.Time)
	Disarm(id string)
}
