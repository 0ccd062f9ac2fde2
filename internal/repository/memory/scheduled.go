package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/schedule"
)

// ScheduledRepo is an in-memory scheduled_emails collection.
type ScheduledRepo struct {
	mu     sync.RWMutex
	recs   map[string]*domain.ScheduledEmail
	leases map[string]schedule.Lease
}

// NewScheduledRepo creates an empty scheduled_emails collection.
func NewScheduledRepo() *ScheduledRepo {
	return &ScheduledRepo{
		recs:   make(map[string]*domain.ScheduledEmail),
		leases: make(map[string]schedule.Lease),
	}
}

func (r *ScheduledRepo) Create(_ context.Context, e *domain.ScheduledEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	cp := *e
	r.recs[e.ID] = &cp
	return nil
}

func (r *ScheduledRepo) Get(_ context.Context, id string) (*domain.ScheduledEmail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, schedule.ErrMalformedID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.recs[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *ScheduledRepo) List(_ context.Context, f schedule.ListFilter) ([]domain.ScheduledEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.ScheduledEmail{}
	for _, e := range r.recs {
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.DueBefore != nil && e.FireAt.After(*f.DueBefore) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

func (r *ScheduledRepo) Transition(_ context.Context, id string, t schedule.Transition) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, schedule.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.recs[id]
	if !ok || e.Status != t.From {
		return false, nil
	}
	e.Status = t.To
	e.LastError = t.LastError
	if t.SentAt != nil {
		sentAt := *t.SentAt
		e.SentAt = &sentAt
	}
	delete(r.leases, id)
	return true, nil
}

func (r *ScheduledRepo) Claim(_ context.Context, id string, l schedule.Lease) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, schedule.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.recs[id]
	if !ok || e.Status != domain.ScheduledPending {
		return false, nil
	}
	if held, ok := r.leases[id]; ok && held.Owner != l.Owner && held.Until.After(l.Now) {
		return false, nil
	}
	r.leases[id] = l
	return true, nil
}

func (r *ScheduledRepo) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(r.recs, id)
	delete(r.leases, id)
	return nil
}

func (r *ScheduledRepo) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.ScheduledStatus]int64)
	for _, e := range r.recs {
		counts[e.Status]++
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, domain.StatusCount{Status: status, Count: n})
	}
	return out, nil
}
