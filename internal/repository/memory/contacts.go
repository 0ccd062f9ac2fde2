package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/contact"
)

// ContactRepo is an in-memory contacts collection.
type ContactRepo struct {
	mu       sync.RWMutex
	contacts map[string]*domain.Contact
}

// NewContactRepo creates an empty contacts collection.
func NewContactRepo() *ContactRepo {
	return &ContactRepo{contacts: make(map[string]*domain.Contact)}
}

func (r *ContactRepo) Get(_ context.Context, id string) (*domain.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, contact.ErrMalformedID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, contact.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *ContactRepo) FindByUsername(_ context.Context, username string) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.contacts {
		if c.Username == username {
			cp := *c
			return &cp, nil
		}
	}
	return nil, contact.ErrNotFound
}

func (r *ContactRepo) List(_ context.Context) ([]domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (r *ContactRepo) Create(_ context.Context, c *domain.Contact) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	cp := *c
	r.contacts[c.ID] = &cp
	return c.ID, nil
}

func (r *ContactRepo) Update(_ context.Context, id, username string, addedAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return contact.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return contact.ErrNotFound
	}
	c.Username = username
	c.AddedAt = addedAt
	return nil
}

func (r *ContactRepo) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return contact.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return contact.ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}
