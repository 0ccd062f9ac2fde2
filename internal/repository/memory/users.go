package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/user"
)

// UserRepo is an in-memory users collection.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepo creates an empty users collection.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*domain.User)}
}

func (r *UserRepo) Get(_ context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrMalformedID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepo) List(_ context.Context, f user.ListFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.User{}
	for _, u := range r.users {
		if f.Superuser != nil && u.IsSuperuser != *f.Superuser {
			continue
		}
		if f.Enabled != nil && u.IsEnabled != *f.Enabled {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return "", user.ErrExists
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	r.users[u.ID] = &cp
	return u.ID, nil
}

func (r *UserRepo) Update(_ context.Context, id string, f user.UpdateFields) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	if f.Username != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Username == *f.Username {
				return user.ErrExists
			}
		}
		u.Username = *f.Username
	}
	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
	}
	if f.IsEnabled != nil {
		u.IsEnabled = *f.IsEnabled
	}
	if f.IsSuperuser != nil {
		u.IsSuperuser = *f.IsSuperuser
	}
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrMalformedID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
