package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/template"
)

// TemplateRepo is an in-memory templates collection.
type TemplateRepo struct {
	mu        sync.RWMutex
	templates map[string]*domain.Template
}

// NewTemplateRepo creates an empty templates collection.
func NewTemplateRepo() *TemplateRepo {
	return &TemplateRepo{templates: make(map[string]*domain.Template)}
}

func (r *TemplateRepo) Create(_ context.Context, t *domain.Template) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.templates {
		if existing.OwnerID == t.OwnerID && existing.Name == t.Name {
			return "", template.ErrExists
		}
	}
	t.ID = uuid.NewString()
	cp := *t
	r.templates[t.ID] = &cp
	return t.ID, nil
}

func (r *TemplateRepo) Find(_ context.Context, owner, name string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.templates {
		if t.OwnerID == owner && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, template.ErrNotFound
}

func (r *TemplateRepo) ListByOwners(_ context.Context, owners ...string) ([]domain.Template, error) {
	want := make(map[string]bool, len(owners))
	for _, o := range owners {
		want[o] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Template{}
	for _, t := range r.templates {
		if want[t.OwnerID] {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TemplateRepo) UpdateContentByName(_ context.Context, name, content string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.templates {
		if t.Name == name {
			t.Content = content
			n++
		}
	}
	return n, nil
}

func (r *TemplateRepo) DeleteByName(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.templates {
		if t.Name == name {
			delete(r.templates, id)
			n++
		}
	}
	return n, nil
}
