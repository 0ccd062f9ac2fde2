package template_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/templating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory templates collection for unit testing.
type memRepo struct {
	mu        sync.Mutex
	seq       int
	templates map[string]*domain.Template // keyed by id
}

func newMemRepo() *memRepo {
	return &memRepo{templates: make(map[string]*domain.Template)}
}

func (m *memRepo) Create(_ context.Context, t *domain.Template) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *t
	cp.ID = fmt.Sprintf("t%02d", m.seq)
	m.templates[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Find(_ context.Context, owner, name string) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.templates {
		if t.OwnerID == owner && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, template.ErrNotFound
}

func (m *memRepo) ListByOwners(_ context.Context, owners ...string) ([]domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Template
	for _, t := range m.templates {
		for _, o := range owners {
			if t.OwnerID == o {
				out = append(out, *t)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memRepo) UpdateContentByName(_ context.Context, name, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.templates {
		if t.Name == name {
			t.Content = content
			n++
		}
	}
	return n, nil
}

func (m *memRepo) DeleteByName(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.templates {
		if t.Name == name {
			delete(m.templates, id)
			n++
		}
	}
	return n, nil
}

type stubUsers map[string]*domain.User

func (s stubUsers) ResolveSender(_ context.Context, ref string) (*domain.User, error) {
	for _, u := range s {
		if u.ID == ref || u.Username == ref {
			if !u.IsEnabled {
				return nil, fmt.Errorf("%w: disabled", domain.ErrDisabled)
			}
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %w", domain.ErrNotFound)
}

var users = stubUsers{
	"u1": {ID: "u1", Username: "alice@x.com", IsEnabled: true},
	"u2": {ID: "u2", Username: "bob@x.com", IsEnabled: true},
	"u3": {ID: "u3", Username: "off@x.com"},
}

func newService() (*template.Service, *memRepo) {
	repo := newMemRepo()
	return template.NewService(repo, users, templating.NewRenderer()), repo
}

func TestCreateSharedWhenOwnerBlank(t *testing.T) {
	svc, _ := newService()
	tpl, err := svc.Create(context.Background(), "", "welcome", "Hi {{ sender }}")
	require.NoError(t, err)
	assert.Equal(t, domain.SharedOwner, tpl.OwnerID)
	assert.True(t, tpl.Shared)
}

func TestCreateUniquePerOwner(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", "promo", "A")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", "promo", "B")
	require.NoError(t, err, "same name under another owner is allowed")
	_, err = svc.Create(ctx, "u1", "promo", "C")
	assert.ErrorIs(t, err, template.ErrExists)
	assert.Len(t, repo.templates, 2)
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", " ", "body")
	assert.ErrorIs(t, err, template.ErrNameRequired)
	_, err = svc.Create(ctx, "u1", "x", "")
	assert.ErrorIs(t, err, template.ErrContentRequired)
	_, err = svc.Create(ctx, "u1", "x", "{% if a %}")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestListForOwnerIsUnionWithShared(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	svc.Create(ctx, "", "shared-1", "s")
	svc.Create(ctx, "u1", "mine", "m")
	svc.Create(ctx, "u2", "theirs", "t")

	list, err := svc.ListForOwner(ctx, "u1")
	require.NoError(t, err)
	var names []string
	for _, tpl := range list {
		names = append(names, tpl.Name)
	}
	assert.ElementsMatch(t, []string{"shared-1", "mine"}, names)

	shared, _ := svc.ListShared(ctx)
	assert.Len(t, shared, 1)
	owned, _ := svc.ListOwned(ctx, "u2")
	require.Len(t, owned, 1)
	assert.Equal(t, "theirs", owned[0].Name)
}

func TestUpdateAndDeleteSpanOwners(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	svc.Create(ctx, "u1", "promo", "one")
	svc.Create(ctx, "u2", "promo", "two")
	svc.Create(ctx, "", "promo", "shared")
	svc.Create(ctx, "u1", "other", "keep")

	n, err := svc.Update(ctx, "promo", "new body")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	for _, tpl := range repo.templates {
		if tpl.Name == "promo" {
			assert.Equal(t, "new body", tpl.Content)
		}
	}

	n, err = svc.Delete(ctx, "promo")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Len(t, repo.templates, 1)

	_, err = svc.Delete(ctx, "promo")
	assert.ErrorIs(t, err, template.ErrNotFound)
	_, err = svc.Update(ctx, "promo", "x")
	assert.ErrorIs(t, err, template.ErrNotFound)
}

func TestResolveOwner(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	owner, err := svc.ResolveOwner(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.SharedOwner, owner)

	owner, err = svc.ResolveOwner(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", owner)

	_, err = svc.ResolveOwner(ctx, "off@x.com")
	assert.ErrorIs(t, err, domain.ErrDisabled)
	_, err = svc.ResolveOwner(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookupFallsBackToShared(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	svc.Create(ctx, "", "welcome", "shared body")
	svc.Create(ctx, "u1", "welcome", "own body")

	tpl, err := svc.Lookup(ctx, "u1", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "own body", tpl.Content)

	tpl, err = svc.Lookup(ctx, "u2", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "shared body", tpl.Content)

	_, err = svc.Lookup(ctx, "u2", "missing")
	assert.ErrorIs(t, err, template.ErrNotFound)
}
