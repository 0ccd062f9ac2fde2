package identity_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory users collection for unit testing.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by username
	fail  error
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*domain.User)}
}

func (m *memRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	u, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, u *domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	cp.ID = fmt.Sprintf("u%d", len(m.users)+1)
	m.users[cp.Username] = &cp
	return cp.ID, nil
}

func TestRegister(t *testing.T) {
	repo := newMemRepo()
	svc := identity.NewService(repo)

	u, err := svc.Register(context.Background(), "  alice ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsEnabled)
	assert.Equal(t, identity.HashPassword("password1"), repo.users["alice"].PasswordHash)
	assert.Len(t, repo.users["alice"].PasswordHash, 64)
}

func TestRegisterValidation(t *testing.T) {
	svc := identity.NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "   ", "password1")
	assert.ErrorIs(t, err, identity.ErrUsernameRequired)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Register(ctx, "bob", "short")
	assert.ErrorIs(t, err, identity.ErrPasswordTooShort)

	_, err = svc.Register(ctx, "bob", "12345678")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "another-password")
	assert.ErrorIs(t, err, identity.ErrUsernameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterStoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.fail = fmt.Errorf("dial: %w", domain.ErrUnavailable)
	_, err := identity.NewService(repo).Register(context.Background(), "carol", "password1")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestLogin(t *testing.T) {
	repo := newMemRepo()
	svc := identity.NewService(repo)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "admin", "password1")
	require.NoError(t, err)

	id, err := svc.Login(ctx, "admin", "password1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id.UserID)
	assert.Equal(t, "admin", id.Username)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong-password"},
		{"nobody", "password1"},
		{"Admin", "password1"},
	} {
		_, err := svc.Login(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, identity.ErrInvalidLogin, tc.user)
	}
}

func TestLoginTrimsUsernameLikeRegister(t *testing.T) {
	svc := identity.NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, " bob ", "password1")
	require.NoError(t, err)

	id, err := svc.Login(ctx, " bob ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bob", id.Username)
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	repo := newMemRepo()
	repo.users["sender"] = &domain.User{
		ID: "u9", Username: "sender", PasswordHash: identity.HashPassword("password1"),
		IsEnabled: true,
	}
	_, err := identity.NewService(repo).Login(context.Background(), "sender", "password1")
	assert.True(t, errors.Is(err, identity.ErrInvalidLogin))
}
