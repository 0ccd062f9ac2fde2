package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = config.SessionConfig{CookieName: "massmail_session", CookieMaxAge: 3600}

func storeRoundTrip(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()
	s := &session.Session{
		ID:             "sid-1",
		UserID:         "u1",
		Username:       "admin@example.com",
		SelectedSender: "u2",
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.SelectedSender)
	assert.Equal(t, "sid-1", got.ID)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestMemoryStore(t *testing.T) {
	storeRoundTrip(t, session.NewMemoryStore())
}

func TestMemoryStore_Expired(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	storeRoundTrip(t, session.NewRedisStore(client))
}

func TestRedisStore_KeyExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := session.NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{ID: "s", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "s")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_RequireOperator(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore(), testCfg)

	var seen *session.Session
	protected := mgr.RequireOperator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login := httptest.NewRecorder()
	_, err := mgr.Start(context.Background(), login, domain.Identity{UserID: "u1", Username: "admin@example.com"})
	require.NoError(t, err)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin@example.com", seen.Username)
}

func TestManager_EndClearsSession(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := session.NewManager(store, testCfg)
	ctx := context.Background()

	login := httptest.NewRecorder()
	s, err := mgr.Start(ctx, login, domain.Identity{UserID: "u1", Username: "a"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(login.Result().Cookies()[0])
	rec := httptest.NewRecorder()
	mgr.End(ctx, rec, req)

	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestManager_SaveSelections(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore(), testCfg)
	ctx := context.Background()

	login := httptest.NewRecorder()
	s, err := mgr.Start(ctx, login, domain.Identity{UserID: "u1", Username: "a"})
	require.NoError(t, err)

	s.TemplateOwner = "u9"
	require.NoError(t, mgr.Save(ctx, s))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(login.Result().Cookies()[0])
	loaded, err := mgr.Load(req)
	require.NoError(t, err)
	assert.Equal(t, "u9", loaded.TemplateOwner)
}
