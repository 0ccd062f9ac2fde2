package session

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httputil"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Manager issues session cookies and resolves them on each request.
type Manager struct {
	store      Store
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a manager over store using the cookie settings in cfg.
func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:      store,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge(),
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Start creates a session for id and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, id domain.Identity) (*Session, error) {
	sid, err := newID()
	if err != nil {
		return nil, err
	}
	now := m.now()
	s := &Session{
		ID:        sid,
		UserID:    id.UserID,
		Username:  id.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("session: operator logged in", "username", id.Username)
	return s, nil
}

// End deletes the request's session, if any, and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if err := m.store.Delete(ctx, cookie.Value); err != nil {
			logger.Warn("session: delete failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   m.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Load returns the session named by the request cookie.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	s, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	s.ID = cookie.Value
	return s, nil
}

// Save persists changes to the session's selections.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s)
}

// RequireOperator rejects requests without a live session and puts the
// session in the request context for handlers.
func (m *Manager) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			if !IsNoSession(err) {
				logger.Error("session: load failed", "error", err)
			}
			httputil.FromError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
