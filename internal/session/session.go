// Package session keeps the operator's login and selections between
// requests. Every request carries its own *Session in its context; nothing
// about the operator lives in package state.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/massmail/internal/domain"
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = fmt.Errorf("%w: no active session", domain.ErrUnauthorized)

// Session is one logged-in operator.
type Session struct {
	ID       string `json:"-"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	// SelectedSender is the account compose and schedule default to.
	SelectedSender string `json:"selected_sender,omitempty"`
	// TemplateOwner scopes the template list; empty means shared.
	TemplateOwner string `json:"template_owner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its lifetime at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Identity returns who is logged in.
func (s *Session) Identity() domain.Identity {
	return domain.Identity{UserID: s.UserID, Username: s.Username}
}

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	// Get returns ErrNoSession for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsNoSession reports whether err means the caller is not logged in.
func IsNoSession(err error) bool {
	return errors.Is(err, ErrNoSession)
}
