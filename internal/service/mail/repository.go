package mail

import (
	"context"
	"time"

	"github.com/ignite/massmail/internal/domain"
)

// StatsRecorder upserts the per-sender counter document.
type StatsRecorder interface {
	// Increment adds n to sent, delivered and inbox of the sender's counter,
	// creating it with first-seen at when absent.
	Increment(ctx context.Context, senderID string, n int64, at time.Time) error
}

// SenderResolver resolves an id or username to an enabled account.
type SenderResolver interface {
	ResolveSender(ctx context.Context, ref string) (*domain.User, error)
}

// TemplateLookup finds a sender's template, falling back to shared ones.
type TemplateLookup interface {
	Lookup(ctx context.Context, owner, name string) (*domain.Template, error)
}

// Renderer renders message bodies.
type Renderer interface {
	Render(cacheKey, content string, vars map[string]interface{}) (string, error)
}
