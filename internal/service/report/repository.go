package report

import (
	"context"

	"github.com/ignite/massmail/internal/domain"
)

// StatsReader aggregates the email_stats collection.
type StatsReader interface {
	Summary(ctx context.Context) (domain.StatsSummary, error)
	TotalsBySender(ctx context.Context) ([]domain.SenderTotal, error)
	// CountByDay groups counter documents by the UTC calendar day of their
	// first-seen timestamp.
	CountByDay(ctx context.Context) ([]domain.DailyCount, error)
}

// ScheduledCounter counts scheduled_emails by status.
type ScheduledCounter interface {
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}
