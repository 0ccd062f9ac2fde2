package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
)

// StatsRepo implements the counter upsert and report aggregations against
// PostgreSQL.
type StatsRepo struct{ db *sql.DB }

// NewStatsRepo creates a Postgres-backed email_stats repository.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Increment adds n to sent, delivered and inbox in one upsert.
func (r *StatsRepo) Increment(ctx context.Context, senderID string, n int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_stats (id, user_id, sent, delivered, inbox, spam, "timestamp")
		VALUES ($1, $2, $3, $3, $3, 0, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			sent = email_stats.sent + EXCLUDED.sent,
			delivered = email_stats.delivered + EXCLUDED.delivered,
			inbox = email_stats.inbox + EXCLUDED.inbox
	`, uuid.NewString(), senderID, n, at)
	if err != nil {
		return fmt.Errorf("increment email stats: %w", err)
	}
	return nil
}

func (r *StatsRepo) Summary(ctx context.Context) (domain.StatsSummary, error) {
	var s domain.StatsSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(sent), 0), COALESCE(SUM(delivered), 0),
		       COALESCE(SUM(inbox), 0), COALESCE(SUM(spam), 0)
		FROM email_stats
	`).Scan(&s.Sent, &s.Delivered, &s.Inbox, &s.Spam)
	if err != nil {
		return domain.StatsSummary{}, fmt.Errorf("sum email stats: %w", err)
	}
	return s, nil
}

func (r *StatsRepo) TotalsBySender(ctx context.Context) ([]domain.SenderTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, SUM(sent) AS total_sent
		FROM email_stats
		GROUP BY user_id
		ORDER BY total_sent DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("rank senders: %w", err)
	}
	defer rows.Close()

	out := []domain.SenderTotal{}
	for rows.Next() {
		var t domain.SenderTotal
		if err := rows.Scan(&t.SenderID, &t.TotalSent); err != nil {
			return nil, fmt.Errorf("scan sender total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *StatsRepo) CountByDay(ctx context.Context) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char("timestamp" AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM email_stats
		GROUP BY day
		ORDER BY day
	`)
	if err != nil {
		return nil, fmt.Errorf("count campaigns by day: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyCount{}
	for rows.Next() {
		var d domain.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
