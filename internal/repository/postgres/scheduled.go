package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/schedule"
)

const scheduledColumns = `id, user_id, to_emails, cc, bcc, subject, body, html, schedule_time,
	status, last_error, created_at, sent_at`

// ScheduledRepo implements schedule.Repository against PostgreSQL.
type ScheduledRepo struct{ db *sql.DB }

// NewScheduledRepo creates a Postgres-backed scheduled_emails repository.
func NewScheduledRepo(db *sql.DB) *ScheduledRepo { return &ScheduledRepo{db: db} }

func scanScheduled(row interface{ Scan(...interface{}) error }) (*domain.ScheduledEmail, error) {
	e := &domain.ScheduledEmail{}
	var sentAt sql.NullTime
	err := row.Scan(&e.ID, &e.SenderID, &e.To, &e.Cc, &e.Bcc, &e.Subject, &e.Body, &e.HTML, &e.FireAt,
		&e.Status, &e.LastError, &e.CreatedAt, &sentAt)
	if sentAt.Valid {
		t := sentAt.Time
		e.SentAt = &t
	}
	return e, err
}

func (r *ScheduledRepo) Create(ctx context.Context, e *domain.ScheduledEmail) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_emails
			(id, user_id, to_emails, cc, bcc, subject, body, html, schedule_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, e.SenderID, e.To, e.Cc, e.Bcc, e.Subject, e.Body, e.HTML, e.FireAt, string(e.Status), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create scheduled email: %w", err)
	}
	e.ID = id
	return nil
}

func (r *ScheduledRepo) Get(ctx context.Context, id string) (*domain.ScheduledEmail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, schedule.ErrMalformedID
	}
	e, err := scanScheduled(r.db.QueryRowContext(ctx,
		`SELECT `+scheduledColumns+` FROM scheduled_emails WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, schedule.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled email: %w", err)
	}
	return e, nil
}

func (r *ScheduledRepo) List(ctx context.Context, f schedule.ListFilter) ([]domain.ScheduledEmail, error) {
	q := `SELECT ` + scheduledColumns + ` FROM scheduled_emails WHERE TRUE`
	var args []interface{}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		q += fmt.Sprintf(" AND schedule_time <= $%d", len(args))
	}
	q += " ORDER BY schedule_time ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled emails: %w", err)
	}
	defer rows.Close()

	out := []domain.ScheduledEmail{}
	for rows.Next() {
		e, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled email: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *ScheduledRepo) Transition(ctx context.Context, id string, t schedule.Transition) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, schedule.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_emails
		SET status = $1, last_error = $2, sent_at = COALESCE($3, sent_at),
			claimed_by = '', claimed_until = NULL
		WHERE id = $4 AND status = $5
	`, string(t.To), t.LastError, t.SentAt, id, string(t.From))
	if err != nil {
		return false, fmt.Errorf("transition scheduled email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition scheduled email: %w", err)
	}
	return n == 1, nil
}

func (r *ScheduledRepo) Claim(ctx context.Context, id string, l schedule.Lease) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, schedule.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_emails
		SET claimed_by = $1, claimed_until = $2
		WHERE id = $3 AND status = $4
		  AND (claimed_until IS NULL OR claimed_until <= $5 OR claimed_by = $1)
	`, l.Owner, l.Until, id, string(domain.ScheduledPending), l.Now)
	if err != nil {
		return false, fmt.Errorf("claim scheduled email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim scheduled email: %w", err)
	}
	return n == 1, nil
}

func (r *ScheduledRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return schedule.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_emails WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheduled email: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (r *ScheduledRepo) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM scheduled_emails GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("count scheduled emails: %w", err)
	}
	defer rows.Close()

	out := []domain.StatusCount{}
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
