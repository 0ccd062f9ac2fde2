package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contacts repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Get(ctx context.Context, id string) (*domain.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, contact.ErrMalformedID
	}
	return r.findOne(ctx, `SELECT id, username, added_at FROM contacts WHERE id = $1`, id)
}

func (r *ContactRepo) FindByUsername(ctx context.Context, username string) (*domain.Contact, error) {
	return r.findOne(ctx, `SELECT id, username, added_at FROM contacts WHERE username = $1`, username)
}

func (r *ContactRepo) findOne(ctx context.Context, q string, arg string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&c.ID, &c.Username, &c.AddedAt)
	if err == sql.ErrNoRows {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, added_at FROM contacts ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Username, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, username, added_at) VALUES ($1, $2, $3)`,
		id, c.Username, c.AddedAt)
	if isUniqueViolation(err) {
		return "", contact.ErrExists
	}
	if err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *ContactRepo) Update(ctx context.Context, id, username string, addedAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return contact.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET username = $1, added_at = $2 WHERE id = $3`, username, addedAt, id)
	if isUniqueViolation(err) {
		return contact.ErrExists
	}
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return contact.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contact.ErrNotFound
	}
	return nil
}
