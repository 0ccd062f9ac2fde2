package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/lib/pq"
)

const templateColumns = `id, user_id, template_name, template_content, superuser, created_at`

// TemplateRepo implements template.Repository against PostgreSQL.
type TemplateRepo struct{ db *sql.DB }

// NewTemplateRepo creates a Postgres-backed templates repository.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

func (r *TemplateRepo) Create(ctx context.Context, t *domain.Template) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO templates (id, user_id, template_name, template_content, superuser, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, t.OwnerID, t.Name, t.Content, t.Shared, t.CreatedAt)
	if isUniqueViolation(err) {
		return "", template.ErrExists
	}
	if err != nil {
		return "", fmt.Errorf("create template: %w", err)
	}
	t.ID = id
	return id, nil
}

func (r *TemplateRepo) Find(ctx context.Context, owner, name string) (*domain.Template, error) {
	t := &domain.Template{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE user_id = $1 AND template_name = $2`,
		owner, name,
	).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Content, &t.Shared, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, template.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepo) ListByOwners(ctx context.Context, owners ...string) ([]domain.Template, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE user_id = ANY($1) ORDER BY created_at DESC`,
		pq.Array(owners))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := []domain.Template{}
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Content, &t.Shared, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TemplateRepo) UpdateContentByName(ctx context.Context, name, content string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE templates SET template_content = $1 WHERE template_name = $2`, content, name)
	if err != nil {
		return 0, fmt.Errorf("update templates: %w", err)
	}
	return res.RowsAffected()
}

func (r *TemplateRepo) DeleteByName(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE template_name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("delete templates: %w", err)
	}
	return res.RowsAffected()
}
