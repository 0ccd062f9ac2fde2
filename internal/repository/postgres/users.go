package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/user"
)

const userColumns = `id, username, password, is_superuser, is_enabled, created_at`

// UserRepo implements user.Repository against PostgreSQL.
type UserRepo struct{ db *sql.DB }

// NewUserRepo creates a Postgres-backed users repository.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsSuperuser, &u.IsEnabled, &u.CreatedAt)
	return u, err
}

func (r *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrMalformedID
	}
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, f user.ListFilter) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE TRUE`
	var args []interface{}
	if f.Superuser != nil {
		args = append(args, *f.Superuser)
		q += fmt.Sprintf(" AND is_superuser = $%d", len(args))
	}
	if f.Enabled != nil {
		args = append(args, *f.Enabled)
		q += fmt.Sprintf(" AND is_enabled = $%d", len(args))
	}
	q += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, is_superuser, is_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, u.Username, u.PasswordHash, u.IsSuperuser, u.IsEnabled, u.CreatedAt)
	if isUniqueViolation(err) {
		return "", user.ErrExists
	}
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, f user.UpdateFields) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrMalformedID
	}
	var sets []string
	var args []interface{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}
	if f.Username != nil {
		add("username", *f.Username)
	}
	if f.PasswordHash != nil {
		add("password", *f.PasswordHash)
	}
	if f.IsEnabled != nil {
		add("is_enabled", *f.IsEnabled)
	}
	if f.IsSuperuser != nil {
		add("is_superuser", *f.IsSuperuser)
	}
	if len(sets) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}

	q := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, q, args...)
	if isUniqueViolation(err) {
		return user.ErrExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrMalformedID
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}
