package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestUserRepo_Get(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.NewString()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_superuser", "is_enabled", "created_at"}).
			AddRow(id, "admin@example.com", "hash", true, true, created))

	u, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Username)
	assert.True(t, u.IsSuperuser)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrMalformedID)
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := repo.Create(context.Background(), &domain.User{Username: "dup"})
	assert.ErrorIs(t, err, user.ErrExists)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUserRepo_UpdateBuildsSetClause(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepo(db)
	id := uuid.NewString()
	enabled := false
	name := "new@example.com"

	mock.ExpectExec(`UPDATE users SET username = \$1, is_enabled = \$2 WHERE id = \$3`).
		WithArgs(name, enabled, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), id, user.UpdateFields{Username: &name, IsEnabled: &enabled})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepo_ListFilters(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepo(db)
	super := false
	enabled := true

	mock.ExpectQuery(`FROM users WHERE TRUE AND is_superuser = \$1 AND is_enabled = \$2 ORDER BY created_at ASC`).
		WithArgs(super, enabled).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_superuser", "is_enabled", "created_at"}))

	list, err := repo.List(context.Background(), user.ListFilter{Superuser: &super, Enabled: &enabled})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTemplateRepo_BulkByName(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewTemplateRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE templates SET template_content = \$1 WHERE template_name = \$2`).
		WithArgs("new", "promo").
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.UpdateContentByName(ctx, "promo", "new")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec(`DELETE FROM templates WHERE template_name = \$1`).
		WithArgs("promo").
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err = repo.DeleteByName(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mock.ExpectExec(`INSERT INTO templates`).
		WillReturnError(&pq.Error{Code: "23505"})
	_, err = repo.Create(ctx, &domain.Template{OwnerID: "u1", Name: "promo"})
	assert.ErrorIs(t, err, template.ErrExists)
}

func TestScheduledRepo_TransitionIsConditional(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewScheduledRepo(db)
	id := uuid.NewString()

	mock.ExpectExec(`UPDATE scheduled_emails`).
		WithArgs("Sent", "", sqlmock.AnyArg(), id, "Pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	ok, err := repo.Transition(context.Background(), id, schedule.Transition{
		From: domain.ScheduledPending, To: domain.ScheduledSent, SentAt: &now,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduledRepo_ListPendingDue(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewScheduledRepo(db)
	id := uuid.NewString()
	fireAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM scheduled_emails WHERE TRUE AND status = \$1 AND schedule_time <= \$2 ORDER BY schedule_time ASC`).
		WithArgs("Pending", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "to_emails", "cc", "bcc", "subject", "body", "html", "schedule_time",
			"status", "last_error", "created_at", "sent_at",
		}).AddRow(id, "u1", "a@x.com", "", "", "s", "<p>b</p>", true, fireAt, "Pending", "", fireAt, nil))

	status := domain.ScheduledPending
	now := time.Now()
	recs, err := repo.List(context.Background(), schedule.ListFilter{Status: &status, DueBefore: &now})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ScheduledPending, recs[0].Status)
	assert.True(t, recs[0].HTML)
	assert.Nil(t, recs[0].SentAt)
}

func TestScheduledRepo_ClaimRespectsLiveLease(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewScheduledRepo(db)
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectExec(`UPDATE scheduled_emails\s+SET claimed_by = \$1, claimed_until = \$2`).
		WithArgs("a", sqlmock.AnyArg(), id, "Pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE scheduled_emails\s+SET claimed_by = \$1, claimed_until = \$2`).
		WithArgs("b", sqlmock.AnyArg(), id, "Pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Claim(context.Background(), id, schedule.Lease{Owner: "a", Now: now, Until: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(context.Background(), id, schedule.Lease{Owner: "b", Now: now, Until: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsRepo_IncrementUpserts(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewStatsRepo(db)
	at := time.Now()

	mock.ExpectExec(`INSERT INTO email_stats (.+) ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "u1", int64(2), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Increment(context.Background(), "u1", 2, at))
}

func TestStatsRepo_Summary(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewStatsRepo(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(sent\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sent", "delivered", "inbox", "spam"}).AddRow(10, 8, 6, 0))

	sum, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatsSummary{Sent: 10, Delivered: 8, Inbox: 6}, sum)
}

func TestMigrate_AppliesEmbeddedFiles(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	require.Equal(t, []string{"001_schema.sql", "002_scheduled_html_claims.sql"}, files)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`ALTER TABLE scheduled_emails ADD COLUMN IF NOT EXISTS html`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	require.NoError(t, Migrate(context.Background(), db))
}
