package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store bundles one repository per table over a shared pool.
type Store struct {
	DB *sql.DB

	Users     *UserRepo
	Contacts  *ContactRepo
	Templates *TemplateRepo
	Scheduled *ScheduledRepo
	Stats     *StatsRepo
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", domain.ErrUnavailable, err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", domain.ErrUnavailable, err)
	}
	return NewStore(db), nil
}

// NewStore wires repositories over an existing pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:        db,
		Users:     NewUserRepo(db),
		Contacts:  NewContactRepo(db),
		Templates: NewTemplateRepo(db),
		Scheduled: NewScheduledRepo(db),
		Stats:     NewStatsRepo(db),
	}
}

// Ping checks the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close(context.Context) error {
	return s.DB.Close()
}

// MigrationFiles returns the embedded schema files in apply order.
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every embedded migration, each in its own transaction.
// The statements are idempotent, so re-running is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	files, err := MigrationFiles()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	for _, name := range files {
		data, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
		logger.Info("postgres: migration applied", "file", name)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}
