// Package repository selects a storage driver and exposes its repositories
// behind the service-layer interfaces.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/repository/memory"
	"github.com/ignite/massmail/internal/repository/mongo"
	"github.com/ignite/massmail/internal/repository/postgres"
	"github.com/ignite/massmail/internal/service/contact"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
)

// StatsStore is the email_stats collection: the counter upsert plus the
// report aggregations.
type StatsStore interface {
	Increment(ctx context.Context, senderID string, n int64, at time.Time) error
	Summary(ctx context.Context) (domain.StatsSummary, error)
	TotalsBySender(ctx context.Context) ([]domain.SenderTotal, error)
	CountByDay(ctx context.Context) ([]domain.DailyCount, error)
}

// Store is an opened storage driver.
type Store struct {
	Driver    string
	Users     user.Repository
	Contacts  contact.Repository
	Templates template.Repository
	Scheduled schedule.Repository
	Stats     StatsStore

	// DB is set for the postgres driver so advisory locks can share the pool.
	DB *sql.DB

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping reports whether the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the driver's connections.
func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// Open connects the driver named in cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case "mongo", "":
		m, err := mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:    "mongo",
			Users:     m.Users,
			Contacts:  m.Contacts,
			Templates: m.Templates,
			Scheduled: m.Scheduled,
			Stats:     m.Stats,
			ping:      m.Ping,
			close:     m.Close,
		}, nil
	case "postgres":
		p, err := postgres.Open(ctx, cfg.PostgresURL, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:    "postgres",
			Users:     p.Users,
			Contacts:  p.Contacts,
			Templates: p.Templates,
			Scheduled: p.Scheduled,
			Stats:     p.Stats,
			DB:        p.DB,
			ping:      p.Ping,
			close:     p.Close,
		}, nil
	case "memory":
		return FromMemory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalid, cfg.Driver)
	}
}

// FromMemory wraps an in-memory store.
func FromMemory(m *memory.Store) *Store {
	return &Store{
		Driver:    "memory",
		Users:     m.Users,
		Contacts:  m.Contacts,
		Templates: m.Templates,
		Scheduled: m.Scheduled,
		Stats:     m.Stats,
		ping:      m.Ping,
		close:     m.Close,
	}
}
