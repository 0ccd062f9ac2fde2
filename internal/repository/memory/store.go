package memory

import (
	"context"
)

// Store bundles one of each repository.
type Store struct {
	Users     *UserRepo
	Contacts  *ContactRepo
	Templates *TemplateRepo
	Scheduled *ScheduledRepo
	Stats     *StatsRepo
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		Users:     NewUserRepo(),
		Contacts:  NewContactRepo(),
		Templates: NewTemplateRepo(),
		Scheduled: NewScheduledRepo(),
		Stats:     NewStatsRepo(),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
