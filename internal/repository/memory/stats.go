package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
)

// StatsRepo is an in-memory email_stats collection, one document per sender.
type StatsRepo struct {
	mu    sync.RWMutex
	stats map[string]*domain.EmailStats // keyed by sender id
}

// NewStatsRepo creates an empty email_stats collection.
func NewStatsRepo() *StatsRepo {
	return &StatsRepo{stats: make(map[string]*domain.EmailStats)}
}

// Increment upserts the sender's counter.
func (r *StatsRepo) Increment(_ context.Context, senderID string, n int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[senderID]
	if !ok {
		s = &domain.EmailStats{ID: uuid.NewString(), SenderID: senderID, FirstSeen: at.UTC()}
		r.stats[senderID] = s
	}
	s.Sent += n
	s.Delivered += n
	s.Inbox += n
	return nil
}

// Get returns the sender's counter, or nil when none exists.
func (r *StatsRepo) Get(senderID string) *domain.EmailStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[senderID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (r *StatsRepo) Summary(_ context.Context) (domain.StatsSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum domain.StatsSummary
	for _, s := range r.stats {
		sum.Sent += s.Sent
		sum.Delivered += s.Delivered
		sum.Inbox += s.Inbox
		sum.Spam += s.Spam
	}
	return sum, nil
}

func (r *StatsRepo) TotalsBySender(_ context.Context) ([]domain.SenderTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SenderTotal, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, domain.SenderTotal{SenderID: s.SenderID, TotalSent: s.Sent})
	}
	return out, nil
}

func (r *StatsRepo) CountByDay(_ context.Context) ([]domain.DailyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byDay := make(map[string]int64)
	for _, s := range r.stats {
		byDay[s.FirstSeen.UTC().Format("2006-01-02")]++
	}
	out := make([]domain.DailyCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, domain.DailyCount{Date: day, Count: n})
	}
	return out, nil
}
