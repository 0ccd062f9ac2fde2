package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/metrics"
	"github.com/ignite/massmail/internal/pkg/distlock"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/robfig/cron/v3"
)

// =============================================================================
// SCHEDULED EMAIL RUNNER
// =============================================================================
// Each Pending record gets a one-shot timer in this process. The
// scheduled_emails collection is the durable job table: Start re-arms every
// Pending record (past-due ones fire at once) and a cron sweep arms records
// written by other processes. A fire holds a distributed lock on the record
// id when Redis or Postgres is available. Without one the lock is process
// local and the store-level claim taken by schedule.Service.Fire keeps two
// processes from sending the same record.

const (
	// DefaultSweepSpec is how often Pending records are re-read.
	DefaultSweepSpec = "@every 30s"

	// DefaultFireTimeout bounds one fire, including the provider call.
	DefaultFireTimeout = 2 * time.Minute

	lockPrefix = "massmail:scheduled:"
)

// Firer is the schedule service surface the runner drives.
type Firer interface {
	Fire(ctx context.Context, id string) (schedule.Outcome, error)
	Pending(ctx context.Context, before *time.Time) ([]domain.ScheduledEmail, error)
}

// Locker hands out a lock per record.
type Locker interface {
	New(key string) distlock.DistLock
}

// Stats is a snapshot of runner counters.
type Stats struct {
	Armed   int   `json:"armed"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`
}

// Scheduler arms timers for Pending records and fires them.
type Scheduler struct {
	svc         Firer
	locks       Locker
	metrics     *metrics.Metrics
	sweepSpec   string
	fireTimeout time.Duration
	workerID    string

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	cron *cron.Cron

	// Stats
	sent    int64
	failed  int64
	skipped int64
	errors  int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// New creates a runner. m may be nil.
func New(svc Firer, locks Locker, cfg config.SchedulerConfig, m *metrics.Metrics) *Scheduler {
	spec := cfg.SweepSpec
	if spec == "" {
		spec = DefaultSweepSpec
	}
	hostname, _ := os.Hostname()
	return &Scheduler{
		svc:         svc,
		locks:       locks,
		metrics:     m,
		sweepSpec:   spec,
		fireTimeout: DefaultFireTimeout,
		workerID:    fmt.Sprintf("scheduler-%s-%d", hostname, time.Now().UnixNano()%10000),
		timers:      make(map[string]*time.Timer),
	}
}

// Start runs the recovery sweep and the periodic sweep.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	c := cron.New()
	if _, err := c.AddFunc(s.sweepSpec, s.periodicSweep); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: sweep spec %q: %v", domain.ErrInvalid, s.sweepSpec, err)
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.mu.Unlock()

	logger.Info("scheduler: starting", "worker", s.workerID, "sweep", s.sweepSpec)

	n, err := s.Sweep(s.ctx)
	if err != nil {
		logger.Error("scheduler: recovery sweep failed", "error", err)
	} else {
		logger.Info("scheduler: recovery sweep armed records", "count", n)
	}

	c.Start()
	return nil
}

// Stop halts the sweep, disarms every timer and waits for in-flight fires.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	logger.Info("scheduler: stopping", "worker", s.workerID)
	<-s.cron.Stop().Done()

	s.timersMu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.timersMu.Unlock()

	s.cancel()
	s.wg.Wait()
	st := s.Stats()
	logger.Info("scheduler: stopped", "sent", st.Sent, "failed", st.Failed, "skipped", st.Skipped)
}

// Running reports whether Start has been called without Stop.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Arm sets a timer that fires id at at, replacing any earlier timer for id.
// A past at fires immediately. Arm is a no-op while the runner is stopped;
// the next sweep of a running process picks the record up.
func (s *Scheduler) Arm(id string, at time.Time) {
	if !s.Running() {
		return
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id) })
}

// Disarm cancels id's timer, if any.
func (s *Scheduler) Disarm(id string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) armed(id string) bool {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Sweep arms every Pending record that has no timer yet and returns how many
// it armed.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	recs, err := s.svc.Pending(ctx, nil)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		if s.armed(rec.ID) {
			continue
		}
		s.Arm(rec.ID, rec.FireAt)
		n++
	}
	return n, nil
}

func (s *Scheduler) periodicSweep() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if n, err := s.Sweep(ctx); err != nil {
		atomic.AddInt64(&s.errors, 1)
		logger.Error("scheduler: sweep failed", "error", err)
	} else if n > 0 {
		logger.Debug("scheduler: sweep armed records", "count", n)
	}
}

func (s *Scheduler) fire(id string) {
	s.mu.RLock()
	if !s.running {
		s.mu.RUnlock()
		return
	}
	s.wg.Add(1)
	parent := s.ctx
	s.mu.RUnlock()
	defer s.wg.Done()

	s.timersMu.Lock()
	delete(s.timers, id)
	s.timersMu.Unlock()

	ctx, cancel := context.WithTimeout(parent, s.fireTimeout)
	defer cancel()
	s.FireLocked(ctx, id)
}

// FireLocked fires id under its distributed lock. A record whose lock is
// held elsewhere is skipped; its holder sends it.
func (s *Scheduler) FireLocked(ctx context.Context, id string) schedule.Outcome {
	lock := s.locks.New(lockPrefix + id)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		logger.Error("scheduler: lock failed", "id", id, "error", err)
		return schedule.OutcomeSkipped
	}
	if !ok {
		atomic.AddInt64(&s.skipped, 1)
		s.metrics.ObserveFire(string(schedule.OutcomeSkipped))
		return schedule.OutcomeSkipped
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("scheduler: lock release failed", "id", id, "error", err)
		}
	}()

	outcome, err := s.svc.Fire(ctx, id)
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		logger.Error("scheduler: fire error", "id", id, "error", err)
	}
	switch outcome {
	case schedule.OutcomeSent:
		atomic.AddInt64(&s.sent, 1)
	case schedule.OutcomeFailed:
		atomic.AddInt64(&s.failed, 1)
	default:
		atomic.AddInt64(&s.skipped, 1)
	}
	if outcome != "" {
		s.metrics.ObserveFire(string(outcome))
	}
	return outcome
}

// RunDue fires every Pending record already due, one at a time, without
// timers. It is what a one-off sweep from the command line runs.
func (s *Scheduler) RunDue(ctx context.Context) (map[schedule.Outcome]int, error) {
	now := time.Now()
	recs, err := s.svc.Pending(ctx, &now)
	if err != nil {
		return nil, err
	}
	out := make(map[schedule.Outcome]int)
	for _, rec := range recs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		out[s.FireLocked(ctx, rec.ID)]++
	}
	return out, nil
}

// Stats returns current counters.
func (s *Scheduler) Stats() Stats {
	s.timersMu.Lock()
	armed := len(s.timers)
	s.timersMu.Unlock()
	return Stats{
		Armed:   armed,
		Sent:    atomic.LoadInt64(&s.sent),
		Failed:  atomic.LoadInt64(&s.failed),
		Skipped: atomic.LoadInt64(&s.skipped),
		Errors:  atomic.LoadInt64(&s.errors),
	}
}
