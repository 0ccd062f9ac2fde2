// Package app wires storage, the mail provider and the services into one
// process-wide object shared by the server, the worker and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/massmail/internal/api"
	"github.com/ignite/massmail/internal/config"
	"github.com/ignite/massmail/internal/mailer"
	"github.com/ignite/massmail/internal/metrics"
	"github.com/ignite/massmail/internal/pkg/distlock"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/ignite/massmail/internal/repository"
	"github.com/ignite/massmail/internal/scheduler"
	"github.com/ignite/massmail/internal/service/contact"
	"github.com/ignite/massmail/internal/service/identity"
	"github.com/ignite/massmail/internal/service/mail"
	"github.com/ignite/massmail/internal/service/report"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
	"github.com/ignite/massmail/internal/session"
	"github.com/ignite/massmail/internal/templating"
	"github.com/redis/go-redis/v9"
)

// App holds every wired component.
type App struct {
	Config  *config.Config
	Store   *repository.Store
	Redis   *redis.Client // nil when no redis URL is configured
	Metrics *metrics.Metrics
	Sender  mailer.Sender
	Gmail   *mailer.GmailAuth // nil unless the provider is gmail

	Identity  *identity.Service
	Users     *user.Service
	Contacts  *contact.Service
	Templates *template.Service
	Mail      *mail.Service
	Schedule  *schedule.Service
	Reports   *report.Service
	Scheduler *scheduler.Scheduler
	Sessions  *session.Manager

	memSessions *session.MemoryStore
}

// Open connects the configured store, redis and mail provider and wires the
// services on top.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Info("app: store connected", "driver", store.Driver)

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("app: redis unreachable, continuing without it", "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Info("app: redis connected")
		}
	}

	sender, gmail, err := mailer.New(ctx, cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("mail provider: %w", err)
	}
	logger.Info("app: mail provider ready", "provider", sender.Provider())

	return Build(cfg, store, rdb, sender, gmail, metrics.New()), nil
}

// Build wires already-opened dependencies. rdb, gmail and m may be nil.
func Build(cfg *config.Config, store *repository.Store, rdb *redis.Client,
	sender mailer.Sender, gmail *mailer.GmailAuth, m *metrics.Metrics) *App {
	renderer := templating.NewRenderer()

	users := user.NewService(store.Users)
	templates := template.NewService(store.Templates, users, renderer)
	mailSvc := mail.NewService(users, templates, store.Stats, renderer, sender, m)
	sched := schedule.NewService(store.Scheduled, users, mailSvc)
	if rdb == nil && store.DB == nil {
		logger.Warn("app: no redis or postgres, scheduler locks are process local; store claims guard delivery")
	}

	runner := scheduler.New(sched, distlock.Factory{
		Redis: rdb,
		DB:    store.DB,
		TTL:   cfg.Scheduler.LockTTL(),
	}, cfg.Scheduler, m)
	sched.SetArmer(runner)

	a := &App{
		Config:    cfg,
		Store:     store,
		Redis:     rdb,
		Metrics:   m,
		Sender:    sender,
		Gmail:     gmail,
		Identity:  identity.NewService(store.Users),
		Users:     users,
		Contacts:  contact.NewService(store.Contacts),
		Templates: templates,
		Mail:      mailSvc,
		Schedule:  sched,
		Reports:   report.NewService(store.Stats, sched),
		Scheduler: runner,
	}

	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	} else {
		a.memSessions = session.NewMemoryStore()
		sessions = a.memSessions
	}
	a.Sessions = session.NewManager(sessions, cfg.Session)
	return a
}

// RunSessionCleanup evicts expired in-memory sessions until ctx ends. It
// returns at once when sessions live in redis, which expires them itself.
func (a *App) RunSessionCleanup(ctx context.Context, interval time.Duration) {
	if a.memSessions == nil {
		return
	}
	a.memSessions.Cleanup(ctx, interval)
}

// APIDeps returns the handler dependencies for the HTTP layer.
func (a *App) APIDeps() api.Deps {
	var mailConn api.MailConnection
	if a.Gmail != nil {
		mailConn = a.Gmail
	}
	var schedState api.SchedulerState
	if a.Config.Scheduler.Enabled {
		schedState = a.Scheduler
	}
	return api.Deps{
		Identity:  a.Identity,
		Users:     a.Users,
		Contacts:  a.Contacts,
		Templates: a.Templates,
		Mail:      a.Mail,
		Schedule:  a.Schedule,
		Reports:   a.Reports,
		Sessions:  a.Sessions,
		Gmail:     a.Gmail,
		Health:    api.NewHealthChecker(a.Store, a.Store.DB, a.Redis, mailConn, schedState),
		Metrics:   a.Metrics,
	}
}

// Close stops the scheduler and releases connections.
func (a *App) Close(ctx context.Context) {
	a.Scheduler.Stop()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("app: redis close", "error", err)
		}
	}
	if err := a.Store.Close(ctx); err != nil {
		logger.Warn("app: store close", "error", err)
	}
}
