package api

import (
	"github.com/ignite/massmail/internal/mailer"
	"github.com/ignite/massmail/internal/metrics"
	"github.com/ignite/massmail/internal/service/contact"
	"github.com/ignite/massmail/internal/service/identity"
	"github.com/ignite/massmail/internal/service/mail"
	"github.com/ignite/massmail/internal/service/report"
	"github.com/ignite/massmail/internal/service/schedule"
	"github.com/ignite/massmail/internal/service/template"
	"github.com/ignite/massmail/internal/service/user"
	"github.com/ignite/massmail/internal/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	identity  *identity.Service
	users     *user.Service
	contacts  *contact.Service
	templates *template.Service
	mail      *mail.Service
	schedule  *schedule.Service
	reports   *report.Service
	sessions  *session.Manager
	gmail     *mailer.GmailAuth // nil unless the gmail provider is configured
	health    *HealthChecker
	metrics   *metrics.Metrics
}

// Deps is everything the handlers need.
type Deps struct {
	Identity  *identity.Service
	Users     *user.Service
	Contacts  *contact.Service
	Templates *template.Service
	Mail      *mail.Service
	Schedule  *schedule.Service
	Reports   *report.Service
	Sessions  *session.Manager
	Gmail     *mailer.GmailAuth
	Health    *HealthChecker
	Metrics   *metrics.Metrics
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		identity:  d.Identity,
		users:     d.Users,
		contacts:  d.Contacts,
		templates: d.Templates,
		mail:      d.Mail,
		schedule:  d.Schedule,
		reports:   d.Reports,
		sessions:  d.Sessions,
		gmail:     d.Gmail,
		health:    d.Health,
		metrics:   d.Metrics,
	}
}
