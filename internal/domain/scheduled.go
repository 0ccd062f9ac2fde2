package domain

import "time"

// ScheduledStatus enumerates the lifecycle states of a scheduled email.
type ScheduledStatus string

const (
	ScheduledPending ScheduledStatus = "Pending"
	ScheduledSent    ScheduledStatus = "Sent"
	ScheduledFailed  ScheduledStatus = "Failed"
)

// ScheduledEmail is a deferred send. The collection doubles as the durable
// job table for the scheduler.
type ScheduledEmail struct {
	ID        string          `json:"id" db:"id"`
	SenderID  string          `json:"user_id" db:"user_id"`
	To        string          `json:"to_emails" db:"to_emails"`
	Cc        string          `json:"cc" db:"cc"`
	Bcc       string          `json:"bcc" db:"bcc"`
	Subject   string          `json:"subject" db:"subject"`
	Body      string          `json:"body,omitempty" db:"body"`
	HTML      bool            `json:"html" db:"html"`
	FireAt    time.Time       `json:"schedule_time" db:"schedule_time"`
	Status    ScheduledStatus `json:"status" db:"status"`
	LastError string          `json:"last_error,omitempty" db:"last_error"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
}

// IsPending reports whether the record is still waiting to fire.
func (s *ScheduledEmail) IsPending() bool { return s.Status == ScheduledPending }

// Due reports whether the fire time has been reached at now.
func (s *ScheduledEmail) Due(now time.Time) bool { return !s.FireAt.After(now) }

// StatusCount is one bucket of the scheduled-status breakdown.
type StatusCount struct {
	Status ScheduledStatus `json:"status"`
	Count  int64           `json:"count"`
}
