package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/mailer"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/ignite/massmail/internal/service/mail"
)

// Outcome is the result of one Fire call.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeMissing Outcome = "missing"
)

// ClaimTTL bounds how long a fire owns a record before another process may
// take it over.
const ClaimTTL = 5 * time.Minute

// Composer is the compose & send pipeline.
type Composer interface {
	Compose(ctx context.Context, in mail.ComposeInput) (*domain.User, *mailer.Message, error)
	Deliver(ctx context.Context, sender *domain.User, msg *mailer.Message) (*mail.SendReport, error)
}

// SenderResolver resolves a stored sender id to an enabled account.
type SenderResolver interface {
	ResolveSender(ctx context.Context, ref string) (*domain.User, error)
}

// Service schedules, fires and manages deferred sends.
type Service struct {
	repo  Repository
	users SenderResolver
	mail  Composer
	armer Armer
	owner string
	now   func() time.Time
}

// NewService creates a schedule service. Call SetArmer before scheduling.
func NewService(repo Repository, users SenderResolver, composer Composer) *Service {
	return &Service{repo: repo, users: users, mail: composer, owner: uuid.NewString(), now: time.Now}
}

// SetArmer attaches the timer owner. Without one, records are persisted
// and left for the next sweep.
func (s *Service) SetArmer(a Armer) {
	s.armer = a
}

// Schedule validates the message like an immediate send, persists it as
// Pending and arms its timer. fireAt must lie in the future.
func (s *Service) Schedule(ctx context.Context, in mail.ComposeInput, fireAt time.Time) (*domain.ScheduledEmail, error) {
	now := s.now()
	if !fireAt.After(now) {
		return nil, ErrPastFireTime
	}
	sender, msg, err := s.mail.Compose(ctx, in)
	if err != nil {
		return nil, err
	}

	rec := &domain.ScheduledEmail{
		SenderID:  sender.ID,
		To:        domain.JoinRecipients(msg.To),
		Cc:        domain.JoinRecipients(msg.Cc),
		Bcc:       domain.JoinRecipients(msg.Bcc),
		Subject:   msg.Subject,
		Body:      msg.Body,
		HTML:      msg.HTML,
		FireAt:    fireAt.UTC(),
		Status:    domain.ScheduledPending,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	if s.armer != nil {
		s.armer.Arm(rec.ID, rec.FireAt)
	}
	logger.Info("schedule: email scheduled", "id", rec.ID, "sender", sender.Username, "fire_at", rec.FireAt)
	return rec, nil
}

// Fire sends a due record. It re-reads the record first and does nothing
// unless it is still Pending and this service wins the claim on it, so
// processes sharing the store deliver a record at most once.
func (s *Service) Fire(ctx context.Context, id string) (Outcome, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeMissing, nil
		}
		return "", err
	}
	if !rec.IsPending() {
		return OutcomeSkipped, nil
	}
	now := s.now()
	claimed, err := s.repo.Claim(ctx, rec.ID, Lease{Owner: s.owner, Now: now, Until: now.Add(ClaimTTL)})
	if err != nil {
		return "", err
	}
	if !claimed {
		logger.Info("schedule: record claimed elsewhere", "id", rec.ID)
		return OutcomeSkipped, nil
	}

	sender, err := s.users.ResolveSender(ctx, rec.SenderID)
	if err != nil {
		return s.fail(ctx, rec, err)
	}
	msg := &mailer.Message{
		From:    sender.Username,
		To:      domain.ParseRecipients(rec.To),
		Cc:      domain.ParseRecipients(rec.Cc),
		Bcc:     domain.ParseRecipients(rec.Bcc),
		Subject: rec.Subject,
		Body:    rec.Body,
		HTML:    rec.HTML,
	}
	if len(msg.To) == 0 {
		return s.fail(ctx, rec, mail.ErrNoRecipients)
	}
	if _, err := s.mail.Deliver(ctx, sender, msg); err != nil {
		return s.fail(ctx, rec, err)
	}

	sentAt := s.now().UTC()
	ok, err := s.repo.Transition(ctx, rec.ID, Transition{
		From:   domain.ScheduledPending,
		To:     domain.ScheduledSent,
		SentAt: &sentAt,
	})
	if err != nil {
		logger.Error("schedule: mark sent failed", "id", rec.ID, "error", err)
		return OutcomeSent, err
	}
	if !ok {
		logger.Warn("schedule: record left Pending while sending", "id", rec.ID)
	}
	return OutcomeSent, nil
}

func (s *Service) fail(ctx context.Context, rec *domain.ScheduledEmail, cause error) (Outcome, error) {
	logger.Warn("schedule: fire failed", "id", rec.ID, "error", cause)
	if _, err := s.repo.Transition(ctx, rec.ID, Transition{
		From:      domain.ScheduledPending,
		To:        domain.ScheduledFailed,
		LastError: cause.Error(),
	}); err != nil {
		logger.Error("schedule: mark failed failed", "id", rec.ID, "error", err)
		return OutcomeFailed, err
	}
	return OutcomeFailed, nil
}

// Get returns one record including its body.
func (s *Service) Get(ctx context.Context, id string) (*domain.ScheduledEmail, error) {
	return s.repo.Get(ctx, id)
}

// List returns every record for the report table, without bodies.
func (s *Service) List(ctx context.Context) ([]domain.ScheduledEmail, error) {
	recs, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Body = ""
	}
	return recs, nil
}

// Pending returns the Pending records, optionally only those due by before.
func (s *Service) Pending(ctx context.Context, before *time.Time) ([]domain.ScheduledEmail, error) {
	status := domain.ScheduledPending
	return s.repo.List(ctx, ListFilter{Status: &status, DueBefore: before})
}

// Delete removes a record and disarms its timer.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.armer != nil {
		s.armer.Disarm(id)
	}
	return nil
}

// Retry moves a Failed record back to Pending and re-arms it. A record whose
// fire time has passed fires on arming.
func (s *Service) Retry(ctx context.Context, id string) (*domain.ScheduledEmail, error) {
	ok, err := s.repo.Transition(ctx, id, Transition{
		From: domain.ScheduledFailed,
		To:   domain.ScheduledPending,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotRetryable
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.armer != nil {
		s.armer.Arm(rec.ID, rec.FireAt)
	}
	return rec, nil
}

// CountByStatus returns the number of records per status.
func (s *Service) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	return s.repo.CountByStatus(ctx)
}
