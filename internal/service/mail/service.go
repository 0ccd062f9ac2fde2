package mail

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/mailer"
	"github.com/ignite/massmail/internal/metrics"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// ComposeInput is what an operator fills in on the send form.
type ComposeInput struct {
	SenderRef    string `json:"sender"`
	To           string `json:"to"`
	Cc           string `json:"cc"`
	Bcc          string `json:"bcc"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	Signature    string `json:"signature"`
	TemplateName string `json:"template_name"`
	HTML         bool   `json:"html"`
}

// SendReport describes an accepted send.
type SendReport struct {
	MessageID    string   `json:"message_id,omitempty"`
	Provider     string   `json:"provider"`
	SenderID     string   `json:"sender_id"`
	Recipients   []string `json:"recipients"`
	Counted      int      `json:"counted"`
	CounterError string   `json:"counter_error,omitempty"`
}

// Service composes and sends messages.
type Service struct {
	users     SenderResolver
	templates TemplateLookup
	stats     StatsRecorder
	renderer  Renderer
	sender    mailer.Sender
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires the compose pipeline. metrics may be nil.
func NewService(users SenderResolver, templates TemplateLookup, stats StatsRecorder,
	renderer Renderer, sender mailer.Sender, m *metrics.Metrics) *Service {
	return &Service{
		users:     users,
		templates: templates,
		stats:     stats,
		renderer:  renderer,
		sender:    sender,
		metrics:   m,
		now:       time.Now,
	}
}

// Compose validates the input and builds the outbound message without
// sending it. The body is the template content when no body was typed,
// rendered with sender, subject and date in scope, followed by the signature.
func (s *Service) Compose(ctx context.Context, in ComposeInput) (*domain.User, *mailer.Message, error) {
	if strings.TrimSpace(in.SenderRef) == "" {
		return nil, nil, ErrSenderMissing
	}
	sender, err := s.users.ResolveSender(ctx, in.SenderRef)
	if err != nil {
		return nil, nil, err
	}
	to := domain.ParseRecipients(in.To)
	if len(to) == 0 {
		return nil, nil, ErrNoRecipients
	}

	body, cacheKey := in.Body, ""
	if strings.TrimSpace(body) == "" && in.TemplateName != "" {
		t, err := s.templates.Lookup(ctx, sender.ID, in.TemplateName)
		if err != nil {
			return nil, nil, err
		}
		body = t.Content
		cacheKey = templateCacheKey(t)
	}

	rendered, err := s.renderer.Render(cacheKey, body, map[string]interface{}{
		"sender":  sender.Username,
		"subject": in.Subject,
		"date":    s.now().Format("2006-01-02"),
	})
	if err != nil {
		return nil, nil, err
	}
	if sig := strings.TrimSpace(in.Signature); sig != "" {
		rendered = rendered + "\n\n" + in.Signature
	}

	return sender, &mailer.Message{
		From:    sender.Username,
		To:      to,
		Cc:      domain.ParseRecipients(in.Cc),
		Bcc:     domain.ParseRecipients(in.Bcc),
		Subject: in.Subject,
		Body:    rendered,
		HTML:    in.HTML,
	}, nil
}

// Send composes and delivers in one step.
func (s *Service) Send(ctx context.Context, in ComposeInput) (*SendReport, error) {
	sender, msg, err := s.Compose(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.Deliver(ctx, sender, msg)
}

// Deliver hands a composed message to the provider once and, on success,
// counts its unique recipients against the sender.
func (s *Service) Deliver(ctx context.Context, sender *domain.User, msg *mailer.Message) (*SendReport, error) {
	unique := domain.UniqueRecipients(msg.To, msg.Cc, msg.Bcc)

	res, err := s.sender.Send(ctx, msg)
	s.metrics.ObserveSend(s.sender.Provider(), err, len(unique))
	if err != nil {
		logger.Error("mail: send failed", "sender", sender.Username, "error", err)
		if !errors.Is(err, domain.ErrMailAPI) && !errors.Is(err, domain.ErrInvalid) {
			err = fmt.Errorf("%w: %v", domain.ErrMailAPI, err)
		}
		return nil, err
	}

	report := &SendReport{
		MessageID:  res.MessageID,
		Provider:   res.Provider,
		SenderID:   sender.ID,
		Recipients: unique,
		Counted:    len(unique),
	}
	if err := s.stats.Increment(ctx, sender.ID, int64(len(unique)), s.now().UTC()); err != nil {
		logger.Error("mail: counter update failed after send", "sender", sender.Username, "count", len(unique), "error", err)
		report.CounterError = err.Error()
	}
	logger.Info("mail: sent", "sender", sender.Username, "recipients", len(unique), "provider", res.Provider)
	return report, nil
}

func templateCacheKey(t *domain.Template) string {
	h := fnv.New64a()
	h.Write([]byte(t.Content))
	return fmt.Sprintf("tpl:%s:%x", t.ID, h.Sum64())
}
