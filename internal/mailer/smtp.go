package mailer

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-mail/mail"
	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// SMTPSender relays through an SMTP server.
type SMTPSender struct {
	dialer *mail.Dialer
}

// NewSMTPSender creates a relay sender. With ssl unset go-mail negotiates
// STARTTLS when the server offers it.
func NewSMTPSender(host string, port int, username, password string, ssl bool) *SMTPSender {
	d := mail.NewDialer(host, port, username, password)
	d.SSL = ssl
	d.TLSConfig = &tls.Config{ServerName: host}
	return &SMTPSender{dialer: d}
}

// Provider implements Sender.
func (s *SMTPSender) Provider() string { return "smtp" }

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	m, err := Build(msg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("%w: smtp send: %v", domain.ErrMailAPI, err)
	}
	logger.Info("smtp: sent", "to", msg.To)
	return &Result{Provider: s.Provider()}, nil
}
