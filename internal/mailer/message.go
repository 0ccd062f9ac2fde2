package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-mail/mail"
	"github.com/ignite/massmail/internal/domain"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	HTML    bool
}

// Recipients returns every envelope recipient.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Result describes an accepted send.
type Result struct {
	MessageID string
	Provider  string
}

// Sender delivers a message through one provider.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
	Provider() string
}

// Build assembles msg into a go-mail message.
func Build(msg *Message) (*mail.Message, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", domain.ErrInvalid)
	}
	m := mail.NewMessage()
	if msg.From != "" {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}
	return m, nil
}

// Raw renders msg as RFC 5322 bytes. When keepBcc is set the Bcc header is
// included, which APIs that read recipients from headers (Gmail) require.
func Raw(msg *Message, keepBcc bool) ([]byte, error) {
	m, err := Build(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write mime: %w", err)
	}
	raw := buf.Bytes()
	if keepBcc && len(msg.Bcc) > 0 && !hasHeader(raw, "Bcc") {
		raw = append([]byte("Bcc: "+strings.Join(msg.Bcc, ", ")+"\r\n"), raw...)
	}
	return raw, nil
}

func hasHeader(raw []byte, name string) bool {
	head := raw
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		head = raw[:i]
	}
	for _, line := range bytes.Split(head, []byte("\r\n")) {
		if bytes.HasPrefix(bytes.ToLower(line), []byte(strings.ToLower(name)+":")) {
			return true
		}
	}
	return false
}
