package mailer

import (
	"context"
	"fmt"

	"github.com/ignite/massmail/internal/config"
)

// New builds the Sender selected by cfg.Provider. The GmailAuth is returned
// for the gmail provider so the HTTP layer and CLI can run consent; it is
// nil otherwise.
func New(ctx context.Context, cfg config.MailConfig) (Sender, *GmailAuth, error) {
	switch cfg.Provider {
	case "gmail":
		auth, err := NewGmailAuthFromFile(cfg.Gmail.CredentialsFile, cfg.Gmail.RedirectURL,
			NewFileTokenStore(cfg.Gmail.TokenFile))
		if err != nil {
			return nil, nil, err
		}
		return NewGmailSender(auth), auth, nil
	case "ses":
		client, err := NewSESClient(ctx, cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region)
		if err != nil {
			return nil, nil, err
		}
		return NewSESSender(client, cfg.SES.FromDomain), nil, nil
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, nil, fmt.Errorf("smtp provider requires mail.smtp.host")
		}
		return NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.SSL), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
