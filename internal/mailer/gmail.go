package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/httpretry"
	"github.com/ignite/massmail/internal/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrConsentRequired means no usable cached token exists and an operator
// has to complete the OAuth consent flow.
var ErrConsentRequired = fmt.Errorf("%w: gmail consent required", domain.ErrMailAPI)

// GmailAuth owns the OAuth client configuration and the token cache.
type GmailAuth struct {
	cfg   *oauth2.Config
	store TokenStore
	// tokenHTTP retries token endpoint calls; exchanges and refreshes are
	// safe to repeat.
	tokenHTTP *http.Client
}

// NewGmailAuth wraps an OAuth client configuration.
func NewGmailAuth(cfg *oauth2.Config, store TokenStore) *GmailAuth {
	return &GmailAuth{
		cfg:       cfg,
		store:     store,
		tokenHTTP: httpretry.NewTransport(nil, 3, time.Second).Client(30 * time.Second),
	}
}

// tokenContext routes the oauth2 package's token requests through the
// retrying client.
func (a *GmailAuth) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.tokenHTTP)
}

// NewGmailAuthFromFile reads a Google client secrets file (credentials.json).
func NewGmailAuthFromFile(credentialsFile, redirectURL string, store TokenStore) (*GmailAuth, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return NewGmailAuth(cfg, store), nil
}

// AuthCodeURL returns the consent page URL. Offline access with a forced
// prompt guarantees a refresh token.
func (a *GmailAuth) AuthCodeURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades a consent code for a token and caches it.
func (a *GmailAuth) Exchange(ctx context.Context, code string) error {
	tok, err := a.cfg.Exchange(a.tokenContext(ctx), code)
	if err != nil {
		return fmt.Errorf("%w: exchange code: %v", domain.ErrMailAPI, err)
	}
	if err := a.store.Save(tok); err != nil {
		return err
	}
	logger.Info("gmail: token stored")
	return nil
}

// Connected reports whether a usable cached token exists.
func (a *GmailAuth) Connected() bool {
	tok, err := a.store.Load()
	return err == nil && (tok.Valid() || tok.RefreshToken != "")
}

// Client returns an HTTP client that refreshes the cached token as needed and
// writes refreshed tokens back to the store.
func (a *GmailAuth) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.store.Load()
	if errors.Is(err, ErrNoToken) {
		return nil, ErrConsentRequired
	}
	if err != nil {
		return nil, err
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, ErrConsentRequired
	}
	src := &persistingSource{base: a.cfg.TokenSource(a.tokenContext(ctx), tok), store: a.store, last: tok.AccessToken}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

type persistingSource struct {
	base  oauth2.TokenSource
	store TokenStore
	last  string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.Save(tok); err != nil {
			logger.Warn("gmail: could not persist refreshed token", "error", err)
		}
	}
	return tok, nil
}

// GmailSender sends through users.messages.send as the authorised account.
type GmailSender struct {
	auth     *GmailAuth
	endpoint string
}

// NewGmailSender creates a Gmail API sender.
func NewGmailSender(auth *GmailAuth) *GmailSender {
	return &GmailSender{auth: auth}
}

// WithEndpoint points the sender at another API base URL (tests, proxies).
func (g *GmailSender) WithEndpoint(url string) *GmailSender {
	g.endpoint = url
	return g
}

// Provider implements Sender.
func (g *GmailSender) Provider() string { return "gmail" }

// Send implements Sender.
func (g *GmailSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	raw, err := Raw(msg, true)
	if err != nil {
		return nil, err
	}
	client, err := g.auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gmail client: %v", domain.ErrMailAPI, err)
	}

	sent, err := svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: gmail send: %v", domain.ErrMailAPI, err)
	}
	logger.Info("gmail: sent", "id", sent.Id, "to", msg.To)
	return &Result{MessageID: sent.Id, Provider: g.Provider()}, nil
}
