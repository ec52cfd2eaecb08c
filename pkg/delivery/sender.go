package delivery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/mailgun"
	"github.com/dmitrymomot/courier/pkg/mailer/postmark"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/mailer/sendmail"
	"github.com/dmitrymomot/courier/pkg/mailer/ses"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
	"github.com/dmitrymomot/courier/pkg/transport"
)

var (
	ErrUnsupportedTransport = errors.New("delivery: unsupported transport")
	ErrNoCallback           = errors.New("delivery: testing transport has no callback")
)

// maxClients bounds the API client cache. Dynamic sources that produce many
// distinct credentials reset the cache instead of growing it forever.
const maxClients = 64

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient sets the HTTP client used by API providers (Resend, Postmark, Mailgun).
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Sender) {
		s.httpClient = hc
	}
}

// WithSESClient sets the SES client used for every SES transport.
func WithSESClient(client ses.API) Option {
	return func(s *Sender) {
		s.sesClient = client
	}
}

// Sender delivers emails through the transport given with each call.
// It is safe for concurrent use.
type Sender struct {
	httpClient *http.Client
	sesClient  ses.API
	clients    map[string]mailer.Sender
	mu         sync.Mutex
}

// New creates a Sender.
func New(opts ...Option) *Sender {
	s := &Sender{clients: make(map[string]mailer.Sender)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers email through cfg.
func (s *Sender) Send(ctx context.Context, email *mailer.Email, cfg transport.Config) error {
	switch c := cfg.(type) {
	case transport.None:
		return nil
	case transport.Testing:
		if c.OnSend == nil {
			return ErrNoCallback
		}
		return c.OnSend(ctx, email)
	case transport.File:
		return file.New(c.Config).Send(ctx, email)
	case transport.SMTP:
		return smtp.New(c.Config).Send(ctx, email)
	case transport.Sendmail:
		return sendmail.New(c.Config).Send(ctx, email)
	case transport.SES, transport.Resend, transport.Postmark, transport.Mailgun:
		client, err := s.client(ctx, cfg)
		if err != nil {
			return err
		}
		return client.Send(ctx, email)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTransport, transport.KindOf(cfg))
	}
}

// client returns the cached API client for cfg, creating it on first use.
func (s *Sender) client(ctx context.Context, cfg transport.Config) (mailer.Sender, error) {
	key, err := fingerprint(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[key]; ok {
		return c, nil
	}

	c, err := s.newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(s.clients) >= maxClients {
		clear(s.clients)
	}
	s.clients[key] = c
	return c, nil
}

func (s *Sender) newClient(ctx context.Context, cfg transport.Config) (mailer.Sender, error) {
	switch c := cfg.(type) {
	case transport.SES:
		if s.sesClient != nil {
			return ses.NewWithClient(c.Config, s.sesClient), nil
		}
		return ses.New(ctx, c.Config)
	case transport.Resend:
		if s.httpClient != nil {
			return resend.NewWithHTTPClient(c.Config, s.httpClient), nil
		}
		return resend.New(c.Config), nil
	case transport.Postmark:
		if s.httpClient != nil {
			return postmark.NewWithHTTPClient(c.Config, s.httpClient), nil
		}
		return postmark.New(c.Config), nil
	case transport.Mailgun:
		if s.httpClient != nil {
			return mailgun.NewWithHTTPClient(c.Config, s.httpClient), nil
		}
		return mailgun.New(c.Config), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransport, transport.KindOf(cfg))
	}
}

// fingerprint returns the cache key of cfg: its kind and a hash of its settings.
func fingerprint(cfg transport.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("delivery: fingerprint %s: %w", cfg.Kind(), err)
	}
	sum := sha256.Sum256(data)
	return string(cfg.Kind()) + ":" + hex.EncodeToString(sum[:]), nil
}

// CachedClients returns the number of cached API clients.
func (s *Sender) CachedClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
