package mailgun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Config holds Mailgun configuration.
type Config struct {
	Domain  string        `env:"DOMAIN" validate:"required"`
	APIKey  string        `env:"API_KEY" validate:"required"`
	From    string        `env:"FROM"`
	APIBase string        `env:"API_BASE" validate:"omitempty,url"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sender implements mailer.Sender using the Mailgun messages API.
type Sender struct {
	client *mg.MailgunImpl
	config Config
}

// New creates a Mailgun sender.
func New(cfg Config) *Sender {
	client := mg.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		client.SetAPIBase(cfg.APIBase)
	}
	return &Sender{client: client, config: cfg}
}

// NewWithHTTPClient creates a sender that issues requests through hc.
func NewWithHTTPClient(cfg Config, hc *http.Client) *Sender {
	s := New(cfg)
	s.client.SetClient(hc)
	return s
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	from := email.From
	if from == "" {
		from = s.config.From
	}

	msg := s.client.NewMessage(from, email.Subject, email.Text, email.To...)
	if email.HTML != "" {
		msg.SetHtml(email.HTML)
	}
	for _, cc := range email.CC {
		msg.AddCC(cc)
	}
	for _, bcc := range email.BCC {
		msg.AddBCC(bcc)
	}
	if email.ReplyTo != "" {
		msg.SetReplyTo(email.ReplyTo)
	}
	for name, value := range email.Headers {
		msg.AddHeader(name, value)
	}
	for _, a := range email.Attachments {
		if a.ContentID != "" {
			msg.AddReaderInline(a.ContentID, io.NopCloser(bytes.NewReader(a.Content)))
			continue
		}
		msg.AddBufferAttachment(a.Filename, a.Content)
	}
	for name := range email.Tags {
		if err := msg.AddTag(name); err != nil {
			return fmt.Errorf("%w: mailgun: %w", mailer.ErrSendFailed, err)
		}
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	if _, _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: mailgun: %w", mailer.ErrSendFailed, err)
	}
	return nil
}
