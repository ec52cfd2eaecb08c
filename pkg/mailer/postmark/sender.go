package postmark

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Config holds Postmark configuration.
type Config struct {
	ServerToken   string `env:"SERVER_TOKEN" validate:"required"`
	AccountToken  string `env:"ACCOUNT_TOKEN"`
	From          string `env:"FROM"`
	MessageStream string `env:"MESSAGE_STREAM" envDefault:"outbound"`
	TrackLinks    string `env:"TRACK_LINKS" envDefault:"HtmlOnly" validate:"omitempty,oneof=None HtmlAndText HtmlOnly TextOnly"`
	TrackOpens    bool   `env:"TRACK_OPENS" envDefault:"true"`
}

// Sender implements mailer.Sender using Postmark's transactional API.
type Sender struct {
	client *postmark.Client
	config Config
}

// New creates a Postmark sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}
}

// NewWithHTTPClient creates a sender that issues requests through hc.
func NewWithHTTPClient(cfg Config, hc *http.Client) *Sender {
	s := New(cfg)
	s.client.HTTPClient = hc
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

	msg := postmark.Email{
		From:          from,
		To:            strings.Join(email.To, ","),
		Cc:            strings.Join(email.CC, ","),
		Bcc:           strings.Join(email.BCC, ","),
		ReplyTo:       email.ReplyTo,
		Subject:       email.Subject,
		HTMLBody:      email.HTML,
		TextBody:      email.Text,
		MessageStream: s.config.MessageStream,
		TrackOpens:    s.config.TrackOpens,
		TrackLinks:    s.config.TrackLinks,
	}
	for name, value := range email.Headers {
		msg.Headers = append(msg.Headers, postmark.Header{Name: name, Value: value})
	}
	for _, a := range email.Attachments {
		att := postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		}
		if a.ContentID != "" {
			att.ContentID = "cid:" + a.ContentID
		}
		msg.Attachments = append(msg.Attachments, att)
	}
	if len(email.Tags) > 0 {
		// Postmark supports a single tag; the rest go to metadata.
		msg.Metadata = make(map[string]string, len(email.Tags))
		for name, value := range email.Tags {
			if msg.Tag == "" || name < msg.Tag {
				msg.Tag = name
			}
			msg.Metadata[name] = fmt.Sprint(value)
		}
	}

	resp, err := s.client.SendEmail(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: postmark: %w", mailer.ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark error %d: %s", mailer.ErrSendFailed, resp.ErrorCode, resp.Message)
	}
	return nil
}
