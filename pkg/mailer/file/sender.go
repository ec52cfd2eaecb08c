package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

const (
	ExtJSON = ".json"
	ExtRaw  = ".eml"
)

// Config holds file transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	OutputPath string `env:"OUTPUT_PATH" envDefault:"./var/mail" validate:"required"`
	Raw        bool   `env:"RAW"`
}

// Record is the structured form written when Raw is false.
type Record struct {
	Date        time.Time `json:"date"`
	From        string    `json:"from"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Text        string    `json:"text,omitempty"`
	CC          string    `json:"cc,omitempty"`
	BCC         string    `json:"bcc,omitempty"`
	ReplyTo     string    `json:"replyTo,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
}

// Sender writes every email to a file instead of delivering it.
type Sender struct {
	now    func() time.Time
	config Config
}

// New creates a file sender.
func New(cfg Config) *Sender {
	return &Sender{config: cfg, now: time.Now}
}

// Send implements mailer.Sender. The output directory is created on demand.
func (s *Sender) Send(_ context.Context, email *mailer.Email) error {
	if err := email.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.config.OutputPath, 0o755); err != nil {
		return fmt.Errorf("%w: file: create directory: %w", mailer.ErrSendFailed, err)
	}

	now := s.now()
	var (
		data []byte
		ext  string
		err  error
	)
	if s.config.Raw {
		ext = ExtRaw
		data, err = mailer.RawMessage(email)
	} else {
		ext = ExtJSON
		data, err = json.MarshalIndent(newRecord(email, now), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("%w: file: encode: %w", mailer.ErrSendFailed, err)
	}

	path := filepath.Join(s.config.OutputPath, filename(now, email, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // dev outbox is meant to be readable
		return fmt.Errorf("%w: file: write: %w", mailer.ErrSendFailed, err)
	}
	return nil
}

func newRecord(email *mailer.Email, now time.Time) Record {
	r := Record{
		Date:      now.UTC(),
		From:      email.From,
		Recipient: strings.Join(email.To, ", "),
		Subject:   email.Subject,
		Body:      email.HTML,
		Text:      email.Text,
		CC:        strings.Join(email.CC, ", "),
		BCC:       strings.Join(email.BCC, ", "),
		ReplyTo:   email.ReplyTo,
	}
	for _, a := range email.Attachments {
		r.Attachments = append(r.Attachments, a.Filename)
	}
	return r
}

// sanitizeRegex matches characters that are not alphanumeric, dash, underscore, or dot.
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func filename(now time.Time, email *mailer.Email, ext string) string {
	recipient := ""
	if len(email.To) > 0 {
		recipient = email.To[0]
	}
	return fmt.Sprintf("%s_%s_%s_%s%s",
		now.UTC().Format("20060102T150405.000"),
		sanitize(recipient, 60),
		sanitize(email.Subject, 60),
		uuid.NewString()[:8],
		ext,
	)
}

func sanitize(s string, maxLen int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
