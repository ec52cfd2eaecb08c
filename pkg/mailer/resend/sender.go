package resend

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Sender delivers through the Resend API.
type Sender struct {
	client *resend.Client
	from   string
}

// New creates a sender authenticated with cfg.APIKey.
func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey), from: cfg.DefaultFrom()}
}

// NewWithHTTPClient is New with requests issued through hc.
func NewWithHTTPClient(cfg Config, hc *http.Client) *Sender {
	return &Sender{client: resend.NewCustomClient(hc, cfg.APIKey), from: cfg.DefaultFrom()}
}

// Send implements mailer.Sender. The email's tags become Resend tags, so the
// dashboard can filter by email type.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:        cmp.Or(email.From, s.from),
		To:          email.To,
		Cc:          email.CC,
		Bcc:         email.BCC,
		ReplyTo:     email.ReplyTo,
		Subject:     email.Subject,
		Html:        email.HTML,
		Text:        email.Text,
		Headers:     email.Headers,
		Attachments: attachments(email.Attachments),
		Tags:        tags(email.Tags),
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("%w: resend: %w", mailer.ErrSendFailed, err)
	}
	return nil
}

func attachments(in []mailer.Attachment) []*resend.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]*resend.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}
	return out
}

// tags sorts by name for stable requests. Resend accepts ASCII letters,
// digits, underscores and dashes; anything else becomes an underscore.
func tags(in mailer.Tags) []resend.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]resend.Tag, 0, len(in))
	for _, name := range slices.Sorted(maps.Keys(in)) {
		out = append(out, resend.Tag{Name: tagName(name), Value: tagName(tagValue(in[name]))})
	}
	return out
}

func tagName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}

// tagValue formats a tag value; presence-only tags read "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
