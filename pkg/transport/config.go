package transport

import (
	"context"

	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/mailgun"
	"github.com/dmitrymomot/courier/pkg/mailer/postmark"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/mailer/sendmail"
	"github.com/dmitrymomot/courier/pkg/mailer/ses"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
)

// Kind names a transport variant.
type Kind string

const (
	KindSMTP     Kind = "smtp"
	KindSendmail Kind = "sendmail"
	KindFile     Kind = "file"
	KindSES      Kind = "ses"
	KindNone     Kind = "none"
	KindTesting  Kind = "testing"
	KindResend   Kind = "resend"
	KindPostmark Kind = "postmark"
	KindMailgun  Kind = "mailgun"
)

// Config is one of the transport variants declared in this package.
// The set is closed: only types from this package implement it.
type Config interface {
	Kind() Kind
	isTransport()
}

// SMTP delivers through an SMTP server.
type SMTP struct{ smtp.Config }

// Sendmail pipes messages into a local sendmail binary.
type Sendmail struct{ sendmail.Config }

// File writes messages to disk instead of delivering them.
type File struct{ file.Config }

// SES delivers through Amazon SES.
type SES struct{ ses.Config }

// Resend delivers through the Resend API.
type Resend struct{ resend.Config }

// Postmark delivers through the Postmark API.
type Postmark struct{ postmark.Config }

// Mailgun delivers through the Mailgun API.
type Mailgun struct{ mailgun.Config }

// None discards every message.
type None struct{}

// Testing hands every message to OnSend and performs no I/O.
type Testing struct {
	OnSend func(ctx context.Context, email *mailer.Email) error `validate:"required"`
}

func (SMTP) Kind() Kind     { return KindSMTP }
func (Sendmail) Kind() Kind { return KindSendmail }
func (File) Kind() Kind     { return KindFile }
func (SES) Kind() Kind      { return KindSES }
func (Resend) Kind() Kind   { return KindResend }
func (Postmark) Kind() Kind { return KindPostmark }
func (Mailgun) Kind() Kind  { return KindMailgun }
func (None) Kind() Kind     { return KindNone }
func (Testing) Kind() Kind  { return KindTesting }

func (SMTP) isTransport()     {}
func (Sendmail) isTransport() {}
func (File) isTransport()     {}
func (SES) isTransport()      {}
func (Resend) isTransport()   {}
func (Postmark) isTransport() {}
func (Mailgun) isTransport()  {}
func (None) isTransport()     {}
func (Testing) isTransport()  {}

// KindOf returns the kind of cfg, or an empty string for nil.
func KindOf(cfg Config) Kind {
	if cfg == nil {
		return ""
	}
	return cfg.Kind()
}
