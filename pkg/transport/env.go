package transport

import (
	"fmt"

	"github.com/dmitrymomot/courier/pkg/mailer/file"
	"github.com/dmitrymomot/courier/pkg/mailer/mailgun"
	"github.com/dmitrymomot/courier/pkg/mailer/postmark"
	"github.com/dmitrymomot/courier/pkg/mailer/resend"
	"github.com/dmitrymomot/courier/pkg/mailer/sendmail"
	"github.com/dmitrymomot/courier/pkg/mailer/ses"
	"github.com/dmitrymomot/courier/pkg/mailer/smtp"
)

// EnvConfig selects and configures a transport from environment variables.
// Embed it in your app config for env parsing with caarlos0/env.
//
//	MAIL_TRANSPORT=smtp
//	SMTP_HOST=smtp.example.com
//	SMTP_USERNAME=...
type EnvConfig struct {
	Kind     Kind            `env:"MAIL_TRANSPORT" envDefault:"none"`
	SMTP     smtp.Config     `envPrefix:"SMTP_"`
	Sendmail sendmail.Config `envPrefix:"SENDMAIL_"`
	File     file.Config     `envPrefix:"FILE_"`
	SES      ses.Config      `envPrefix:"SES_"`
	Resend   resend.Config   `envPrefix:"RESEND_"`
	Postmark postmark.Config `envPrefix:"POSTMARK_"`
	Mailgun  mailgun.Config  `envPrefix:"MAILGUN_"`
}

// Build returns the validated transport selected by Kind.
// The testing transport carries a callback and cannot be built from the environment.
func (c EnvConfig) Build() (Config, error) {
	var cfg Config
	switch c.Kind {
	case KindSMTP:
		s := c.SMTP
		if s.OAuth2 != nil && s.OAuth2.ClientID == "" && s.OAuth2.TokenURL == "" {
			s.OAuth2 = nil
		}
		cfg = SMTP{Config: s}
	case KindSendmail:
		cfg = Sendmail{Config: c.Sendmail}
	case KindFile:
		cfg = File{Config: c.File}
	case KindSES:
		cfg = SES{Config: c.SES}
	case KindResend:
		cfg = Resend{Config: c.Resend}
	case KindPostmark:
		cfg = Postmark{Config: c.Postmark}
	case KindMailgun:
		cfg = Mailgun{Config: c.Mailgun}
	case KindNone, "":
		cfg = None{}
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownKind, c.Kind)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
