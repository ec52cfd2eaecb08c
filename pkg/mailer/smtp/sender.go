package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Sender delivers email over SMTP with go-mail.
type Sender struct {
	config Config
}

// New creates an SMTP sender. A connection is opened per Send.
func New(cfg Config) *Sender {
	return &Sender{config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if email.From == "" && s.config.From != "" {
		e := *email
		e.From = s.config.From
		email = &e
	}

	msg, err := mailer.BuildMessage(email)
	if err != nil {
		return err
	}

	opts, err := s.clientOptions(ctx)
	if err != nil {
		return fmt.Errorf("%w: smtp: %w", mailer.ErrSendFailed, err)
	}
	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: smtp: create client: %w", mailer.ErrSendFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: smtp: %w", mailer.ErrSendFailed, err)
	}
	return nil
}

func (s *Sender) clientOptions(ctx context.Context) ([]mail.Option, error) {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(timeout),
	}

	// Port 465 uses implicit TLS, 587 requires STARTTLS, anything else
	// upgrades when the server offers it.
	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.config.InsecureTLS {
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName:         s.config.Host,
			InsecureSkipVerify: true, //nolint:gosec // opt-in for local relays
		}))
	}
	if s.config.Logging {
		opts = append(opts, mail.WithDebugLog())
	}

	switch {
	case s.config.OAuth2 != nil:
		token, err := s.oauth2Token(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(token),
		)
	case s.config.Username != "":
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}
	return opts, nil
}

func (s *Sender) oauth2Token(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     s.config.OAuth2.ClientID,
		ClientSecret: s.config.OAuth2.ClientSecret,
		TokenURL:     s.config.OAuth2.TokenURL,
		Scopes:       s.config.OAuth2.Scopes,
	}
	token, err := cc.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("oauth2 token: %w", err)
	}
	return token.AccessToken, nil
}
