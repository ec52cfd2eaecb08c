package sendmail

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// Newline is the line ending the sendmail binary expects on stdin.
type Newline string

const (
	NewlineUnix    Newline = "unix"
	NewlineWindows Newline = "windows"
)

// Config holds sendmail configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Path    string   `env:"PATH" envDefault:"/usr/sbin/sendmail"`
	Newline Newline  `env:"NEWLINE" envDefault:"unix" validate:"omitempty,oneof=unix windows"`
	Args    []string `env:"ARGS"`
}

// Sender pipes messages into a local sendmail binary.
type Sender struct {
	config Config
}

// New creates a sendmail sender.
func New(cfg Config) *Sender {
	if cfg.Path == "" {
		cfg.Path = mail.SendmailPath
	}
	if cfg.Newline == "" {
		cfg.Newline = NewlineUnix
	}
	return &Sender{config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := mailer.BuildMessage(email)
	if err != nil {
		return err
	}

	if s.config.Newline == NewlineWindows {
		if err := msg.WriteToSendmailWithContext(ctx, s.config.Path, s.config.Args...); err != nil {
			return fmt.Errorf("%w: sendmail: %w", mailer.ErrSendFailed, err)
		}
		return nil
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: sendmail: write message: %w", mailer.ErrSendFailed, err)
	}
	raw := bytes.ReplaceAll(buf.Bytes(), []byte("\r\n"), []byte("\n"))

	args := append([]string{"-oi", "-t"}, s.config.Args...)
	cmd := exec.CommandContext(ctx, s.config.Path, args...) //nolint:gosec // path comes from trusted config
	cmd.Stdin = bytes.NewReader(raw)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: sendmail: %w: %s", mailer.ErrSendFailed, err, strings.TrimSpace(string(out)))
	}
	return nil
}
