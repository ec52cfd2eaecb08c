package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// New builds a logger from cfg writing to stdout. With a Sentry DSN configured,
// records are also sent to Sentry; see SentryConfig.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with a custom output.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lvl, _ := cfg.level()

	opts := &slog.HandlerOptions{Level: lvl}
	var base slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	handler := base
	if sentryHandler, ok := newSentryHandler(cfg.Sentry, slog.New(base)); ok {
		handler = fanout{base, sentryHandler}
	}
	return slog.New(NewContextHandler(handler, extractors...)), nil
}

// Shutdown returns a shutdown hook that flushes buffered Sentry events.
// It is a no-op when Sentry is not initialized.
func Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		timeout := 2 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = min(timeout, time.Until(deadline))
		}
		sentry.Flush(timeout)
		return nil
	}
}
