package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
// Error records create Sentry issues; MinLevel selects which records are kept
// as Sentry logs for context.
type SentryConfig struct {
	DSN         string     `env:"DSN"`
	Environment string     `env:"ENVIRONMENT" envDefault:"production"`
	Release     string     `env:"RELEASE"`
	MinLevel    slog.Level `env:"MIN_LEVEL" envDefault:"WARN"`
}

// newSentryHandler initializes the Sentry SDK. Without a DSN, or when the SDK
// fails to start, it reports false and logging stays local.
func newSentryHandler(cfg SentryConfig, fallback *slog.Logger) (slog.Handler, bool) {
	if cfg.DSN == "" {
		return nil, false
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		fallback.Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return nil, false
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), true
}
