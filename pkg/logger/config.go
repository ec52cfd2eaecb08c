package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects the log level, output format and optional Sentry reporting.
type Config struct {
	Level  string       `env:"LOG_LEVEL" envDefault:"info"`
	Format string       `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig `envPrefix:"SENTRY_"`
}

// level parses Level. An empty value is info.
func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: level %q", ErrInvalidConfig, c.Level)
	}
	return lvl, nil
}

func (c Config) validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, c.Format)
	}
}
