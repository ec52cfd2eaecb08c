package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/courier/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures of the db, redis, job and amqp packages.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to check functions.
type Checks map[string]CheckFunc

// Response is the aggregated result of a readiness probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one named check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout bounds the whole probe. Defaults to 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks concurrently under one timeout and aggregates the result.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	resp.Checks = make(map[string]Check, len(checks))

	for name, check := range checks {
		wg.Go(func() {
			start := time.Now()
			err := check(ctx)
			result := Check{Status: StatusHealthy, Duration: time.Since(start).Round(time.Microsecond).String()}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = result
			if err != nil {
				resp.Status = StatusUnhealthy
			}
		})
	}

	wg.Wait()
	return resp
}
