package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured is returned by Connect when DATABASE_URL is empty.
	ErrNotConfigured = errors.New("db: connection string is not set")
	// ErrFailedToParseDBConfig wraps pgxpool.ParseConfig failures.
	ErrFailedToParseDBConfig = errors.New("db: failed to parse database configuration")
	// ErrFailedToOpenDBConnection is returned after the last failed attempt.
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	// ErrHealthcheckFailed wraps a failed readiness ping.
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
)

// Connect opens a pool and pings it, retrying transient failures.
// A canceled ctx aborts the retries.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*pgxpool.Pool, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	poolConfig.MinConns = min(cfg.MinConns, poolConfig.MaxConns)
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			log.WarnContext(ctx, "database not reachable, retrying",
				slog.Int("attempt", i+1),
				slog.Int("attempts", attempts),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
			case <-time.After(time.Duration(i) * cfg.RetryInterval):
			}
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			lastErr = err
			continue
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			continue
		}
		return pool, nil
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// Healthcheck returns a readiness probe that pings the pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown closes pool, waiting for acquired connections to be released.
//
//	srv := server.New(cfg, server.WithShutdownHook(db.Shutdown(pool)))
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
