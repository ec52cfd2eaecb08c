package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection used by the shared template cache.
// An empty URL disables Redis.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxActiveTime time.Duration `env:"REDIS_MAX_ACTIVE_TIME" envDefault:"30m"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether a URL is set.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// clientOptions parses the URL and applies the pool settings.
// Only redis:// and rediss:// (TLS) URLs are accepted.
func (c Config) clientOptions() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	opts.MinIdleConns = c.MinIdleConns
	opts.ConnMaxIdleTime = c.MaxIdleTime
	opts.ConnMaxLifetime = c.MaxActiveTime
	if c.ReadTimeout > 0 {
		opts.ReadTimeout = c.ReadTimeout
	}
	if c.WriteTimeout > 0 {
		opts.WriteTimeout = c.WriteTimeout
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	return opts, nil
}

// Open creates a client and pings it, retrying with linear backoff.
//
// Example:
//
//	client, err := redis.Open(ctx, cfg.Redis, log)
//	if err != nil {
//		return err
//	}
//	cache := templatestore.NewRedisCache(client, "courier:templates")
func Open(ctx context.Context, cfg Config, log *slog.Logger) (redis.UniversalClient, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		log.WarnContext(ctx, "redis not reachable, retrying",
			slog.Int("attempt", i+1),
			slog.Int("attempts", attempts),
			slog.String("error", lastErr.Error()),
		)
		if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
