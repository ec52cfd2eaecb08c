package redis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrEmptyConnectionURL is returned by Open when REDIS_URL is not set.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	// ErrFailedToParseURL is returned for URLs that are not redis:// or rediss://.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")
	// ErrConnectionFailed is returned when no ping succeeded within the retries.
	ErrConnectionFailed = errors.New("redis: failed to establish connection")
	// ErrHealthcheckFailed wraps a failed readiness ping.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)

// Healthcheck pings client. The worker registers it as the "redis" readiness
// check when the template cache runs on Redis.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return fmt.Errorf("%w: no client", ErrHealthcheckFailed)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown closes client. Closing an already closed client is not an error.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return fmt.Errorf("redis: close: %w", err)
		}
		return nil
	}
}
