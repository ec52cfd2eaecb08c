package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dmitrymomot/courier/pkg/logger"
)

// Client holds one broker connection and a publishing channel on the
// declared durable queue.
type Client struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
	cfg    Config
	mu     sync.Mutex
}

// Open dials the broker, retrying transient failures, and declares the queue.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNope()
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			log.WarnContext(ctx, "broker not reachable, retrying",
				slog.Int("attempt", i+1),
				slog.Int("attempts", attempts),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrConnect, ctx.Err())
			case <-time.After(time.Duration(i) * cfg.RetryInterval):
			}
		}

		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			lastErr = err
			continue
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			lastErr = err
			continue
		}
		if err := declare(ch, cfg); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, errors.Join(ErrConnect, err)
		}
		return &Client{conn: conn, ch: ch, logger: log, cfg: cfg}, nil
	}

	return nil, errors.Join(ErrConnect, lastErr)
}

func declare(ch *amqp.Channel, cfg Config) error {
	_, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, queueArgs(cfg))
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	return nil
}

func queueArgs(cfg Config) amqp.Table {
	if cfg.DeadLetterExchange == "" {
		return nil
	}
	return amqp.Table{"x-dead-letter-exchange": cfg.DeadLetterExchange}
}

// Queue returns the declared queue name.
func (c *Client) Queue() string {
	return c.cfg.Queue
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.ch != nil {
		if err := c.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Shutdown returns a shutdown hook closing the client.
func (c *Client) Shutdown() func(context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}

// Healthcheck returns a readiness probe that fails once the connection is closed.
func Healthcheck(c *Client) func(context.Context) error {
	return func(context.Context) error {
		if c == nil || c.conn == nil || c.conn.IsClosed() {
			return ErrClosed
		}
		return nil
	}
}
