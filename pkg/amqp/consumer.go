package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/notify"
)

// Handler processes one job taken from the queue.
type Handler func(context.Context, notify.Job) error

// ConsumerOption configures Consume.
type ConsumerOption func(*consumer)

// WithPermanentErrors sets the classifier for handler errors that must not be
// requeued. Classified failures are rejected (and dead-lettered when the queue
// has a dead-letter exchange).
func WithPermanentErrors(fn func(error) bool) ConsumerOption {
	return func(c *consumer) {
		c.permanent = fn
	}
}

// WithConsumerLogger overrides the client logger for the consumer.
func WithConsumerLogger(l *slog.Logger) ConsumerOption {
	return func(c *consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

type action int

const (
	actionAck action = iota
	actionRequeue
	actionReject
)

func (a action) String() string {
	switch a {
	case actionAck:
		return "ack"
	case actionRequeue:
		return "requeue"
	default:
		return "reject"
	}
}

// decide maps a processing result to the acknowledgement sent to the broker.
func decide(err error, redelivered bool, policy RequeuePolicy, permanent func(error) bool) action {
	switch {
	case err == nil:
		return actionAck
	case errors.Is(err, ErrInvalidMessage):
		return actionReject
	case permanent != nil && permanent(err):
		return actionReject
	}

	switch policy {
	case RequeueAlways:
		return actionRequeue
	case RequeueOnce:
		if !redelivered {
			return actionRequeue
		}
	}
	return actionReject
}

type consumer struct {
	handler   Handler
	permanent func(error) bool
	logger    *slog.Logger
	queue     string
	policy    RequeuePolicy
}

// Consume processes queued jobs with up to Prefetch concurrent handlers until
// ctx is canceled. In-flight jobs finish before Consume returns. It returns
// ErrClosed when the broker closes the delivery channel first.
func (c *Client) Consume(ctx context.Context, handler Handler, opts ...ConsumerOption) error {
	cons := &consumer{
		handler: handler,
		logger:  c.logger,
		queue:   c.cfg.Queue,
		policy:  c.cfg.Requeue,
	}
	for _, opt := range opts {
		opt(cons)
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: open channel: %w", ErrConsume, err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("%w: qos: %w", ErrConsume, err)
	}

	tag := "courier-" + uuid.NewString()[:8]
	deliveries, err := ch.Consume(c.cfg.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConsume, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(tag, false)
		case <-done:
		}
	}()

	c.logger.InfoContext(ctx, "consuming queue",
		slog.String("queue", c.cfg.Queue),
		slog.Int("prefetch", c.cfg.Prefetch),
	)

	workCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	for range c.cfg.Prefetch {
		g.Go(func() error {
			for d := range deliveries {
				cons.handle(workCtx, d)
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return ErrClosed
}

func (c *consumer) handle(ctx context.Context, d amqp.Delivery) {
	attempt := 1
	if d.Redelivered {
		attempt = 2
	}

	var job notify.Job
	err := json.Unmarshal(d.Body, &job)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	ctx = logger.WithJob(ctx, logger.JobInfo{
		Type:    job.Type,
		ID:      d.MessageId,
		Queue:   c.queue,
		Attempt: attempt,
	})

	if err == nil {
		err = c.handler(ctx, job)
	}

	act := decide(err, d.Redelivered, c.policy, c.permanent)
	var ackErr error
	switch act {
	case actionAck:
		ackErr = d.Ack(false)
	case actionRequeue:
		ackErr = d.Nack(false, true)
	case actionReject:
		ackErr = d.Nack(false, false)
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "job failed",
			slog.String("action", act.String()),
			slog.Any("error", err),
		)
	}
	if ackErr != nil {
		c.logger.ErrorContext(ctx, "acknowledge failed",
			slog.String("action", act.String()),
			slog.Any("error", ackErr),
		)
	}
}
