package courier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/job"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/processor"
)

// Queue carries jobs from Publish to the processor.
// Start begins consuming; publishers that never call Start only enqueue.
type Queue interface {
	Name() string
	Enqueue(ctx context.Context, job notify.Job) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ProcessFunc handles one job.
type ProcessFunc func(ctx context.Context, job notify.Job) error

// inlineQueue processes every job inside Enqueue.
type inlineQueue struct {
	process ProcessFunc
}

// NewInlineQueue returns a queue that runs process synchronously on Enqueue.
func NewInlineQueue(process ProcessFunc) Queue {
	return &inlineQueue{process: process}
}

func (q *inlineQueue) Name() string { return string(QueueInline) }

func (q *inlineQueue) Enqueue(ctx context.Context, job notify.Job) error {
	return q.process(ctx, job)
}

func (q *inlineQueue) Start(context.Context) error { return nil }
func (q *inlineQueue) Stop(context.Context) error  { return nil }

// riverQueue stores jobs in Postgres and works them with a job.Manager.
type riverQueue struct {
	manager *job.Manager
}

// NewRiverQueue returns a queue backed by m. The manager must have the
// processor task registered under processor.TaskName.
func NewRiverQueue(m *job.Manager) Queue {
	return &riverQueue{manager: m}
}

func (q *riverQueue) Name() string { return string(QueueRiver) }

func (q *riverQueue) Enqueue(ctx context.Context, j notify.Job) error {
	if err := q.manager.Enqueue(ctx, processor.TaskName, j, job.Tags(j.Type)); err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	return nil
}

func (q *riverQueue) Start(ctx context.Context) error { return q.manager.Start(ctx) }
func (q *riverQueue) Stop(ctx context.Context) error  { return q.manager.Stop(ctx) }

// amqpQueue publishes jobs to RabbitMQ and consumes them in the background
// once started.
type amqpQueue struct {
	client  *amqp.Client
	process ProcessFunc
	logger  *slog.Logger
	cancel  context.CancelFunc
	done    chan error
	mu      sync.Mutex
}

// NewAMQPQueue returns a queue publishing to client. Start consumes the
// client's queue with process.
func NewAMQPQueue(client *amqp.Client, process ProcessFunc, log *slog.Logger) Queue {
	return &amqpQueue{client: client, process: process, logger: log}
}

func (q *amqpQueue) Name() string { return string(QueueAMQP) }

func (q *amqpQueue) Enqueue(ctx context.Context, j notify.Job) error {
	if err := q.client.Publish(ctx, j); err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	return nil
}

func (q *amqpQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return ErrAlreadyStarted
	}

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel
	q.done = make(chan error, 1)

	go func() {
		err := q.client.Consume(consumeCtx, amqp.Handler(q.process),
			amqp.WithPermanentErrors(processor.IsPermanent),
			amqp.WithConsumerLogger(q.logger),
		)
		if err != nil {
			q.logger.ErrorContext(consumeCtx, "amqp consumer stopped", slog.Any("error", err))
		}
		q.done <- err
	}()
	return nil
}

// Stop cancels consumption and waits for in-flight messages until ctx ends.
func (q *amqpQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.cancel = nil
	q.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
