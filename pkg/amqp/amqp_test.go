package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/notify"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{URL: "amqp://localhost", Queue: "courier.email", Requeue: RequeueOnce, Prefetch: 4}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no url", mutate: func(c *Config) { c.URL = "" }, wantErr: ErrNotConfigured},
		{name: "no queue", mutate: func(c *Config) { c.Queue = "" }, wantErr: ErrInvalidConfig},
		{name: "unknown policy", mutate: func(c *Config) { c.Requeue = "sometimes" }, wantErr: ErrInvalidConfig},
		{name: "zero prefetch", mutate: func(c *Config) { c.Prefetch = 0 }, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpen_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestQueueArgs(t *testing.T) {
	t.Parallel()

	assert.Nil(t, queueArgs(Config{}))
	assert.Equal(t, amqp.Table{"x-dead-letter-exchange": "courier.dlx"}, queueArgs(Config{DeadLetterExchange: "courier.dlx"}))
}

func TestDecide(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("template not found")
	permanent := func(err error) bool { return errors.Is(err, errPermanent) }

	tests := []struct {
		err         error
		name        string
		policy      RequeuePolicy
		want        action
		redelivered bool
	}{
		{name: "success", policy: RequeueOnce, want: actionAck},
		{name: "invalid message", err: ErrInvalidMessage, policy: RequeueAlways, want: actionReject},
		{name: "permanent", err: errPermanent, policy: RequeueAlways, want: actionReject},
		{name: "transient once first delivery", err: assert.AnError, policy: RequeueOnce, want: actionRequeue},
		{name: "transient once redelivered", err: assert.AnError, policy: RequeueOnce, redelivered: true, want: actionReject},
		{name: "transient always", err: assert.AnError, policy: RequeueAlways, redelivered: true, want: actionRequeue},
		{name: "transient never", err: assert.AnError, policy: RequeueNever, want: actionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decide(tt.err, tt.redelivered, tt.policy, permanent))
		})
	}
}

func TestNewPublishing(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	job := notify.Job{Type: "order-confirmation", Recipient: "jane@example.com", Subject: "Thanks"}

	msg, err := newPublishing(job, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "order-confirmation", msg.Type)
	assert.NotEmpty(t, msg.MessageId)
	assert.Equal(t, now.UTC(), msg.Timestamp)

	var decoded notify.Job
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, job.Recipient, decoded.Recipient)
	assert.Equal(t, job.Subject, decoded.Subject)
}

type ackCall struct {
	op      string
	requeue bool
}

type fakeAcknowledger struct {
	calls []ackCall
	mu    sync.Mutex
}

func (f *fakeAcknowledger) record(c ackCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { return f.record(ackCall{op: "ack"}) }

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	return f.record(ackCall{op: "nack", requeue: requeue})
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.record(ackCall{op: "reject", requeue: requeue})
}

func TestConsumer_Handle(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(notify.Job{Type: "password-reset", Recipient: "jane@example.com"})
	require.NoError(t, err)

	newConsumer := func(handler Handler) *consumer {
		return &consumer{
			handler:   handler,
			logger:    logger.NewNope(),
			queue:     "courier.email",
			policy:    RequeueOnce,
			permanent: func(err error) bool { return errors.Is(err, assert.AnError) },
		}
	}

	t.Run("ack with job info", func(t *testing.T) {
		t.Parallel()

		var (
			got  notify.Job
			info logger.JobInfo
		)
		c := newConsumer(func(ctx context.Context, job notify.Job) error {
			got = job
			info, _ = logger.JobFrom(ctx)
			return nil
		})
		ack := &fakeAcknowledger{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body, MessageId: "m-1"})

		assert.Equal(t, "jane@example.com", got.Recipient)
		assert.Equal(t, logger.JobInfo{Type: "password-reset", ID: "m-1", Queue: "courier.email", Attempt: 1}, info)
		assert.Equal(t, []ackCall{{op: "ack"}}, ack.calls)
	})

	t.Run("invalid body is rejected without calling the handler", func(t *testing.T) {
		t.Parallel()

		called := false
		c := newConsumer(func(context.Context, notify.Job) error {
			called = true
			return nil
		})
		ack := &fakeAcknowledger{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})

		assert.False(t, called)
		assert.Equal(t, []ackCall{{op: "nack", requeue: false}}, ack.calls)
	})

	t.Run("transient error requeues once", func(t *testing.T) {
		t.Parallel()

		c := newConsumer(func(context.Context, notify.Job) error { return errors.New("smtp timeout") })

		first := &fakeAcknowledger{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: first, Body: body})
		assert.Equal(t, []ackCall{{op: "nack", requeue: true}}, first.calls)

		second := &fakeAcknowledger{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: second, Body: body, Redelivered: true})
		assert.Equal(t, []ackCall{{op: "nack", requeue: false}}, second.calls)
	})

	t.Run("permanent error is rejected", func(t *testing.T) {
		t.Parallel()

		c := newConsumer(func(context.Context, notify.Job) error { return assert.AnError })
		ack := &fakeAcknowledger{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body})
		assert.Equal(t, []ackCall{{op: "nack", requeue: false}}, ack.calls)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrClosed)
	assert.NoError(t, (*Client)(nil).Close())
}
