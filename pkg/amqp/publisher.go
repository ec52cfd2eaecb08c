package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dmitrymomot/courier/pkg/notify"
)

// Publish sends job to the queue as a persistent JSON message.
func (c *Client) Publish(ctx context.Context, job notify.Job) error {
	msg, err := newPublishing(job, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil || c.ch.IsClosed() {
		return ErrClosed
	}
	if err := c.ch.PublishWithContext(ctx, "", c.cfg.Queue, false, false, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}

func newPublishing(job notify.Job, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("%w: encode job %s: %w", ErrPublish, job.Type, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now.UTC(),
		Type:         job.Type,
		Body:         body,
	}, nil
}
