package amqp_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/amqp"
	"github.com/dmitrymomot/courier/pkg/notify"
)

func TestIntegration_PublishConsume(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := amqp.Open(ctx, amqp.Config{
		URL:           url,
		Queue:         "courier.test." + uuid.NewString()[:8],
		Requeue:       amqp.RequeueNever,
		Prefetch:      2,
		RetryAttempts: 1,
	}, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, amqp.Healthcheck(client)(ctx))
	require.NoError(t, client.Publish(ctx, notify.Job{Type: "order-shipped", Recipient: "jane@example.com"}))

	consumeCtx, stop := context.WithCancel(ctx)
	received := make(chan notify.Job, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Consume(consumeCtx, func(_ context.Context, job notify.Job) error {
			received <- job
			return nil
		})
	}()

	select {
	case job := <-received:
		assert.Equal(t, "order-shipped", job.Type)
		assert.Equal(t, "jane@example.com", job.Recipient)
	case <-ctx.Done():
		t.Fatal("job was not consumed")
	}

	stop()
	assert.NoError(t, <-errCh)
}
