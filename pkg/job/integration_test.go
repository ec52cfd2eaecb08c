package job_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/job"
)

type countTask struct {
	done  chan struct{}
	calls atomic.Int32
}

type countPayload struct {
	Recipient string `json:"recipient"`
}

func (t *countTask) Name() string { return "test:count" }

func (t *countTask) Handle(context.Context, countPayload) error {
	if t.calls.Add(1) == 1 {
		close(t.done)
	}
	return nil
}

func TestIntegration_Manager(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, db.Config{ConnectionString: dsn, RetryAttempts: 1, MaxOpenConns: 4, MinConns: 1}, nil)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, job.Migrate(ctx, pool, nil))

	task := &countTask{done: make(chan struct{})}
	manager, err := job.NewManager(pool,
		job.WithTask[countPayload](task),
		job.WithMaxWorkers(2),
		job.WithPermanentErrors(func(err error) bool { return errors.Is(err, job.ErrInvalidPayload) }),
	)
	require.NoError(t, err)

	err = manager.Enqueue(ctx, "test:missing", nil)
	require.ErrorIs(t, err, job.ErrUnknownTask)

	require.NoError(t, manager.Enqueue(ctx, task.Name(), countPayload{Recipient: "jane@example.com"}))
	require.NoError(t, manager.Start(ctx))
	assert.NoError(t, job.Healthcheck(manager)(ctx))

	select {
	case <-task.done:
	case <-ctx.Done():
		t.Fatal("task was not processed")
	}

	require.NoError(t, manager.Stop(ctx))
	assert.ErrorIs(t, manager.Stop(ctx), job.ErrNotStarted)
}
