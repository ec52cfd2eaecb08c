package job

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	assert.Empty(t, cfg.tasks)
	assert.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.queues)
	assert.Empty(t, cfg.schedules)
	assert.Nil(t, cfg.permanent)
	assert.Equal(t, defaultMaxWorkers, cfg.maxWorkers)
	assert.Zero(t, cfg.maxAttempts)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("WithTask registers by name", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithTask[testPayload](&testTask{name: "courier:email"})(cfg)

		_, ok := cfg.tasks["courier:email"]
		assert.True(t, ok)
	})

	t.Run("WithScheduledTask", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithScheduledTask(&pruneTask{schedule: "@hourly"})(cfg)

		require.Len(t, cfg.schedules, 1)
		assert.Equal(t, schedule{name: "courier:prune", expr: "@hourly"}, cfg.schedules[0])
		_, ok := cfg.tasks["courier:prune"]
		assert.True(t, ok)
	})

	t.Run("WithQueue ignores non-positive workers", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithQueue("email", 10)(cfg)
		WithQueue("zero", 0)(cfg)
		WithQueue("negative", -1)(cfg)

		assert.Equal(t, map[string]int{"email": 10}, cfg.queues)
	})

	t.Run("WithLogger ignores nil", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		l := slog.Default()
		WithLogger(l)(cfg)
		WithLogger(nil)(cfg)

		assert.Same(t, l, cfg.logger)
	})

	t.Run("WithMaxWorkers ignores non-positive", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithMaxWorkers(5)(cfg)
		WithMaxWorkers(0)(cfg)
		WithMaxWorkers(-3)(cfg)

		assert.Equal(t, 5, cfg.maxWorkers)
	})

	t.Run("WithMaxAttempts ignores non-positive", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithMaxAttempts(3)(cfg)
		WithMaxAttempts(0)(cfg)

		assert.Equal(t, 3, cfg.maxAttempts)
	})

	t.Run("WithPermanentErrors", func(t *testing.T) {
		t.Parallel()

		errPermanent := errors.New("permanent")
		cfg := newConfig()
		WithPermanentErrors(func(err error) bool { return errors.Is(err, errPermanent) })(cfg)

		require.NotNil(t, cfg.permanent)
		assert.True(t, cfg.permanent(errPermanent))
		assert.False(t, cfg.permanent(assert.AnError))
	})
}
