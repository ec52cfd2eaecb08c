package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/notify"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_ExtractorsAddContextValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, logger.Config{Level: "debug"}, logger.DefaultExtractors()...)
	require.NoError(t, err)

	ctx := notify.WithRequestContext(context.Background(), notify.RequestContext{Channel: "b2b", LanguageCode: "de"})
	ctx = logger.WithJob(ctx, logger.JobInfo{Type: "order-shipped", ID: "7", Attempt: 2})

	log.DebugContext(ctx, "processing", slog.String("stage", "render"))

	out := decode(t, &buf)
	assert.Equal(t, "processing", out["msg"])
	assert.Equal(t, "render", out["stage"])
	assert.Equal(t, map[string]any{"channel": "b2b", "language": "de"}, out["request"])
	assert.Equal(t, map[string]any{"type": "order-shipped", "id": "7", "attempt": float64(2)}, out["job"])
}

func TestNew_NoContextValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, logger.Config{}, logger.DefaultExtractors()...)
	require.NoError(t, err)

	log.InfoContext(context.Background(), "idle")

	out := decode(t, &buf)
	assert.NotContains(t, out, "request")
	assert.NotContains(t, out, "job")
}

func TestNew_LevelAndFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.NewWithWriter(&buf, logger.Config{Level: "warn", Format: "text"})
	require.NoError(t, err)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = logger.NewWithWriter(&buf, logger.Config{Level: "loud"})
	require.ErrorIs(t, err, logger.ErrInvalidConfig)

	_, err = logger.NewWithWriter(&buf, logger.Config{Format: "xml"})
	require.ErrorIs(t, err, logger.ErrInvalidConfig)
}

func TestContextHandler_WithAttrsKeepsExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	log := slog.New(logger.NewContextHandler(base, nil, logger.JobExtractor())).
		With(slog.String("component", "processor"))

	log.InfoContext(logger.WithJob(context.Background(), logger.JobInfo{Type: "welcome"}), "sent")

	out := decode(t, &buf)
	assert.Equal(t, "processor", out["component"])
	assert.Equal(t, map[string]any{"type": "welcome"}, out["job"])
}

func TestJobFrom(t *testing.T) {
	t.Parallel()

	_, ok := logger.JobFrom(context.Background())
	assert.False(t, ok)

	job, ok := logger.JobFrom(logger.WithJob(context.Background(), logger.JobInfo{Type: "x", Queue: "email"}))
	require.True(t, ok)
	assert.Equal(t, "email", job.Queue)
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
