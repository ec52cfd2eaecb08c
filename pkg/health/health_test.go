package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/health"
)

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.ReadinessHandler(health.Checks{"postgres": ok, "redis": ok})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("failing check as json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz?format=json", nil)
		health.ReadinessHandler(health.Checks{"postgres": ok, "redis": failing})(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp health.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, health.StatusHealthy, resp.Checks["postgres"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("accept header selects json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		req.Header.Set("Accept", "application/json")
		health.ReadinessHandler(nil)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("plain text failure", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.ReadinessHandler(health.Checks{"amqp": failing})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	resp := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(20*time.Millisecond))

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, health.StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
}
