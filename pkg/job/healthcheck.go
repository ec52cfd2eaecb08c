package job

import (
	"context"
	"errors"
	"fmt"
)

// ErrHealthcheckFailed wraps every failed manager readiness check.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

// Healthcheck reports a manager ready once it is started and its database
// answers a ping.
//
//	server.WithReadinessCheck("queue", job.Healthcheck(manager))
func Healthcheck(m *Manager) func(context.Context) error {
	return func(ctx context.Context) error {
		switch {
		case m == nil:
			return fmt.Errorf("%w: no manager", ErrHealthcheckFailed)
		case !m.Started():
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
