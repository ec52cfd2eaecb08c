package job

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Task is a named handler for payloads of type P. Processors and other
// packages satisfy it structurally; no import of this package is needed.
type Task[P any] interface {
	Name() string
	Handle(ctx context.Context, payload P) error
}

// ScheduledTask runs on a cron schedule without a payload.
type ScheduledTask interface {
	Name() string
	Schedule() string
	Handle(ctx context.Context) error
}

// handlerFunc runs a task with its encoded payload.
type handlerFunc func(ctx context.Context, payload json.RawMessage) error

// taskSet maps task names to handlers. Options fill it before the manager is
// built; it is read-only afterwards.
type taskSet map[string]handlerFunc

func (s taskSet) names() []string {
	return slices.Sorted(maps.Keys(s))
}

// decoding adapts a typed handler: the payload is decoded into P first, and
// an empty payload leaves P at its zero value.
func decoding[P any](handle func(context.Context, P) error) handlerFunc {
	return func(ctx context.Context, raw json.RawMessage) error {
		var payload P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}
		return handle(ctx, payload)
	}
}

// ignoringPayload adapts a scheduled handler.
func ignoringPayload(handle func(context.Context) error) handlerFunc {
	return func(ctx context.Context, _ json.RawMessage) error {
		return handle(ctx)
	}
}
