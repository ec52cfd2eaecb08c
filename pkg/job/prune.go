package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/mailer/file"
)

// PruneOutboxTaskName is the name of the outbox cleanup task.
const PruneOutboxTaskName = "courier:prune-outbox"

// PruneOutbox is a scheduled task that removes dev outbox files older than
// MaxAge. Register it with WithScheduledTask or a Scheduler.
type PruneOutbox struct {
	outbox   *file.Outbox
	logger   *slog.Logger
	now      func() time.Time
	schedule string
	maxAge   time.Duration
}

// NewPruneOutbox creates the task. schedule is a cron expression.
func NewPruneOutbox(outbox *file.Outbox, maxAge time.Duration, schedule string, log *slog.Logger) *PruneOutbox {
	if log == nil {
		log = logger.NewNope()
	}
	return &PruneOutbox{
		outbox:   outbox,
		logger:   log,
		now:      time.Now,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

func (t *PruneOutbox) Name() string     { return PruneOutboxTaskName }
func (t *PruneOutbox) Schedule() string { return t.schedule }

func (t *PruneOutbox) Handle(ctx context.Context) error {
	removed, err := t.outbox.Prune(t.maxAge, t.now())
	if err != nil {
		return err
	}
	if removed > 0 {
		t.logger.InfoContext(ctx, "outbox pruned",
			slog.Int("removed", removed),
			slog.String("dir", t.outbox.Dir()),
		)
	}
	return nil
}
