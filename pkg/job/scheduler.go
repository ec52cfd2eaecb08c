package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/courier/pkg/logger"
)

// Scheduler runs scheduled tasks in process with robfig/cron.
// It serves queue drivers that have no periodic jobs of their own.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	names  []string
	mu     sync.Mutex
}

// NewScheduler creates an idle scheduler.
func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNope()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers task under its cron schedule.
func (s *Scheduler) Add(task ScheduledTask) error {
	name := task.Name()
	_, err := s.cron.AddFunc(task.Schedule(), func() {
		ctx := logger.WithJob(s.ctx, logger.JobInfo{Type: name, Queue: "scheduler"})
		if err := task.Handle(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled task failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, task.Schedule(), err)
	}

	s.mu.Lock()
	s.names = append(s.names, name)
	s.mu.Unlock()
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start(context.Context) error {
	s.cron.Start()
	s.mu.Lock()
	s.logger.Info("scheduler started", slog.Any("tasks", s.names))
	s.mu.Unlock()
	return nil
}

// Stop stops scheduling and waits for running tasks or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
