package job

import (
	"log/slog"

	"github.com/dmitrymomot/courier/pkg/logger"
)

type config struct {
	tasks       taskSet
	queues      map[string]int
	logger      *slog.Logger
	permanent   func(error) bool
	schedules   []schedule
	maxWorkers  int
	maxAttempts int
}

type schedule struct {
	name string
	expr string
}

func newConfig() *config {
	return &config{
		tasks:      make(taskSet),
		queues:     make(map[string]int),
		logger:     logger.NewNope(),
		maxWorkers: defaultMaxWorkers,
	}
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers task under its name. P cannot be inferred from the
// method set, so name it:
//
//	job.WithTask[notify.Job](processor.NewTask(proc))
func WithTask[P any](task Task[P]) Option {
	return func(c *config) {
		c.tasks[task.Name()] = decoding(task.Handle)
	}
}

// WithScheduledTask registers task and runs it as a River periodic job.
// Schedule returns a five-field cron expression or a descriptor like @hourly.
func WithScheduledTask(task ScheduledTask) Option {
	return func(c *config) {
		c.tasks[task.Name()] = ignoringPayload(task.Handle)
		c.schedules = append(c.schedules, schedule{name: task.Name(), expr: task.Schedule()})
	}
}

// WithQueue adds a named queue with n workers. Jobs reach it through InQueue.
func WithQueue(name string, n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queues[name] = n
		}
	}
}

// WithLogger sets the logger used by the manager and River.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue. Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithMaxAttempts caps attempts per job. Zero keeps River's default.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithPermanentErrors sets the classifier for errors that cancel the job
// instead of scheduling a retry.
//
//	job.WithPermanentErrors(processor.IsPermanent)
func WithPermanentErrors(fn func(error) bool) Option {
	return func(c *config) {
		c.permanent = fn
	}
}

