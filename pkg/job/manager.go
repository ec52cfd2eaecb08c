package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/courier/pkg/logger"
)

const defaultMaxWorkers = 100

// Manager inserts and works courier tasks through River.
type Manager struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	tasks  taskSet
	logger *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates a manager over pool. The River client exists from the
// start, so a process that never calls Start still enqueues.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	periodic, err := periodicJobs(cfg.schedules)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{
		tasks:     cfg.tasks,
		logger:    cfg.logger,
		permanent: cfg.permanent,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
		MaxAttempts:  cfg.maxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		pool:   pool,
		client: client,
		tasks:  cfg.tasks,
		logger: cfg.logger,
	}, nil
}

func periodicJobs(schedules []schedule) ([]*river.PeriodicJob, error) {
	jobs := make([]*river.PeriodicJob, 0, len(schedules))
	for _, s := range schedules {
		next, err := parseCronSchedule(s.expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, s.expr, err)
		}
		name := s.name
		jobs = append(jobs, river.NewPeriodicJob(next,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			nil,
		))
	}
	return jobs, nil
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}
	m.started = true
	m.logger.Info("job manager started", slog.Any("tasks", m.tasks.names()))
	return nil
}

// Stop waits for running jobs until ctx is done.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}
	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// Started reports whether Start succeeded and Stop has not run since.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Enqueue inserts a job for the registered task name.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insert, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	res, err := m.client.Insert(ctx, args, insert)
	if err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	if res.UniqueSkippedAsDuplicate {
		m.logger.DebugContext(ctx, "duplicate job skipped",
			slog.String("task", name),
			slog.String("unique_key", args.UniqueKey),
		)
	}
	return nil
}

// EnqueueTx inserts within tx; the job becomes visible when tx commits.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insert, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.InsertTx(ctx, tx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

func (m *Manager) prepare(name string, payload any, opts []EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	if _, ok := m.tasks[name]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return newInsert(name, payload, opts...)
}

// taskArgs is the single River job kind. Uniqueness considers the task name
// and the unique key only, never the payload.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "courier:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	tasks     taskSet
	logger    *slog.Logger
	permanent func(error) bool
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	handle, ok := w.tasks[job.Args.TaskName]
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName))
	}

	ctx = logger.WithJob(ctx, logger.JobInfo{
		Type:    job.Args.TaskName,
		ID:      strconv.FormatInt(job.ID, 10),
		Queue:   job.Queue,
		Attempt: job.Attempt,
	})

	err := handle(ctx, job.Args.Payload)
	if err == nil {
		w.logger.DebugContext(ctx, "task completed")
		return nil
	}

	permanent := w.permanent != nil && w.permanent(err)
	w.logger.ErrorContext(ctx, "task failed",
		slog.Bool("permanent", permanent),
		slog.Any("error", err),
	)
	if permanent {
		return river.JobCancel(err)
	}
	return err
}

// cronParser accepts five-field expressions and descriptors like @hourly.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// cronSchedule satisfies river.PeriodicSchedule through the embedded Next.
type cronSchedule struct {
	cron.Schedule
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{s}, nil
}
