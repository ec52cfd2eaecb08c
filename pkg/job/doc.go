// Package job runs courier tasks from a River queue backed by Postgres.
//
// Every task shares one River job kind ("courier:task") whose arguments carry
// the task name and its JSON payload. Tasks satisfy Task[P] structurally:
//
//	func (t *Task) Name() string { return "courier:email" }
//	func (t *Task) Handle(ctx context.Context, job notify.Job) error { ... }
//
// # Setup
//
//	if err := job.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//
//	manager, err := job.NewManager(pool,
//		job.WithTask[notify.Job](processor.NewTask(proc)),
//		job.WithPermanentErrors(processor.IsPermanent),
//		job.WithScheduledTask(job.NewPruneOutbox(outbox, 72*time.Hour, "@hourly", log)),
//		job.WithQueue("email", 10),
//		job.WithLogger(log),
//	)
//
// Errors matched by WithPermanentErrors cancel the job. Any other error is
// retried with River's backoff until the attempt limit (WithMaxAttempts).
// Handlers see the running job through logger.JobFrom, and the job logger
// extractor adds it to every log record.
//
// # Enqueueing
//
//	err := manager.Enqueue(ctx, processor.TaskName, j,
//		job.InQueue("email"),
//		job.Tags(j.Type),
//		job.UniqueKey(j.Type+":"+j.Recipient, time.Hour),
//	)
//
// EnqueueTx inserts within a pgx transaction, so the job only becomes visible
// on commit. A process that never calls Start still enqueues, so publishers
// share the manager type with workers.
//
// # Scheduling
//
// Scheduled tasks take a five-field cron expression or a descriptor such as
// @hourly. With River they run as periodic jobs. Queue drivers without a
// periodic facility use Scheduler, which runs the same tasks in process.
//
// # Health
//
// Healthcheck reports the manager not ready until it is started and while the
// database is unreachable.
package job
