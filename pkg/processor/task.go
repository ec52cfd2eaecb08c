package processor

import (
	"context"

	"github.com/dmitrymomot/courier/pkg/notify"
)

// TaskName is the queue task name under which email jobs are enqueued.
const TaskName = "courier:email"

// Task adapts a Processor to the job queue: job.WithTask(processor.NewTask(p)).
type Task struct {
	processor *Processor
}

// NewTask wraps p.
func NewTask(p *Processor) *Task {
	return &Task{processor: p}
}

// Name implements the queue task contract.
func (t *Task) Name() string {
	return TaskName
}

// Handle implements the queue task contract.
func (t *Task) Handle(ctx context.Context, job notify.Job) error {
	return t.processor.Process(ctx, job)
}
