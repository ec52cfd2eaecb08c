package job

import "errors"

var (
	// ErrUnknownTask is returned by Enqueue for a name no option registered.
	// Workers cancel jobs whose task is unknown instead of retrying them.
	ErrUnknownTask = errors.New("job: unknown task")
	// ErrInvalidPayload is returned when a payload does not encode or decode.
	ErrInvalidPayload = errors.New("job: invalid payload")
	// ErrInvalidSchedule is returned for a cron expression the parser rejects.
	ErrInvalidSchedule = errors.New("job: invalid cron schedule")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")

	// ErrMigrationFailed wraps a failed River schema migration.
	ErrMigrationFailed = errors.New("job: migration failed")
)
