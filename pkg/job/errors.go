package job

import "errors"

var (
	// ErrUnknownTask is returned when a job names a task that was never registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload cannot be decoded into the task's type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted    = errors.New("job: already started")
	ErrNotStarted        = errors.New("job: not started")
	ErrPoolRequired      = errors.New("job: pool is required")
	ErrInvalidSchedule   = errors.New("job: invalid cron schedule")
	ErrMigrate           = errors.New("job: failed to migrate queue schema")
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
