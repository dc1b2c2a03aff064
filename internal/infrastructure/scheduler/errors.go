package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when interacting with a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInterval is returned when a job's poll interval is outside the
	// configured bounds
	ErrInvalidInterval = errors.New("poll interval outside configured bounds")
)
