package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned for an unknown job name
	ErrJobNotFound = errors.New("job not found")

	// ErrJobRunning is returned when a manual run overlaps a running job
	ErrJobRunning = errors.New("job is already running")

	// ErrJobFailed is returned by RunNow when the job exhausted its attempts
	ErrJobFailed = errors.New("job failed")

	// ErrInvalidJob is returned for a job without name, function or interval
	ErrInvalidJob = errors.New("invalid job definition")

	// ErrDuplicateJob is returned when two jobs share a name
	ErrDuplicateJob = errors.New("duplicate job name")
)

// PanicError wraps a panic raised by a job
type PanicError struct {
	Job   string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job %s panicked: %v", e.Job, e.Value)
}
