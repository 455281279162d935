package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc runs one sweep and returns how many records it changed
type JobFunc func(ctx context.Context) (int, error)

// Job is a periodic background sweep
type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

// JobRun describes the latest run of a job
type JobRun struct {
	ID          uuid.UUID  `json:"id"`
	Job         string     `json:"job"`
	Status      JobStatus  `json:"status"`
	Processed   int        `json:"processed"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Observer is told how many records each successful run changed
type Observer interface {
	SweepCompleted(ctx context.Context, job string, processed int)
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// RunOnStart runs every job once right after Start
	RunOnStart bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    30 * time.Second,
	}
}

type jobState struct {
	job     Job
	mu      sync.Mutex
	running bool
	last    JobRun
}

// Scheduler runs each registered job on its own ticker. A job never overlaps
// with itself; a tick that arrives while the job still runs is skipped.
type Scheduler struct {
	config   Config
	logger   *zap.Logger
	observer Observer

	jobs  map[string]*jobState
	order []string

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler for jobs
func New(config Config, logger *zap.Logger, jobs ...Job) (*Scheduler, error) {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	s := &Scheduler{
		config: config,
		logger: logger,
		jobs:   make(map[string]*jobState, len(jobs)),
	}
	for _, j := range jobs {
		if j.Name == "" || j.Run == nil || j.Interval <= 0 {
			return nil, ErrInvalidJob
		}
		if _, dup := s.jobs[j.Name]; dup {
			return nil, ErrDuplicateJob
		}
		s.jobs[j.Name] = &jobState{job: j, last: JobRun{Job: j.Name, Status: JobStatusIdle}}
		s.order = append(s.order, j.Name)
	}
	return s, nil
}

// WithObserver attaches an observer (metrics) to the scheduler
func (s *Scheduler) WithObserver(o Observer) *Scheduler {
	s.observer = o
	return s
}

// Start launches the job loops
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, name := range s.order {
		st := s.jobs[name]
		s.wg.Add(1)
		go s.loop(ctx, st)
	}

	s.logger.Info("Scheduler started", zap.Strings("jobs", s.order))
	return nil
}

// Stop cancels the loops and waits for running jobs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a job synchronously
func (s *Scheduler) RunNow(ctx context.Context, name string) (JobRun, error) {
	st, ok := s.jobs[name]
	if !ok {
		return JobRun{}, ErrJobNotFound
	}
	if !s.execute(ctx, st) {
		return st.snapshot(), ErrJobRunning
	}
	run := st.snapshot()
	if run.Status == JobStatusFailed {
		return run, ErrJobFailed
	}
	return run, nil
}

// Runs returns the latest run of every job in registration order
func (s *Scheduler) Runs() []JobRun {
	runs := make([]JobRun, 0, len(s.order))
	for _, name := range s.order {
		runs = append(runs, s.jobs[name].snapshot())
	}
	return runs
}

func (s *Scheduler) loop(ctx context.Context, st *jobState) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx, st)
	}

	ticker := time.NewTicker(st.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, st)
		}
	}
}

// execute runs the job with retries. It returns false when the job was
// already running.
func (s *Scheduler) execute(ctx context.Context, st *jobState) bool {
	st.mu.Lock()
	if st.running {
		st.mu.Unlock()
		s.logger.Debug("Job still running, skipping tick", zap.String("job", st.job.Name))
		return false
	}
	st.running = true
	started := time.Now()
	st.last = JobRun{ID: uuid.New(), Job: st.job.Name, Status: JobStatusRunning, StartedAt: &started}
	st.mu.Unlock()

	var (
		processed int
		err       error
		attempts  int
	)
	for attempts = 1; attempts <= s.config.RetryAttempts+1; attempts++ {
		processed, err = s.attempt(ctx, st.job)
		if err == nil || ctx.Err() != nil || attempts > s.config.RetryAttempts {
			break
		}
		s.logger.Warn("Job failed, retrying",
			zap.String("job", st.job.Name),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
		case <-time.After(s.config.RetryDelay):
		}
	}

	completed := time.Now()
	st.mu.Lock()
	st.running = false
	st.last.Processed = processed
	st.last.Attempts = min(attempts, s.config.RetryAttempts+1)
	st.last.CompletedAt = &completed
	if err != nil {
		st.last.Status = JobStatusFailed
		st.last.Error = err.Error()
	} else {
		st.last.Status = JobStatusSuccess
	}
	st.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", st.job.Name),
			zap.Duration("duration", completed.Sub(started)),
			zap.Error(err),
		)
		return true
	}
	if s.observer != nil {
		s.observer.SweepCompleted(ctx, st.job.Name, processed)
	}
	s.logger.Debug("Job completed",
		zap.String("job", st.job.Name),
		zap.Int("processed", processed),
		zap.Duration("duration", completed.Sub(started)),
	)
	return true
}

func (s *Scheduler) attempt(ctx context.Context, job Job) (processed int, err error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Job: job.Name, Value: r}
		}
	}()
	return job.Run(jobCtx)
}

func (st *jobState) snapshot() JobRun {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.last
}
