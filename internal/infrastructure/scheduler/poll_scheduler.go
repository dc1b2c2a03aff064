package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockwatch/backend/internal/application/poller"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// ---------------------------------------------------------------------------
// Poll Run Types
// ---------------------------------------------------------------------------

// RunStatus represents the outcome of one poll cycle
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// JobRun records one executed poll cycle for monitoring
type JobRun struct {
	JobID       uuid.UUID  `json:"jobId"`
	Event       string     `json:"event"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	EventCount  int        `json:"eventCount"`
	Error       string     `json:"error,omitempty"`
}

// DeliveredEvent is one detected event kept in the bounded history buffer
type DeliveredEvent struct {
	JobID      uuid.UUID       `json:"jobId"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
	DetectedAt time.Time       `json:"detectedAt"`
}

// JobInfo describes one registered polling job
type JobInfo struct {
	Job      poller.Job
	Interval time.Duration
}

// ---------------------------------------------------------------------------
// PollSchedulerConfig
// ---------------------------------------------------------------------------

// PollSchedulerConfig holds configuration for the poll scheduler
type PollSchedulerConfig struct {
	// DefaultInterval is the poll interval for jobs that don't set one
	DefaultInterval time.Duration
	// MinInterval is the lowest interval a job may configure
	MinInterval time.Duration
	// MaxInterval is the highest interval a job may configure
	MaxInterval time.Duration
	// CycleTimeout is the maximum time one poll cycle can run
	CycleTimeout time.Duration
	// MaxHistory bounds the run and event history buffers
	MaxHistory int
}

// DefaultPollSchedulerConfig returns default configuration
func DefaultPollSchedulerConfig() PollSchedulerConfig {
	return PollSchedulerConfig{
		DefaultInterval: 1 * time.Minute,
		MinInterval:     10 * time.Second,
		MaxInterval:     1 * time.Hour,
		CycleTimeout:    2 * time.Minute,
		MaxHistory:      100,
	}
}

// Validate validates the configuration
func (c *PollSchedulerConfig) Validate() error {
	if c.MinInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxInterval < c.MinInterval {
		return ErrInvalidConfig
	}
	if c.DefaultInterval < c.MinInterval || c.DefaultInterval > c.MaxInterval {
		return ErrInvalidConfig
	}
	if c.CycleTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxHistory <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// PollScheduler
// ---------------------------------------------------------------------------

// pollJob is the scheduler's bookkeeping for one registered job. Each job
// owns one goroutine; the select in its run loop guarantees cycles of the
// same job never overlap.
type pollJob struct {
	job      poller.Job
	interval time.Duration
	trigger  chan struct{}
	cancel   context.CancelFunc
}

// PollScheduler drives registered polling jobs on their intervals. Detected
// events go to the configured EventSink and into a bounded in-memory history
// for inspection over the admin API.
type PollScheduler struct {
	config   PollSchedulerConfig
	detector *poller.Detector
	sink     EventSink
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	jobs      map[uuid.UUID]*pollJob

	historyMu sync.RWMutex
	runs      []*JobRun
	events    []*DeliveredEvent
}

// NewPollScheduler creates a new poll scheduler. A nil sink defaults to the
// logging sink.
func NewPollScheduler(config PollSchedulerConfig, detector *poller.Detector, sink EventSink, logger *zap.Logger) (*PollScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NewLoggingSink(logger)
	}

	return &PollScheduler{
		config:   config,
		detector: detector,
		sink:     sink,
		logger:   logger,
		jobs:     make(map[uuid.UUID]*pollJob),
		runs:     make([]*JobRun, 0, config.MaxHistory),
		events:   make([]*DeliveredEvent, 0, config.MaxHistory),
	}, nil
}

// Start starts the run loops of all registered jobs
func (s *PollScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, entry := range s.jobs {
		s.startLoop(entry)
	}

	s.logger.Info("Poll scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.Duration("default_interval", s.config.DefaultInterval),
	)
	return nil
}

// Stop gracefully stops all run loops
func (s *PollScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Poll scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Poll scheduler stop timed out")
		return ctx.Err()
	}
}

// RegisterJob adds a polling job. A non-positive interval takes the default;
// intervals outside the configured bounds are rejected. When the scheduler
// is already running the job's loop starts immediately.
func (s *PollScheduler) RegisterJob(event watch.WatchedEvent, opts poller.Options, interval time.Duration) (poller.Job, error) {
	if interval <= 0 {
		interval = s.config.DefaultInterval
	}
	if interval < s.config.MinInterval || interval > s.config.MaxInterval {
		return poller.Job{}, ErrInvalidInterval
	}

	job, err := poller.NewJob(event, opts)
	if err != nil {
		return poller.Job{}, err
	}

	entry := &pollJob{
		job:      job,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}

	s.mu.Lock()
	s.jobs[job.ID] = entry
	if s.isRunning {
		s.startLoop(entry)
	}
	s.mu.Unlock()

	s.logger.Info("Polling job registered",
		zap.String("job_id", job.ID.String()),
		zap.String("event", event.Name()),
		zap.Duration("interval", interval),
	)
	return job, nil
}

// DeregisterJob stops and removes a polling job. Its checkpoint is left to
// the store owner to clean up.
func (s *PollScheduler) DeregisterJob(jobID uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.jobs[jobID]
	if ok {
		delete(s.jobs, jobID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrJobNotFound
	}
	if entry.cancel != nil {
		entry.cancel()
	}

	s.logger.Info("Polling job deregistered",
		zap.String("job_id", jobID.String()),
		zap.String("event", entry.job.Event.Name()),
	)
	return nil
}

// Jobs returns a snapshot of the registered jobs
func (s *PollScheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, entry := range s.jobs {
		result = append(result, JobInfo{Job: entry.job, Interval: entry.interval})
	}
	return result
}

// GetJob returns one registered job
func (s *PollScheduler) GetJob(jobID uuid.UUID) (JobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[jobID]
	if !ok {
		return JobInfo{}, ErrJobNotFound
	}
	return JobInfo{Job: entry.job, Interval: entry.interval}, nil
}

// TriggerNow requests an immediate poll cycle for a job, without waiting for
// its next tick. A trigger while a cycle is already pending is a no-op.
func (s *PollScheduler) TriggerNow(jobID uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.jobs[jobID]
	running := s.isRunning
	s.mu.Unlock()

	if !ok {
		return ErrJobNotFound
	}
	if !running {
		return ErrSchedulerNotRunning
	}

	select {
	case entry.trigger <- struct{}{}:
	default:
		// A trigger is already queued
	}
	return nil
}

// startLoop launches the run loop goroutine for a job. Caller holds s.mu.
func (s *PollScheduler) startLoop(entry *pollJob) {
	loopCtx, cancel := context.WithCancel(s.ctx)
	entry.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(loopCtx, entry)
}

// runLoop drives one job's poll cycles. Cycles run inline in the loop, so a
// slow cycle delays the next tick instead of overlapping it.
func (s *PollScheduler) runLoop(ctx context.Context, entry *pollJob) {
	defer s.wg.Done()

	s.logger.Debug("Poll loop started",
		zap.String("job_id", entry.job.ID.String()),
		zap.String("event", entry.job.Event.Name()),
	)

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	// First cycle runs immediately to seed the baseline
	s.runCycle(ctx, entry)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Poll loop stopping",
				zap.String("job_id", entry.job.ID.String()),
			)
			return
		case <-ticker.C:
			s.runCycle(ctx, entry)
		case <-entry.trigger:
			s.runCycle(ctx, entry)
		}
	}
}

// runCycle executes one poll cycle and records it in history
func (s *PollScheduler) runCycle(ctx context.Context, entry *pollJob) {
	if ctx.Err() != nil {
		return
	}

	run := &JobRun{
		JobID:     entry.job.ID,
		Event:     entry.job.Event.Name(),
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}

	cycleCtx, cancel := context.WithTimeout(ctx, s.config.CycleTimeout)
	defer cancel()

	events, err := s.detector.Poll(cycleCtx, entry.job)

	now := time.Now()
	run.CompletedAt = &now
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Poll cycle failed",
			zap.String("job_id", entry.job.ID.String()),
			zap.String("event", run.Event),
			zap.Error(err),
		)
		s.addRun(run)
		return
	}

	run.Status = RunStatusSuccess
	run.EventCount = len(events)
	s.addRun(run)

	if len(events) == 0 {
		return
	}

	s.recordEvents(entry.job, events, now)
	if err := s.sink.Deliver(cycleCtx, entry.job, events); err != nil {
		s.logger.Error("Event delivery failed",
			zap.String("job_id", entry.job.ID.String()),
			zap.String("event", run.Event),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// addRun adds a completed run to history, newest first
func (s *PollScheduler) addRun(run *JobRun) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.runs = append([]*JobRun{run}, s.runs...)
	if len(s.runs) > s.config.MaxHistory {
		s.runs = s.runs[:s.config.MaxHistory]
	}
}

// recordEvents adds detected events to the bounded event buffer, newest first
func (s *PollScheduler) recordEvents(job poller.Job, events []watch.Event, at time.Time) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	for i := len(events) - 1; i >= 0; i-- {
		data, err := json.Marshal(events[i].Data)
		if err != nil {
			continue
		}
		s.events = append([]*DeliveredEvent{{
			JobID:      job.ID,
			Event:      events[i].Name,
			Data:       data,
			DetectedAt: at,
		}}, s.events...)
	}
	if len(s.events) > s.config.MaxHistory {
		s.events = s.events[:s.config.MaxHistory]
	}
}

// GetRunHistory returns recent poll cycle runs, newest first
func (s *PollScheduler) GetRunHistory(limit int) []*JobRun {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	result := make([]*JobRun, limit)
	copy(result, s.runs[:limit])
	return result
}

// GetRunHistoryByJob returns recent runs of one job, newest first
func (s *PollScheduler) GetRunHistoryByJob(jobID uuid.UUID, limit int) []*JobRun {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*JobRun, 0, limit)
	for _, run := range s.runs {
		if run.JobID == jobID {
			result = append(result, run)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result
}

// GetRecentEvents returns recently detected events, newest first
func (s *PollScheduler) GetRecentEvents(limit int) []*DeliveredEvent {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	result := make([]*DeliveredEvent, limit)
	copy(result, s.events[:limit])
	return result
}
