// Package scheduler runs named maintenance jobs at fixed intervals, such as
// rolling float prices and flushing trade limit counters.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is one run of a job
type JobFunc func(ctx context.Context) error

// JobStatus reports how a job has been doing
type JobStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
}

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	status   JobStatus
}

// Scheduler runs jobs on their own tickers until stopped
type Scheduler struct {
	logger *zap.Logger

	mu        sync.Mutex
	jobs      map[string]*job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// New creates a scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger.Named("scheduler"),
		jobs:   make(map[string]*job),
	}
}

// Every registers a job running fn every interval. Jobs must be added before Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) error {
	if name == "" || fn == nil || interval <= 0 {
		return fmt.Errorf("%w: %q every %s", ErrInvalidJob, name, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	s.jobs[name] = &job{
		name:     name,
		interval: interval,
		fn:       fn,
		status:   JobStatus{Name: name, Interval: interval},
	}
	return nil
}

// Start launches every job loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, j)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels the job loops and waits for running jobs, or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, j)
		}
	}
}

// RunNow runs a job once outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidJob, name)
	}
	return s.run(ctx, j)
}

func (s *Scheduler) run(ctx context.Context, j *job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}

		s.mu.Lock()
		j.status.Runs++
		j.status.LastRun = start
		j.status.LastError = ""
		if err != nil {
			j.status.Failures++
			j.status.LastError = err.Error()
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("Job failed", zap.String("job", j.name), zap.Error(err))
			return
		}
		s.logger.Debug("Job finished", zap.String("job", j.name), zap.Duration("took", time.Since(start)))
	}()

	return j.fn(ctx)
}

// Status returns the status of every job ordered by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.status)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Running reports whether the scheduler has been started
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
