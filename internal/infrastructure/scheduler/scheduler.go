// Package scheduler runs periodic background jobs, currently the post
// ranking score refresh.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// stops.
	Run(ctx context.Context) error
}

// ErrNilJob is returned when registering a nil job.
var ErrNilJob = errors.New("scheduler: job cannot be nil")

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler runs registered jobs at fixed intervals. One goroutine per job;
// a slow run delays its own next tick, never other jobs.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []scheduledJob
	logger  *slog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// New creates a Scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// Register adds a job with its run interval. Registration after Start has no
// effect until the next Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if job == nil {
		return ErrNilJob
	}
	if interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval})
	return nil
}

// Start launches the job loops.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, sj)
	}
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop cancels the job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := sj.job.Run(ctx); err != nil {
				s.logger.Error("job failed",
					"job", sj.job.Name(),
					"duration", time.Since(start),
					"error", err,
				)
				continue
			}
			s.logger.Debug("job completed",
				"job", sj.job.Name(),
				"duration", time.Since(start),
			)
		}
	}
}
