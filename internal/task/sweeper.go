package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prept/prept-api/internal/store"
)

// JobSweeper periodically deletes terminal generation jobs older than the
// retention window. Active jobs are never touched; a pending or
// processing row that outlives the window is a stuck job, which the task
// runner's monitor handles.
type JobSweeper struct {
	jobs       store.GenerationJobStore
	retention  time.Duration
	interval   time.Duration
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewJobSweeper creates a sweeper that removes terminal jobs older than
// retention, checking every interval.
func NewJobSweeper(jobs store.GenerationJobStore, retention, interval time.Duration, logger *slog.Logger) *JobSweeper {
	return &JobSweeper{
		jobs:      jobs,
		retention: retention,
		interval:  interval,
		logger:    logger.With("component", "job_sweeper"),
	}
}

// Start runs an initial sweep and then launches the background loop.
func (s *JobSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFunc = cancel

	s.sweep(ctx)

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop shuts down the sweeper and waits for any in-flight sweep.
func (s *JobSweeper) Stop() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()
}

func (s *JobSweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep deletes terminal jobs created before the retention window.
func (s *JobSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.jobs.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to sweep old generation jobs", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("swept old generation jobs",
			"deleted_count", deleted,
			"cutoff", cutoff)
	}
}
