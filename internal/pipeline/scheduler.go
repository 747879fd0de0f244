package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler runs pipeline requests in background goroutines. Uploads return
// before indexing completes; failures surface only in the log.
type Scheduler struct {
	pipeline *Pipeline
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewScheduler wraps p for fire-and-forget scheduling.
func NewScheduler(p *Pipeline, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{pipeline: p, logger: logger}
}

// Schedule starts an indexing run and returns immediately with the job id
// assigned to the run, so callers can correlate log lines with the upload.
func (s *Scheduler) Schedule(req Request) string {
	jobID := uuid.NewString()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		if err := s.pipeline.Run(context.Background(), req); err != nil {
			s.logger.Error("background indexing failed",
				zap.String("job_id", jobID),
				zap.String("document", req.Name),
				zap.Error(err))
			return
		}
		s.logger.Debug("background indexing finished",
			zap.String("job_id", jobID),
			zap.String("document", req.Name),
			zap.Duration("took", time.Since(start)))
	}()
	return jobID
}

// Wait blocks until every scheduled run has finished. Used on shutdown and
// in tests.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
