package rag

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
)

// Scheduler triggers periodic background reindexing on a cron expression
// (with seconds field, e.g. "0 0 */6 * * *" for every six hours)
type Scheduler struct {
	manager *Manager
	cron    *cron.Cron
	logger  arbor.ILogger
	running bool
}

// NewScheduler creates a cron-driven reindex scheduler
func NewScheduler(manager *Manager, logger arbor.ILogger) *Scheduler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Scheduler{
		manager: manager,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
	}
}

// Start registers the schedule and begins firing. An empty expression
// disables the scheduler.
func (s *Scheduler) Start(ctx context.Context, cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		s.logger.Debug().Msg("No reindex schedule configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		s.logger.Info().Str("schedule", cronExpr).Msg("Scheduled reindex triggered")
		s.manager.ReindexAsync(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", cronExpr).Msg("Reindex scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running trigger to return
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("Reindex scheduler stopped")
}
