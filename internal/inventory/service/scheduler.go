package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medistock/medistock-backend/pkg/logger"
)

// AlertScheduler runs the alert scanner on a cron schedule.
type AlertScheduler struct {
	scanner  *AlertScanner
	schedule string
	cron     *cron.Cron
	logger   *logger.Logger
}

// NewAlertScheduler creates a new alert scheduler.
// The schedule is a standard 5-field cron expression.
func NewAlertScheduler(scanner *AlertScanner, schedule string, log *logger.Logger) *AlertScheduler {
	return &AlertScheduler{
		scanner:  scanner,
		schedule: schedule,
		logger:   log,
	}
}

// Start registers the scan job and starts the cron runner.
// An initial scan runs immediately in the background.
func (s *AlertScheduler) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runScan(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid alert schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("alert scheduler started")

	go s.runScan(ctx)

	return nil
}

// Stop stops the cron runner and waits for a running scan to finish
func (s *AlertScheduler) Stop() {
	if s.cron == nil {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		s.logger.Warn().Msg("alert scheduler stop timed out")
	}

	s.logger.Info().Msg("alert scheduler stopped")
}

func (s *AlertScheduler) runScan(ctx context.Context) {
	start := time.Now()

	if err := s.scanner.ScanAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("alert scan cycle finished with errors")
		return
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("alert scan cycle completed")
}
