// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceService runs periodic housekeeping: expired sessions are purged,
// idle comment feeds are closed and the media cache is kept warm.
type MaintenanceService struct {
	auth     *AuthService
	feeds    *FeedRegistry
	media    *MediaService
	interval time.Duration
	logger   *slog.Logger
	runCh    chan chan error
}

// NewMaintenanceService creates a MaintenanceService. Any of auth, feeds and
// media may be nil to skip that task.
func NewMaintenanceService(
	auth *AuthService,
	feeds *FeedRegistry,
	media *MediaService,
	interval time.Duration,
	logger *slog.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceService{
		auth:     auth,
		feeds:    feeds,
		media:    media,
		interval: interval,
		logger:   logger,
		runCh:    make(chan chan error),
	}
}

// Start runs one pass immediately, then one per interval. It also serves
// RunNow requests. Start blocks until the context is canceled.
func (s *MaintenanceService) Start(ctx context.Context) {
	if err := s.runOnce(ctx); err != nil {
		s.logger.Error("initial maintenance pass failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("maintenance service stopped")
			return
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.logger.Error("maintenance pass failed", "error", err)
			}
		case done := <-s.runCh:
			done <- s.runOnce(ctx)
		}
	}
}

// RunNow triggers a pass outside the schedule and waits for it to finish.
func (s *MaintenanceService) RunNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.runCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runOnce performs every task, returning the first error after attempting
// all of them.
func (s *MaintenanceService) runOnce(ctx context.Context) error {
	start := time.Now()
	var firstErr error

	if s.auth != nil {
		n, err := s.auth.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("session purge failed", "error", err)
			firstErr = err
		} else if n > 0 {
			s.logger.Info("expired sessions purged", "count", n)
		}
	}

	if s.feeds != nil {
		if n := s.feeds.Sweep(); n > 0 {
			s.logger.Debug("idle comment feeds closed", "count", n, "live", s.feeds.Len())
		}
	}

	if s.media != nil {
		if _, err := s.media.Shows(ctx); err != nil {
			s.logger.Error("media cache warm failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Debug("maintenance pass complete", "duration", time.Since(start))
	return firstErr
}
