package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/kvstore/sqlitekv"
)

// HousekeepingService periodically deletes expired revocation records from
// the sqlite blocklist store. Reads already skip expired rows, so this is
// purely about keeping the table bounded. The memory store prunes itself
// and doesn't need this.
type HousekeepingService struct {
	KV       *sqlitekv.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(kv *sqlitekv.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		KV:       kv,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and blocks until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup so a restart clears any backlog.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	n, err := s.KV.PruneExpired(context.Background())
	if err != nil {
		s.Logger.Error("failed to prune expired revocation records", "error", err)
		return
	}
	s.Logger.Debug("pruned expired revocation records", "deleted", n)
}
