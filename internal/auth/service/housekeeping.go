package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/metrics"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

// HousekeepingService periodically deletes expired pending authorizations,
// authorization codes and access tokens. Reads already treat expired rows
// as absent; this only bounds table growth.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, m *metrics.Metrics, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Metrics:  m,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background(), time.Now().UTC())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now().UTC())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes everything that expired at or before now and returns the
// number of rows removed. Each table is independent: a failure in one
// does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) int64 {
	tasks := []struct {
		table string
		fn    func(context.Context, time.Time) (int64, error)
	}{
		{"oauth2_pending_authorizations", s.Store.PendingAuthorizations().DeleteExpiredPendingAuthorizations},
		{"oauth2_codes", s.Store.AuthorizationCodes().DeleteExpiredAuthorizationCodes},
		{"oauth2_access_tokens", s.Store.AccessTokens().DeleteExpiredAccessTokens},
	}

	var total int64
	for _, task := range tasks {
		n, err := task.fn(ctx, now)
		if err != nil {
			s.Logger.Error("failed to delete expired rows", slog.String("table", task.table), slog.Any("error", err))
			continue
		}
		s.Metrics.Reaped(task.table, n)
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", slog.Int64("deleted", total))
	return total
}
