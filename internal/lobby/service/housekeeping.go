package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// InviteSweeper evicts resolved invitations older than a cutoff.
type InviteSweeper interface {
	SweepResolvedInvites(ctx context.Context, cutoff time.Time) (int64, error)
}

// HousekeepingService periodically evicts resolved invites so the ledger
// does not grow without bound. Pending invites are never evicted.
type HousekeepingService struct {
	Sweeper   InviteSweeper
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	now func() time.Time

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewHousekeepingService creates a housekeeping service.
// A non-positive interval defaults to 10 minutes and a non-positive retention to 24 hours.
func NewHousekeepingService(
	sweeper InviteSweeper,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	return &HousekeepingService{
		Sweeper:   sweeper,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the sweep immediately and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop shuts the worker down and waits for an in-progress sweep to finish.
// Calling Stop more than once, or before Start, is safe.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if !s.started.Load() {
			return
		}
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one eviction pass and returns the number of invites removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	cutoff := s.now().UTC().Add(-s.Retention)

	n, err := s.Sweeper.SweepResolvedInvites(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to evict resolved invites", slog.Any("error", err))
		return 0
	}

	s.Logger.Debug("housekeeping sweep completed",
		slog.Int64("evicted", n),
		slog.Time("cutoff", cutoff),
	)
	return n
}
