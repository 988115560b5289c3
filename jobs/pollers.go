package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuscore/campuscore/internal/attendance"
	jobmetrics "github.com/campuscore/campuscore/internal/jobs"
	"github.com/campuscore/campuscore/internal/notifications"
)

// Poller runs a named function on a fixed interval until its context is
// cancelled. A failing cycle is logged and the loop continues; only
// cancellation stops it.
type Poller struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Start blocks until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("poller", p.Name))
	logger.Info("poller started", slog.Duration("interval", p.Interval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("poller stopped")
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			logger.Info("poller stopped")
			return
		}
		tracker := p.Metrics.Track(p.Name)
		if err := tracker.End(p.Run(ctx)); err != nil && ctx.Err() == nil {
			logger.Error("poller cycle failed", slog.Any("error", err))
		}
		timer.Reset(p.Interval)
	}
}

// NewAttendanceSyncPoller pulls buffered records off offline devices, then
// flushes any notifications the cycle queued. The dedicated drain poller
// still runs on its own shorter interval; flushing here just shortens the
// wait for sync-produced messages. A nil drainer skips the flush.
func NewAttendanceSyncPoller(sync *attendance.SyncService, drainer *notifications.Service, drainBatch int, interval time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *Poller {
	return &Poller{
		Name:     "attendance_sync",
		Interval: interval,
		Run: func(ctx context.Context) error {
			if err := sync.Sync(ctx); err != nil {
				return err
			}
			if drainer == nil {
				return nil
			}
			_, err := drainer.Drain(ctx, drainBatch)
			return err
		},
		Logger:  logger,
		Metrics: metrics,
	}
}

// NewNotificationDrainPoller delivers queued notifications in batches.
func NewNotificationDrainPoller(service *notifications.Service, interval time.Duration, batchSize int, logger *slog.Logger, metrics *jobmetrics.Metrics) *Poller {
	return &Poller{
		Name:     "notification_drain",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := service.Drain(ctx, batchSize)
			return err
		},
		Logger:  logger,
		Metrics: metrics,
	}
}
