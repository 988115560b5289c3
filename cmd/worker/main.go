package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/campuscore/campuscore/internal/app"
	"github.com/campuscore/campuscore/internal/attendance"
	jobmetrics "github.com/campuscore/campuscore/internal/jobs"
	"github.com/campuscore/campuscore/internal/notifications"
	"github.com/campuscore/campuscore/internal/platform/db"
	"github.com/campuscore/campuscore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	registry := notifications.NewRegistry()
	registry.Register(notifications.ChannelSMS, notifications.LogSMSDispatcher{Logger: logger})
	registry.Register(notifications.ChannelEmail, notifications.LogEmailDispatcher{Logger: logger})

	notificationsRepo := notifications.NewRepository(dbpool)
	notificationsService := notifications.NewService(notificationsRepo, registry, logger, metrics)

	gateway := attendance.NewBridgeGateway(cfg.DeviceBridgeURL)
	attendanceRepo := attendance.NewRepository(dbpool)
	attendanceService := attendance.NewService(attendanceRepo)
	syncService := attendance.NewSyncService(gateway, attendanceService, logger, metrics)

	reminderTask, err := jobs.NewPayrollReminderTask(jobs.PayrollReminderPayload{})
	if err != nil {
		logger.Error("build payroll reminder task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{
				Type:    jobs.TaskPayrollReminder,
				Handler: payrollReminderHandler(notificationsService, cfg.PayrollReminderEmail, logger),
			},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		jobs.NewAttendanceSyncPoller(syncService, notificationsService, cfg.NotificationBatchSize, cfg.AttendanceSyncInterval, logger, metrics).Start(groupCtx)
		return nil
	})
	group.Go(func() error {
		jobs.NewNotificationDrainPoller(notificationsService, cfg.NotificationDrainInterval, cfg.NotificationBatchSize, logger, metrics).Start(groupCtx)
		return nil
	})
	group.Go(func() error {
		logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
		if err := worker.Run(groupCtx); err != nil && groupCtx.Err() == nil {
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}

// payrollReminderHandler queues an email nudging the bursar to calculate the
// period's run. A cron-scheduled task carries no period, so the handler
// fills in the month that just ended.
func payrollReminderHandler(service *notifications.Service, recipient string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload jobs.PayrollReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		period := payload.Period
		if period == "" {
			period = time.Now().UTC().AddDate(0, -1, 0).Format("2006-01")
		}
		_, err := service.Enqueue(ctx, notifications.EnqueueInput{
			Channel:   notifications.ChannelEmail,
			Recipient: recipient,
			Subject:   "Payroll run due for " + period,
			Body:      "The payroll run for period " + period + " has not been calculated yet.",
		})
		if err != nil {
			logger.Error("queue payroll reminder", slog.Any("error", err))
			return err
		}
		return nil
	}
}
