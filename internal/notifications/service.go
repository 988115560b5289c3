package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jobmetrics "github.com/campuscore/campuscore/internal/jobs"
)

// ErrInvalid marks input validation failures.
var ErrInvalid = errors.New("notifications: invalid input")

// Service owns the queue: other modules enqueue through it, the drain
// poller delivers through it.
type Service struct {
	repo     RepositoryPort
	registry *Registry
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, registry *Registry, logger *slog.Logger, metrics *jobmetrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, registry: registry, logger: logger, metrics: metrics}
}

// EnqueueInput carries the fields for queueing a message.
type EnqueueInput struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
}

// Enqueue queues a message for the drain poller to deliver.
func (s *Service) Enqueue(ctx context.Context, input EnqueueInput) (*Notification, error) {
	if !ValidChannel(input.Channel) {
		return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalid, input.Channel)
	}
	if strings.TrimSpace(input.Recipient) == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalid)
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalid)
	}
	return s.repo.Enqueue(ctx, &Notification{
		Channel:   input.Channel,
		Recipient: strings.TrimSpace(input.Recipient),
		Subject:   input.Subject,
		Body:      input.Body,
	})
}

// List returns recent notifications for the admin surface.
func (s *Service) List(ctx context.Context, status string, limit int) ([]Notification, error) {
	if status != "" && status != StatusPending && status != StatusProcessing && status != StatusProcessed && status != StatusFailed {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, status, limit)
}

// Drain claims one batch and delivers it. One message failing to send marks
// that message failed and moves on; Drain returns the number delivered.
func (s *Service) Drain(ctx context.Context, batchSize int) (int, error) {
	batch, err := s.repo.Dequeue(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, notification := range batch {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := s.registry.Dispatch(ctx, notification); err != nil {
			s.logger.Warn("dispatch notification",
				slog.Int64("id", notification.ID),
				slog.String("channel", notification.Channel),
				slog.Any("error", err))
			s.metrics.AddNotifications(notification.Channel, StatusFailed, 1)
			if markErr := s.repo.MarkFailed(ctx, notification.ID, err.Error()); markErr != nil {
				s.logger.Error("mark notification failed",
					slog.Int64("id", notification.ID), slog.Any("error", markErr))
			}
			continue
		}
		s.metrics.AddNotifications(notification.Channel, StatusProcessed, 1)
		if err := s.repo.MarkProcessed(ctx, notification.ID); err != nil {
			s.logger.Error("mark notification processed",
				slog.Int64("id", notification.ID), slog.Any("error", err))
			continue
		}
		delivered++
	}
	return delivered, nil
}
