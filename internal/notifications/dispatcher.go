package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

// Dispatcher delivers one notification over a single channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification Notification) error
}

// LogSMSDispatcher is a stand-in for an SMS provider; it only logs.
type LogSMSDispatcher struct {
	Logger *slog.Logger
}

// Dispatch logs the message instead of sending it.
func (d LogSMSDispatcher) Dispatch(_ context.Context, notification Notification) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("sms dispatched",
		slog.String("recipient", notification.Recipient),
		slog.Int("bytes", len(notification.Body)))
	return nil
}

// LogEmailDispatcher is a stand-in for an email provider; it only logs.
type LogEmailDispatcher struct {
	Logger *slog.Logger
}

// Dispatch logs the message instead of sending it.
func (d LogEmailDispatcher) Dispatch(_ context.Context, notification Notification) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email dispatched",
		slog.String("recipient", notification.Recipient),
		slog.String("subject", notification.Subject))
	return nil
}

// Registry routes notifications to the dispatcher for their channel.
type Registry struct {
	dispatchers map[string]Dispatcher
}

// NewRegistry builds a registry from channel to dispatcher.
func NewRegistry() *Registry {
	return &Registry{dispatchers: make(map[string]Dispatcher)}
}

// Register binds a dispatcher to a channel, replacing any previous binding.
func (r *Registry) Register(channel string, dispatcher Dispatcher) {
	r.dispatchers[channel] = dispatcher
}

// Dispatch routes to the channel's dispatcher.
func (r *Registry) Dispatch(ctx context.Context, notification Notification) error {
	dispatcher, ok := r.dispatchers[notification.Channel]
	if !ok {
		return fmt.Errorf("notifications: no dispatcher for channel %q", notification.Channel)
	}
	return dispatcher.Dispatch(ctx, notification)
}
