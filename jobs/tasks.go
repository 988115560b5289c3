package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPayrollReminder is the nightly reminder to run payroll when a
	// period is about to close.
	TaskPayrollReminder = "payroll:reminder"
)

// PayrollReminderPayload names the period the reminder is about.
type PayrollReminderPayload struct {
	Period string `json:"period"`
}

// NewPayrollReminderTask constructs an Asynq task.
func NewPayrollReminderTask(payload PayrollReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollReminder, data), nil
}

// HandlePayrollReminderTask is the default reminder handler; the worker
// binary replaces it with one that queues real notifications.
func HandlePayrollReminderTask(_ context.Context, t *asynq.Task) error {
	var payload PayrollReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	slog.Default().Info("payroll reminder due", slog.String("period", payload.Period))
	return nil
}
