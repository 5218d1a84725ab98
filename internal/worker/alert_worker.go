package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendwatch/internal/amqp"
	"spendwatch/internal/services"
)

// AlertWorker reacts to budget check messages by re-evaluating the
// named user's budgets and dispatching any alerts due.
type AlertWorker struct {
	monitor *services.MonitorService
}

func NewAlertWorker(monitor *services.MonitorService) *AlertWorker {
	return &AlertWorker{monitor: monitor}
}

// HandleBudgetCheck processes a single budget check message. A
// returned error nacks the delivery back onto the queue.
func (w *AlertWorker) HandleBudgetCheck(ctx context.Context, msg *amqp.BudgetCheckMessage) error {
	slog.InfoContext(ctx, "Processing budget check",
		"user_id", msg.UserID,
		"reason", msg.Reason,
		"queued_at", msg.Timestamp)

	dispatched, err := w.monitor.CheckUser(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", msg.UserID, err)
	}

	slog.InfoContext(ctx, "Budget check done",
		"user_id", msg.UserID,
		"dispatched", dispatched)
	return nil
}
