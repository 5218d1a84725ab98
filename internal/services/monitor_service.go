package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendwatch/internal/core"
)

// MonitorService ties budget evaluation to alert dispatch. It backs
// both the queue-driven worker reacting to expense mutations and the
// periodic sweep that covers users whose spending crossed a threshold
// without a triggering event, like a budget edit or a lost message.
type MonitorService struct {
	budgets       *BudgetService
	notifications *NotificationService
	categories    CategoryStore

	mu        sync.Mutex
	lastSweep time.Time
	now       func() time.Time
}

func NewMonitorService(budgets *BudgetService, notifications *NotificationService, categories CategoryStore) *MonitorService {
	return &MonitorService{
		budgets:       budgets,
		notifications: notifications,
		categories:    categories,
		now:           time.Now,
	}
}

// CheckUser evaluates all of one user's active budgets and dispatches
// every alert due. Returns the number of alerts dispatched.
func (s *MonitorService) CheckUser(ctx context.Context, userID int64) (int, error) {
	prefs, err := s.notifications.Preferences(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load preferences for user %d: %w", userID, err)
	}

	alerts, err := s.budgets.CheckAlerts(ctx, userID, prefs.WarningThreshold)
	if err != nil {
		return 0, fmt.Errorf("check alerts for user %d: %w", userID, err)
	}

	dispatched := 0
	for _, alert := range alerts {
		categoryName := s.categoryName(ctx, userID, alert.CategoryID)
		sent, err := s.notifications.NotifyBudgetAlert(ctx, userID, alert, categoryName)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to dispatch budget alert",
				"user_id", userID,
				"budget_id", alert.BudgetID,
				"error", err)
			continue
		}
		if sent > 0 {
			dispatched++
		}
	}

	if len(alerts) > 0 {
		slog.InfoContext(ctx, "Budget check completed",
			"user_id", userID,
			"alerts", len(alerts),
			"dispatched", dispatched)
	}
	return dispatched, nil
}

// CheckAllUsers sweeps every user holding a budget active today. One
// user's failure does not stop the sweep for the rest.
func (s *MonitorService) CheckAllUsers(ctx context.Context) error {
	today := core.DateOf(s.now())
	userIDs, err := s.budgets.budgets.UsersWithActiveBudgets(ctx, today)
	if err != nil {
		return fmt.Errorf("list users with active budgets: %w", err)
	}

	checked, failed := 0, 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.CheckUser(ctx, userID); err != nil {
			failed++
			slog.ErrorContext(ctx, "Sweep failed for user",
				"user_id", userID, "error", err)
			continue
		}
		checked++
	}

	s.mu.Lock()
	s.lastSweep = s.now()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Budget sweep completed",
		"users", len(userIDs),
		"checked", checked,
		"failed", failed)
	return nil
}

// LastSweep reports when the last full sweep finished, zero if none
// has run yet.
func (s *MonitorService) LastSweep() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSweep
}

func (s *MonitorService) categoryName(ctx context.Context, userID, categoryID int64) string {
	cat, err := s.categories.GetCategory(ctx, userID, categoryID)
	if err != nil {
		slog.WarnContext(ctx, "Category lookup failed for alert",
			"user_id", userID, "category_id", categoryID, "error", err)
		return "Unknown"
	}
	return cat.Name
}
