package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendwatch/internal/core"
	"spendwatch/internal/push"
)

// NotificationService manages push subscriptions and preferences, and
// dispatches budget alerts to every active device a user registered.
type NotificationService struct {
	store    NotificationStore
	sender   push.Sender
	logLimit int
	now      func() time.Time
}

func NewNotificationService(store NotificationStore, sender push.Sender, logLimit int) *NotificationService {
	return &NotificationService{
		store:    store,
		sender:   sender,
		logLimit: logLimit,
		now:      time.Now,
	}
}

func (s *NotificationService) Subscribe(ctx context.Context, sub *core.Subscription) error {
	if strings.TrimSpace(sub.Endpoint) == "" || sub.P256dhKey == "" || sub.AuthKey == "" {
		return core.ErrInvalidSubscription
	}

	now := s.now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Push subscription registered",
		"user_id", sub.UserID, "subscription_id", sub.ID)
	return nil
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID int64, endpoint string) error {
	return s.store.DeleteSubscription(ctx, userID, endpoint)
}

// Preferences returns the user's notification preferences, creating
// the default row on first access. A concurrent first access loses the
// insert race and re-reads the winner's row.
func (s *NotificationService) Preferences(ctx context.Context, userID int64) (core.Preferences, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Preferences{}, err
	}

	now := s.now().UTC()
	fresh := core.Preferences{
		UserID:                userID,
		BudgetWarningsEnabled: true,
		BudgetExceededEnabled: true,
		WarningThreshold:      core.DefaultWarningThreshold,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	err = s.store.CreatePreferences(ctx, &fresh)
	if errors.Is(err, core.ErrAlreadyExists) {
		return s.store.GetPreferences(ctx, userID)
	}
	if err != nil {
		return core.Preferences{}, err
	}
	return fresh, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, p *core.Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	// Lazy-create first so updating before any read still works.
	if _, err := s.Preferences(ctx, p.UserID); err != nil {
		return err
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdatePreferences(ctx, p); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Notification preferences updated",
		"user_id", p.UserID,
		"warnings_enabled", p.BudgetWarningsEnabled,
		"exceeded_enabled", p.BudgetExceededEnabled,
		"warning_threshold", p.WarningThreshold)
	return nil
}

// NotifyBudgetAlert delivers one alert to all of the user's active
// subscriptions, honoring the per-type preference toggles. Each
// delivery is attempted independently and logged; a dead endpoint is
// deactivated so it is never tried again. Returns the number of
// successful deliveries.
func (s *NotificationService) NotifyBudgetAlert(ctx context.Context, userID int64, alert core.Alert, categoryName string) (int, error) {
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load preferences: %w", err)
	}

	switch alert.Type {
	case core.AlertNearLimit:
		if !prefs.BudgetWarningsEnabled {
			return 0, nil
		}
	case core.AlertOverBudget:
		if !prefs.BudgetExceededEnabled {
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("unknown alert type %q", alert.Type)
	}

	title, message := alertText(alert, categoryName)
	payload, err := json.Marshal(map[string]any{
		"title": title,
		"body":  message,
		"type":  string(alert.Type),
		"data": map[string]any{
			"budget_id":    alert.BudgetID,
			"category_id":  alert.CategoryID,
			"percent_used": alert.PercentUsed,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal push payload: %w", err)
	}

	subs, err := s.store.ActiveSubscriptions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		sendErr := s.sender.Send(ctx, sub, payload)
		if errors.Is(sendErr, push.ErrEndpointGone) {
			if err := s.store.DeactivateSubscription(ctx, sub.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to deactivate dead subscription",
					"subscription_id", sub.ID, "error", err)
			}
			slog.InfoContext(ctx, "Deactivated dead push endpoint",
				"user_id", userID, "subscription_id", sub.ID)
		} else if sendErr != nil {
			slog.ErrorContext(ctx, "Push delivery failed",
				"user_id", userID,
				"subscription_id", sub.ID,
				"error", sendErr)
		} else {
			sent++
		}
		s.logDelivery(ctx, userID, sub.ID, string(alert.Type), title, message, string(payload), sendErr)
	}

	slog.InfoContext(ctx, "Budget alert dispatched",
		"user_id", userID,
		"alert_type", alert.Type,
		"budget_id", alert.BudgetID,
		"subscriptions", len(subs),
		"sent", sent)
	return sent, nil
}

// TestNotification sends a fixed payload so a user can verify their
// device setup end to end.
func (s *NotificationService) TestNotification(ctx context.Context, userID int64) (int, error) {
	payload, err := json.Marshal(map[string]any{
		"title": "Test Notification",
		"body":  "Push notifications are working.",
		"type":  "test",
	})
	if err != nil {
		return 0, fmt.Errorf("marshal push payload: %w", err)
	}

	subs, err := s.store.ActiveSubscriptions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		sendErr := s.sender.Send(ctx, sub, payload)
		if errors.Is(sendErr, push.ErrEndpointGone) {
			if err := s.store.DeactivateSubscription(ctx, sub.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to deactivate dead subscription",
					"subscription_id", sub.ID, "error", err)
			}
		} else if sendErr == nil {
			sent++
		}
		s.logDelivery(ctx, userID, sub.ID, "test", "Test Notification", "Push notifications are working.", string(payload), sendErr)
	}
	return sent, nil
}

func (s *NotificationService) Logs(ctx context.Context, userID int64) ([]core.NotificationLog, error) {
	return s.store.ListLogs(ctx, userID, s.logLimit)
}

func (s *NotificationService) logDelivery(ctx context.Context, userID, subscriptionID int64, typ, title, message, data string, sendErr error) {
	entry := &core.NotificationLog{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Type:           typ,
		Title:          title,
		Message:        message,
		Data:           data,
		SentAt:         s.now().UTC(),
		Success:        sendErr == nil,
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
	}
	if err := s.store.CreateLog(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "Failed to write notification log",
			"user_id", userID, "error", err)
	}
}

func alertText(alert core.Alert, categoryName string) (title, message string) {
	switch alert.Type {
	case core.AlertOverBudget:
		title = fmt.Sprintf("Budget Exceeded: %s", categoryName)
		message = fmt.Sprintf("You've exceeded your $%s budget for %s by $%s.",
			alert.BudgetAmount, categoryName, alert.AmountOver)
	default:
		title = fmt.Sprintf("Budget Warning: %s", categoryName)
		message = fmt.Sprintf("You've spent $%s (%.1f%%) of your $%s budget for %s.",
			alert.Spent, alert.PercentUsed, alert.BudgetAmount, categoryName)
	}
	return title, message
}
