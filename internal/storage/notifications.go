package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendwatch/internal/core"
)

// UpsertSubscription registers a push endpoint for a user. Re-sending
// an endpoint the user already registered refreshes its keys and
// reactivates it rather than creating a duplicate row.
func (r *Repository) UpsertSubscription(ctx context.Context, s *core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_subscriptions
			(user_id, endpoint, p256dh_key, auth_key, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET
			p256dh_key = excluded.p256dh_key,
			auth_key = excluded.auth_key,
			is_active = 1,
			updated_at = excluded.updated_at`,
		s.UserID, s.Endpoint, s.P256dhKey, s.AuthKey, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("upsert subscription id: %w", err)
	}
	s.ID = id
	s.Active = true
	return nil
}

func (r *Repository) ActiveSubscriptions(ctx context.Context, userID int64) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, is_active,
			created_at, updated_at
		FROM notification_subscriptions
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		var s core.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dhKey,
			&s.AuthKey, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeactivateSubscription flips a subscription inactive, keeping the row
// for the notification log foreign key.
func (r *Repository) DeactivateSubscription(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notification_subscriptions SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSubscription(ctx context.Context, userID int64, endpoint string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notification_subscriptions
		WHERE user_id = ? AND endpoint = ?`, userID, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) GetPreferences(ctx context.Context, userID int64) (core.Preferences, error) {
	var p core.Preferences
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, budget_warnings_enabled, budget_exceeded_enabled,
			warning_threshold, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = ?`, userID).Scan(
		&p.ID, &p.UserID, &p.BudgetWarningsEnabled, &p.BudgetExceededEnabled,
		&p.WarningThreshold, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Preferences{}, core.ErrNotFound
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// CreatePreferences inserts the user's preference row. A concurrent
// create for the same user surfaces as ErrAlreadyExists so the caller
// can re-read the winner.
func (r *Repository) CreatePreferences(ctx context.Context, p *core.Preferences) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences
			(user_id, budget_warnings_enabled, budget_exceeded_enabled,
			warning_threshold, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.BudgetWarningsEnabled, p.BudgetExceededEnabled,
		p.WarningThreshold, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return core.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create preferences: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create preferences id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *Repository) UpdatePreferences(ctx context.Context, p *core.Preferences) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notification_preferences
		SET budget_warnings_enabled = ?, budget_exceeded_enabled = ?,
			warning_threshold = ?, updated_at = ?
		WHERE user_id = ?`,
		p.BudgetWarningsEnabled, p.BudgetExceededEnabled,
		p.WarningThreshold, p.UpdatedAt, p.UserID)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update preferences rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateLog(ctx context.Context, l *core.NotificationLog) error {
	var subID any
	if l.SubscriptionID != 0 {
		subID = l.SubscriptionID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_logs
			(user_id, subscription_id, notification_type, title, message,
			data, sent_at, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, subID, l.Type, l.Title, l.Message,
		l.Data, l.SentAt, l.Success, l.ErrorMessage)
	if err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create notification log id: %w", err)
	}
	l.ID = id
	return nil
}

func (r *Repository) ListLogs(ctx context.Context, userID int64, limit int) ([]core.NotificationLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(subscription_id, 0), notification_type,
			title, message, data, sent_at, success, error_message
		FROM notification_logs
		WHERE user_id = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	var out []core.NotificationLog
	for rows.Next() {
		var l core.NotificationLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.SubscriptionID, &l.Type,
			&l.Title, &l.Message, &l.Data, &l.SentAt, &l.Success,
			&l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
