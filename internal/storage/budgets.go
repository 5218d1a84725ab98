package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spendwatch/internal/core"
)

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var (
		b          core.Budget
		start, end string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents,
		&b.PeriodType, &start, &end, &b.CreatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget start %q: %w", start, err)
	}
	if b.EndDate, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget end %q: %w", end, err)
	}
	return b, nil
}

// CreateBudget inserts the budget after checking that no existing
// budget for the same category and period type overlaps its date
// window. Check and insert run in one transaction so two concurrent
// creates cannot both pass.
func (r *Repository) CreateBudget(ctx context.Context, b *core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget tx: %w", err)
	}
	defer tx.Rollback()

	var overlapping int64
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM budgets
		WHERE user_id = ? AND category_id = ? AND period_type = ?
			AND start_date <= ? AND end_date >= ?`,
		b.UserID, b.CategoryID, string(b.PeriodType),
		b.EndDate.Format(), b.StartDate.Format()).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("check budget overlap: %w", err)
	}
	if overlapping > 0 {
		return core.ErrBudgetOverlap
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents, period_type,
			start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Cents, string(b.PeriodType),
		b.StartDate.Format(), b.EndDate.Format(), b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create budget id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget tx: %w", err)
	}
	b.ID = id
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, amount_cents, period_type,
			start_date, end_date, created_at
		FROM budgets
		WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.Budget, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.PeriodType != "" {
		where = append(where, "period_type = ?")
		args = append(args, string(f.PeriodType))
	}
	if f.ActiveOn != nil {
		where = append(where, "start_date <= ? AND end_date >= ?")
		args = append(args, f.ActiveOn.Format(), f.ActiveOn.Format())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, amount_cents, period_type,
			start_date, end_date, created_at
		FROM budgets
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY start_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET category_id = ?, amount_cents = ?, period_type = ?,
			start_date = ?, end_date = ?
		WHERE id = ? AND user_id = ?`,
		b.CategoryID, b.Amount.Cents, string(b.PeriodType),
		b.StartDate.Format(), b.EndDate.Format(), b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UsersWithActiveBudgets returns distinct user IDs holding at least one
// budget whose window contains the given day. The sweep worker uses
// this to bound its scan.
func (r *Repository) UsersWithActiveBudgets(ctx context.Context, today core.Date) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT user_id
		FROM budgets
		WHERE start_date <= ? AND end_date >= ?
		ORDER BY user_id`, today.Format(), today.Format())
	if err != nil {
		return nil, fmt.Errorf("users with active budgets: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
