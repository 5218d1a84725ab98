package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spendwatch/internal/core"
)

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e          core.Expense
		date       string
		confidence sql.NullFloat64
	)
	err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount.Cents,
		&e.Description, &date, &e.ReceiptURL, &confidence,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	if confidence.Valid {
		e.AIConfidence = &confidence.Float64
	}
	return e, nil
}

func (r *Repository) CreateExpense(ctx context.Context, e *core.Expense) error {
	var confidence any
	if e.AIConfidence != nil {
		confidence = *e.AIConfidence
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, category_id, amount_cents, description,
			expense_date, receipt_url, ai_confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.CategoryID, e.Amount.Cents, e.Description,
		e.Date.Format(), e.ReceiptURL, confidence, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create expense id: %w", err)
	}
	e.ID = id
	return nil
}

func (r *Repository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, amount_cents, description,
			expense_date, receipt_url, ai_confidence, created_at, updated_at
		FROM expenses
		WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Start != nil {
		where = append(where, "expense_date >= ?")
		args = append(args, f.Start.Format())
	}
	if f.End != nil {
		where = append(where, "expense_date <= ?")
		args = append(args, f.End.Format())
	}

	query := `
		SELECT id, user_id, category_id, amount_cents, description,
			expense_date, receipt_url, ai_confidence, created_at, updated_at
		FROM expenses
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY expense_date DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	var confidence any
	if e.AIConfidence != nil {
		confidence = *e.AIConfidence
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, amount_cents = ?, description = ?,
			expense_date = ?, receipt_url = ?, ai_confidence = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.CategoryID, e.Amount.Cents, e.Description,
		e.Date.Format(), e.ReceiptURL, confidence, e.UpdatedAt,
		e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// spendingWindow builds the shared range clauses for the aggregation
// queries. A zero categoryID and nil bounds leave that side open.
func spendingWindow(column string, categoryID int64, start, end *core.Date) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if categoryID != 0 {
		clauses = append(clauses, "category_id = ?")
		args = append(args, categoryID)
	}
	if start != nil {
		clauses = append(clauses, column+" >= ?")
		args = append(args, start.Format())
	}
	if end != nil {
		clauses = append(clauses, column+" <= ?")
		args = append(args, end.Format())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// SumSpending totals the user's expenses, optionally narrowed to one
// category and an inclusive date range.
func (r *Repository) SumSpending(ctx context.Context, userID, categoryID int64, start, end *core.Date) (core.Money, error) {
	window, args := spendingWindow("expense_date", categoryID, start, end)
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE user_id = ?`+window,
		append([]any{userID}, args...)...).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum spending: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategorySpending groups the user's spending by category over an
// optional inclusive date range. Categories without expenses do not
// appear.
func (r *Repository) CategorySpending(ctx context.Context, userID int64, start, end *core.Date) ([]core.CategorySpending, error) {
	window, args := spendingWindow("e.expense_date", 0, start, end)
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.color, SUM(e.amount_cents), COUNT(e.id)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ?`+window+`
		GROUP BY c.id, c.name, c.color
		ORDER BY SUM(e.amount_cents) DESC`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("category spending: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySpending
	for rows.Next() {
		var cs core.CategorySpending
		if err := rows.Scan(&cs.CategoryID, &cs.CategoryName, &cs.CategoryColor,
			&cs.Total.Cents, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// SpendingStats returns the user's overall spending figures over an
// optional inclusive date range.
func (r *Repository) SpendingStats(ctx context.Context, userID int64, start, end *core.Date) (core.SpendingStats, error) {
	window, args := spendingWindow("expense_date", 0, start, end)
	var stats core.SpendingStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM expenses
		WHERE user_id = ?`+window,
		append([]any{userID}, args...)...).Scan(&stats.Total.Cents, &stats.Count)
	if err != nil {
		return core.SpendingStats{}, fmt.Errorf("spending stats: %w", err)
	}
	if stats.Count > 0 {
		stats.Average.Cents = stats.Total.Cents / stats.Count
	}
	return stats, nil
}

// MonthlyTotals buckets the user's spending by calendar month, most
// recent first, starting from the given date going back.
func (r *Repository) MonthlyTotals(ctx context.Context, userID int64, since core.Date) ([]core.MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', expense_date) AS INTEGER),
			CAST(strftime('%m', expense_date) AS INTEGER),
			SUM(amount_cents)
		FROM expenses
		WHERE user_id = ? AND expense_date >= ?
		GROUP BY strftime('%Y-%m', expense_date)
		ORDER BY strftime('%Y-%m', expense_date) DESC`,
		userID, since.Format())
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyTotal
	for rows.Next() {
		var mt core.MonthlyTotal
		if err := rows.Scan(&mt.Year, &mt.Month, &mt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}
