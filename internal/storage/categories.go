package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendwatch/internal/core"
)

// Default categories are stored with a NULL user_id; in the domain they
// carry UserID == 0.
func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c      core.Category
		userID sql.NullInt64
	)
	if err := row.Scan(&c.ID, &userID, &c.Name, &c.Color, &c.IsDefault); err != nil {
		return core.Category{}, err
	}
	c.UserID = userID.Int64
	return c, nil
}

// ListCategories returns the shared default categories plus the user's
// own, defaults first.
func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, color, is_default
		FROM categories
		WHERE user_id IS NULL OR user_id = ?
		ORDER BY is_default DESC, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory returns the category only if it is visible to the user,
// meaning a shared default or one the user owns.
func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, color, is_default
		FROM categories
		WHERE id = ? AND (user_id IS NULL OR user_id = ?)`, id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetCategoryByName matches case-insensitively, so a receipt suggesting
// "grocery" resolves to the shared "Grocery" default.
func (r *Repository) GetCategoryByName(ctx context.Context, userID int64, name string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, color, is_default
		FROM categories
		WHERE LOWER(name) = LOWER(?) AND (user_id IS NULL OR user_id = ?)
		ORDER BY is_default DESC
		LIMIT 1`, name, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, color, is_default)
		VALUES (?, ?, ?, 0)`, c.UserID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create category id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCategory only touches user-owned categories; defaults have a
// NULL user_id and never match.
func (r *Repository) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?
		WHERE id = ? AND user_id = ?`, c.Name, c.Color, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

// CategoryInUse reports whether any expense or budget references the
// category.
func (r *Repository) CategoryInUse(ctx context.Context, categoryID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM expenses WHERE category_id = ?) +
			(SELECT COUNT(*) FROM budgets WHERE category_id = ?)`,
		categoryID, categoryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count category references: %w", err)
	}
	return count > 0, nil
}
