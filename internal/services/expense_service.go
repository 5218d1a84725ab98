package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/core"
)

// FallbackCategoryName receives receipt expenses whose suggested
// category does not match anything visible to the user.
const FallbackCategoryName = "Uncategorized"

// ExpenseService handles expense CRUD and kicks off asynchronous
// budget re-evaluation after every mutation.
type ExpenseService struct {
	expenses   ExpenseStore
	categories CategoryStore
	publisher  BudgetCheckPublisher
	now        func() time.Time
}

func NewExpenseService(expenses ExpenseStore, categories CategoryStore, publisher BudgetCheckPublisher) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		categories: categories,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *ExpenseService) Create(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(s.now()); err != nil {
		return err
	}
	if _, err := s.categories.GetCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return err
	}

	e.CreatedAt = s.now().UTC()
	e.UpdatedAt = e.CreatedAt
	if err := s.expenses.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", e.ID,
		"user_id", e.UserID,
		"category_id", e.CategoryID,
		"amount_cents", e.Amount.Cents)

	s.publishBudgetCheck(ctx, e.UserID, "expense_created")
	return nil
}

// CreateFromReceipt records an expense extracted from a scanned
// receipt. An unrecognized category name falls back to the shared
// Uncategorized category instead of failing the scan.
func (s *ExpenseService) CreateFromReceipt(ctx context.Context, e *core.Expense, categoryName string) error {
	cat, err := s.categories.GetCategoryByName(ctx, e.UserID, categoryName)
	if err != nil {
		slog.WarnContext(ctx, "Receipt category not recognized, using fallback",
			"user_id", e.UserID,
			"category_name", categoryName)
		cat, err = s.categories.GetCategoryByName(ctx, e.UserID, FallbackCategoryName)
		if err != nil {
			return fmt.Errorf("resolve fallback category: %w", err)
		}
	}
	e.CategoryID = cat.ID
	return s.Create(ctx, e)
}

func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.expenses.GetExpense(ctx, userID, id)
}

func (s *ExpenseService) List(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error) {
	return s.expenses.ListExpenses(ctx, userID, f)
}

func (s *ExpenseService) Update(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(s.now()); err != nil {
		return err
	}
	if _, err := s.categories.GetCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return err
	}

	e.UpdatedAt = s.now().UTC()
	if err := s.expenses.UpdateExpense(ctx, e); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense updated", "id", e.ID, "user_id", e.UserID)
	s.publishBudgetCheck(ctx, e.UserID, "expense_updated")
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.expenses.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	s.publishBudgetCheck(ctx, userID, "expense_deleted")
	return nil
}

// publishBudgetCheck is best effort. The mutation already committed;
// the periodic sweep catches anything a lost message would miss.
func (s *ExpenseService) publishBudgetCheck(ctx context.Context, userID int64, reason string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Budget check publisher not available, relying on sweep",
			"user_id", userID, "reason", reason)
		return
	}
	if err := s.publisher.PublishBudgetCheck(ctx, userID, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget check",
			"user_id", userID,
			"reason", reason,
			"error", err)
	}
}
