package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwatch/internal/core"
)

// BudgetService owns budget CRUD and all derived evaluation: snapshots,
// portfolio summaries and threshold alerts. Evaluation is stateless, a
// pure read of budgets plus spending sums.
type BudgetService struct {
	budgets  BudgetStore
	expenses ExpenseStore
	cats     CategoryStore
	now      func() time.Time
}

func NewBudgetService(budgets BudgetStore, expenses ExpenseStore, cats CategoryStore) *BudgetService {
	return &BudgetService{
		budgets:  budgets,
		expenses: expenses,
		cats:     cats,
		now:      time.Now,
	}
}

func (s *BudgetService) Create(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := s.cats.GetCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return err
	}

	b.CreatedAt = s.now().UTC()
	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"user_id", b.UserID,
		"category_id", b.CategoryID,
		"amount_cents", b.Amount.Cents,
		"period_type", b.PeriodType)
	return nil
}

// Update replaces the budget's fields. The overlap constraint is only
// enforced on create; an update can move a budget onto a window that
// collides with a sibling.
func (s *BudgetService) Update(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := s.budgets.GetBudget(ctx, b.UserID, b.ID); err != nil {
		return err
	}
	if _, err := s.cats.GetCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return err
	}

	if err := s.budgets.UpdateBudget(ctx, b); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget updated", "id", b.ID, "user_id", b.UserID)
	return nil
}

func (s *BudgetService) Get(ctx context.Context, userID, id int64) (core.Budget, error) {
	return s.budgets.GetBudget(ctx, userID, id)
}

func (s *BudgetService) List(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.Budget, error) {
	return s.budgets.ListBudgets(ctx, userID, f)
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.budgets.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget deleted", "id", id, "user_id", userID)
	return nil
}

// Snapshot evaluates one budget against the spending recorded inside
// its window.
func (s *BudgetService) Snapshot(ctx context.Context, userID, budgetID int64) (core.Snapshot, error) {
	b, err := s.budgets.GetBudget(ctx, userID, budgetID)
	if err != nil {
		return core.Snapshot{}, err
	}
	return s.snapshotOf(ctx, b)
}

// Snapshots evaluates every budget matching the filter.
func (s *BudgetService) Snapshots(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.Snapshot, error) {
	budgets, err := s.budgets.ListBudgets(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	snapshots := make([]core.Snapshot, 0, len(budgets))
	for _, b := range budgets {
		snap, err := s.snapshotOf(ctx, b)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (s *BudgetService) snapshotOf(ctx context.Context, b core.Budget) (core.Snapshot, error) {
	spent, err := s.expenses.SumSpending(ctx, b.UserID, b.CategoryID, &b.StartDate, &b.EndDate)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("sum spending for budget %d: %w", b.ID, err)
	}
	return core.NewSnapshot(b, spent), nil
}

// Summary aggregates the user's budgets active today.
func (s *BudgetService) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	today := core.DateOf(s.now())
	snapshots, err := s.Snapshots(ctx, userID, core.BudgetFilter{ActiveOn: &today})
	if err != nil {
		return core.Summary{}, err
	}

	summary := core.Summary{TotalBudgets: len(snapshots)}
	for _, snap := range snapshots {
		summary.TotalBudgeted.Cents += snap.Budget.Amount.Cents
		summary.TotalSpent.Cents += snap.Spent.Cents
		summary.TotalRemaining.Cents += snap.Remaining.Cents
		if snap.OverLimit() {
			summary.OverLimit++
		}
		if snap.NearLimit(core.DefaultWarningThreshold) {
			summary.NearLimit++
		}
	}
	return summary, nil
}

// CheckAlerts evaluates the user's active budgets and returns the
// alerts due at the given warning threshold, one at most per budget.
func (s *BudgetService) CheckAlerts(ctx context.Context, userID int64, warnThreshold int) ([]core.Alert, error) {
	today := core.DateOf(s.now())
	snapshots, err := s.Snapshots(ctx, userID, core.BudgetFilter{ActiveOn: &today})
	if err != nil {
		return nil, err
	}

	var alerts []core.Alert
	for _, snap := range snapshots {
		if alert, ok := core.DeriveAlert(snap, warnThreshold); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// Periods previews upcoming budget windows for a period type.
func (s *BudgetService) Periods(periodType core.PeriodType, start core.Date, count int) ([]core.Period, error) {
	if count < 1 || count > 24 {
		return nil, core.ErrInvalidPeriodCount
	}
	return core.GeneratePeriods(periodType, start, count)
}
