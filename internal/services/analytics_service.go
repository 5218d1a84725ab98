package services

import (
	"context"
	"time"

	"spendwatch/internal/core"
)

// AnalyticsService serves read-only spending reports.
type AnalyticsService struct {
	expenses ExpenseStore
	now      func() time.Time
}

func NewAnalyticsService(expenses ExpenseStore) *AnalyticsService {
	return &AnalyticsService{
		expenses: expenses,
		now:      time.Now,
	}
}

// validateRange rejects a reversed window. Nil bounds leave that side
// open and always pass.
func validateRange(start, end *core.Date) error {
	if start != nil && end != nil && end.Before(start.Time) {
		return core.ErrInvalidDateRange
	}
	return nil
}

// SpendingByCategory groups spending per category over an optional
// inclusive date range.
func (s *AnalyticsService) SpendingByCategory(ctx context.Context, userID int64, start, end *core.Date) ([]core.CategorySpending, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.expenses.CategorySpending(ctx, userID, start, end)
}

// Stats returns overall spending figures (total, count, average) over
// an optional inclusive date range.
func (s *AnalyticsService) Stats(ctx context.Context, userID int64, start, end *core.Date) (core.SpendingStats, error) {
	if err := validateRange(start, end); err != nil {
		return core.SpendingStats{}, err
	}
	return s.expenses.SpendingStats(ctx, userID, start, end)
}

// MonthlyTrend returns per-month totals for the last months calendar
// months, including the current one.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context, userID int64, months int) ([]core.MonthlyTotal, error) {
	if months < 1 || months > 36 {
		months = 6
	}
	today := core.DateOf(s.now())
	since := core.NewDate(today.Year(), int(today.Month()), 1)
	since = core.Date{Time: since.AddDate(0, -(months - 1), 0)}
	return s.expenses.MonthlyTotals(ctx, userID, since)
}
