package services

import (
	"context"

	"spendwatch/internal/core"
)

// Store interfaces are satisfied by *storage.Repository. Services
// depend on these so tests can substitute in-memory fakes.

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *core.Expense) error
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, userID int64, f core.ExpenseFilter) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e *core.Expense) error
	DeleteExpense(ctx context.Context, userID, id int64) error
	SumSpending(ctx context.Context, userID, categoryID int64, start, end *core.Date) (core.Money, error)
	CategorySpending(ctx context.Context, userID int64, start, end *core.Date) ([]core.CategorySpending, error)
	SpendingStats(ctx context.Context, userID int64, start, end *core.Date) (core.SpendingStats, error)
	MonthlyTotals(ctx context.Context, userID int64, since core.Date) ([]core.MonthlyTotal, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	GetCategoryByName(ctx context.Context, userID int64, name string) (core.Category, error)
	CreateCategory(ctx context.Context, c *core.Category) error
	UpdateCategory(ctx context.Context, c *core.Category) error
	DeleteCategory(ctx context.Context, userID, id int64) error
	CategoryInUse(ctx context.Context, categoryID int64) (bool, error)
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b *core.Budget) error
	GetBudget(ctx context.Context, userID, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b *core.Budget) error
	DeleteBudget(ctx context.Context, userID, id int64) error
	UsersWithActiveBudgets(ctx context.Context, today core.Date) ([]int64, error)
}

type NotificationStore interface {
	UpsertSubscription(ctx context.Context, s *core.Subscription) error
	ActiveSubscriptions(ctx context.Context, userID int64) ([]core.Subscription, error)
	DeactivateSubscription(ctx context.Context, id int64) error
	DeleteSubscription(ctx context.Context, userID int64, endpoint string) error
	GetPreferences(ctx context.Context, userID int64) (core.Preferences, error)
	CreatePreferences(ctx context.Context, p *core.Preferences) error
	UpdatePreferences(ctx context.Context, p *core.Preferences) error
	CreateLog(ctx context.Context, l *core.NotificationLog) error
	ListLogs(ctx context.Context, userID int64, limit int) ([]core.NotificationLog, error)
}

// BudgetCheckPublisher requests an asynchronous budget re-evaluation
// for a user. Satisfied by *amqp.Client.
type BudgetCheckPublisher interface {
	PublishBudgetCheck(ctx context.Context, userID int64, reason string) error
}
