package core

type (
	// CategorySpending is one row of the grouped spending aggregation:
	// total and count of expenses per category over a date range.
	// Categories without expenses in range are omitted, not zero-filled.
	CategorySpending struct {
		CategoryID    int64
		CategoryName  string
		CategoryColor string
		Total         Money
		Count         int64
	}

	// MonthlyTotal is one month's spending bucket for trend reporting.
	MonthlyTotal struct {
		Year  int
		Month int
		Total Money
	}

	// SpendingStats summarizes a user's spending over a range: total,
	// expense count and average per expense. Average is zero when no
	// expenses match.
	SpendingStats struct {
		Total   Money
		Count   int64
		Average Money
	}

	// ExpenseFilter narrows expense listings. Zero values mean "no
	// filter"; nil dates leave that side of the range open.
	ExpenseFilter struct {
		CategoryID int64
		Start      *Date
		End        *Date
		Limit      int
		Offset     int
	}

	// BudgetFilter narrows budget listings. Zero values mean "no filter";
	// ActiveOn restricts to budgets whose window contains that day.
	BudgetFilter struct {
		CategoryID int64
		PeriodType PeriodType
		ActiveOn   *Date
	}

	// Summary aggregates a user's active budgets. Over-limit budgets are
	// counted in both OverLimit and NearLimit.
	Summary struct {
		TotalBudgets   int
		TotalBudgeted  Money
		TotalSpent     Money
		TotalRemaining Money
		OverLimit      int
		NearLimit      int
	}
)
