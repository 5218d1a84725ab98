package core

const (
	AlertNearLimit  AlertType = "near_limit"
	AlertOverBudget AlertType = "over_budget"
)

// DefaultWarningThreshold is the percentage at which near-limit alerts
// fire unless the user's preferences say otherwise.
const DefaultWarningThreshold = 80

type (
	AlertType string

	// Snapshot is the derived, non-persisted view of a budget's current
	// state. It is recomputed on every evaluation and never stored.
	Snapshot struct {
		Budget      Budget
		Spent       Money
		Remaining   Money
		PercentUsed float64
	}

	// Alert signals a threshold crossing for a single budget. Remaining
	// is set for near-limit alerts, AmountOver for over-budget ones.
	// Spent and BudgetAmount are carried so the dispatcher can build a
	// message without another storage round trip.
	Alert struct {
		Type         AlertType
		BudgetID     int64
		CategoryID   int64
		PercentUsed  float64
		Spent        Money
		BudgetAmount Money
		Remaining    Money
		AmountOver   Money
	}
)

// NewSnapshot evaluates a budget against the given spending total.
// A zero budget amount yields zero percent used, never a division by zero.
func NewSnapshot(b Budget, spent Money) Snapshot {
	var pct float64
	if b.Amount.Cents > 0 {
		pct = float64(spent.Cents) / float64(b.Amount.Cents) * 100
	}
	return Snapshot{
		Budget:      b,
		Spent:       spent,
		Remaining:   Money{Cents: b.Amount.Cents - spent.Cents},
		PercentUsed: pct,
	}
}

// OverLimit reports spending at or beyond the full budget amount.
func (s Snapshot) OverLimit() bool {
	return s.PercentUsed >= 100
}

// NearLimit reports spending at or beyond the warning threshold.
// Over-limit budgets count as near-limit too.
func (s Snapshot) NearLimit(warnThreshold int) bool {
	return s.PercentUsed >= float64(warnThreshold)
}

// DeriveAlert returns at most one alert for the snapshot: over-budget at
// or above 100%, near-limit at or above warnThreshold but below 100%,
// nothing below the threshold. Pure function of the snapshot, so repeated
// evaluation of unchanged state reproduces the identical alert.
func DeriveAlert(s Snapshot, warnThreshold int) (Alert, bool) {
	if warnThreshold <= 0 {
		warnThreshold = DefaultWarningThreshold
	}
	switch {
	case s.PercentUsed >= 100:
		return Alert{
			Type:         AlertOverBudget,
			BudgetID:     s.Budget.ID,
			CategoryID:   s.Budget.CategoryID,
			PercentUsed:  s.PercentUsed,
			Spent:        s.Spent,
			BudgetAmount: s.Budget.Amount,
			AmountOver:   Money{Cents: s.Spent.Cents - s.Budget.Amount.Cents},
		}, true
	case s.PercentUsed >= float64(warnThreshold):
		return Alert{
			Type:         AlertNearLimit,
			BudgetID:     s.Budget.ID,
			CategoryID:   s.Budget.CategoryID,
			PercentUsed:  s.PercentUsed,
			Spent:        s.Spent,
			BudgetAmount: s.Budget.Amount,
			Remaining:    s.Remaining,
		}, true
	default:
		return Alert{}, false
	}
}
