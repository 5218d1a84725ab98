package http

import (
	"encoding/json"
	"time"

	"spendwatch/internal/core"
)

// Wire types. Monetary amounts travel as decimal strings ("12.34") on
// input and are echoed back alongside raw cents.

type expenseRequest struct {
	Amount       string   `json:"amount"`
	Description  string   `json:"description"`
	CategoryID   int64    `json:"category_id"`
	Date         string   `json:"date"`
	ReceiptURL   string   `json:"receipt_url"`
	AIConfidence *float64 `json:"ai_confidence"`
}

type receiptExpenseRequest struct {
	Amount       string   `json:"amount"`
	Description  string   `json:"description"`
	CategoryName string   `json:"category_name"`
	Date         string   `json:"date"`
	ReceiptURL   string   `json:"receipt_url"`
	AIConfidence *float64 `json:"ai_confidence"`
}

type expenseResponse struct {
	ID           int64     `json:"id"`
	Amount       string    `json:"amount"`
	AmountCents  int64     `json:"amount_cents"`
	Description  string    `json:"description"`
	CategoryID   int64     `json:"category_id"`
	Date         string    `json:"date"`
	ReceiptURL   string    `json:"receipt_url,omitempty"`
	AIConfidence *float64  `json:"ai_confidence,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		Amount:       e.Amount.String(),
		AmountCents:  e.Amount.Cents,
		Description:  e.Description,
		CategoryID:   e.CategoryID,
		Date:         e.Date.Format(),
		ReceiptURL:   e.ReceiptURL,
		AIConfidence: e.AIConfidence,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

type budgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	PeriodType string `json:"period_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type budgetResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	PeriodType  string    `json:"period_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		Amount:      b.Amount.String(),
		AmountCents: b.Amount.Cents,
		PeriodType:  string(b.PeriodType),
		StartDate:   b.StartDate.Format(),
		EndDate:     b.EndDate.Format(),
		CreatedAt:   b.CreatedAt,
	}
}

type snapshotResponse struct {
	Budget      budgetResponse `json:"budget"`
	Spent       string         `json:"spent"`
	SpentCents  int64          `json:"spent_cents"`
	Remaining   string         `json:"remaining"`
	PercentUsed float64        `json:"percent_used"`
	OverLimit   bool           `json:"over_limit"`
}

func toSnapshotResponse(s core.Snapshot) snapshotResponse {
	return snapshotResponse{
		Budget:      toBudgetResponse(s.Budget),
		Spent:       s.Spent.String(),
		SpentCents:  s.Spent.Cents,
		Remaining:   s.Remaining.String(),
		PercentUsed: s.PercentUsed,
		OverLimit:   s.OverLimit(),
	}
}

type summaryResponse struct {
	TotalBudgets   int    `json:"total_budgets"`
	TotalBudgeted  string `json:"total_budgeted"`
	TotalSpent     string `json:"total_spent"`
	TotalRemaining string `json:"total_remaining"`
	OverLimit      int    `json:"over_limit"`
	NearLimit      int    `json:"near_limit"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		TotalBudgets:   s.TotalBudgets,
		TotalBudgeted:  s.TotalBudgeted.String(),
		TotalSpent:     s.TotalSpent.String(),
		TotalRemaining: s.TotalRemaining.String(),
		OverLimit:      s.OverLimit,
		NearLimit:      s.NearLimit,
	}
}

type periodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type subscribeRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

type preferencesRequest struct {
	BudgetWarningsEnabled bool `json:"budget_warnings_enabled"`
	BudgetExceededEnabled bool `json:"budget_exceeded_enabled"`
	WarningThreshold      int  `json:"warning_threshold"`
}

type preferencesResponse struct {
	BudgetWarningsEnabled bool `json:"budget_warnings_enabled"`
	BudgetExceededEnabled bool `json:"budget_exceeded_enabled"`
	WarningThreshold      int  `json:"warning_threshold"`
}

type notificationLogResponse struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data,omitempty"`
	SentAt       time.Time       `json:"sent_at"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type categorySpendingResponse struct {
	CategoryID    int64  `json:"category_id"`
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	Total         string `json:"total"`
	TotalCents    int64  `json:"total_cents"`
	Count         int64  `json:"count"`
}

type spendingStatsResponse struct {
	Total        string `json:"total"`
	TotalCents   int64  `json:"total_cents"`
	Count        int64  `json:"count"`
	Average      string `json:"average"`
	AverageCents int64  `json:"average_cents"`
}

type monthlyTotalResponse struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Total      string `json:"total"`
	TotalCents int64  `json:"total_cents"`
}
