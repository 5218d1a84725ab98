package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly  PeriodType = "WEEKLY"
	Monthly PeriodType = "MONTHLY"
)

// MaxAmountCents caps monetary amounts at 999,999.99.
const MaxAmountCents int64 = 99_999_999

// MaxExpenseAge is how far in the past an expense date may lie.
const MaxExpenseAgeYears = 10

type (
	PeriodType string

	// Date is a day-granularity date, always normalized to midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Category groups expenses. Default categories are shared across all
	// users and have UserID == 0; user categories belong to one user.
	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Color     string
		IsDefault bool
	}

	Expense struct {
		ID           int64
		UserID       int64
		Amount       Money
		Description  string
		CategoryID   int64
		Date         Date
		ReceiptURL   string
		AIConfidence *float64
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Budget limits spending for one category over a bounded date window.
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		PeriodType PeriodType
		StartDate  Date
		EndDate    Date
		CreatedAt  time.Time
	}

	// Subscription is a push delivery endpoint registered by a user's
	// device. The two keys are opaque encryption material for the push
	// transport.
	Subscription struct {
		ID        int64
		UserID    int64
		Endpoint  string
		P256dhKey string
		AuthKey   string
		Active    bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Preferences controls which budget alert types a user receives.
	Preferences struct {
		ID                    int64
		UserID                int64
		BudgetWarningsEnabled bool
		BudgetExceededEnabled bool
		WarningThreshold      int
		CreatedAt             time.Time
		UpdatedAt             time.Time
	}

	// NotificationLog is one append-only record of a dispatch attempt.
	NotificationLog struct {
		ID             int64
		UserID         int64
		SubscriptionID int64
		Type           string
		Title          string
		Message        string
		Data           string
		SentAt         time.Time
		Success        bool
		ErrorMessage   string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrFutureDate          = errors.New("date cannot be in the future")
	ErrDateTooOld          = errors.New("date is too far in the past")
	ErrInvalidDateRange    = errors.New("end date must be after start date")
	ErrInvalidPeriodType   = errors.New("invalid period type")
	ErrInvalidPeriodCount  = errors.New("period count must be between 1 and 24")
	ErrInvalidThreshold    = errors.New("warning threshold must be between 1 and 100")
	ErrInvalidConfidence   = errors.New("confidence score must be between 0 and 1")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidSubscription = errors.New("subscription endpoint and keys are required")
	ErrBudgetOverlap       = errors.New("budget overlaps an existing budget for this category and period type")
	ErrCategoryNotFound    = errors.New("category not found or not accessible")
	ErrCategoryImmutable   = errors.New("default categories cannot be modified")
	ErrCategoryInUse       = errors.New("category is used by expenses or budgets")
	ErrDuplicateName       = errors.New("category name already exists")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
)

// IsValidationError reports whether err belongs to the input-validation
// family, as opposed to a missing resource or an infrastructure failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrFutureDate, ErrDateTooOld,
		ErrInvalidDateRange, ErrInvalidPeriodType, ErrInvalidPeriodCount, ErrInvalidThreshold,
		ErrInvalidConfidence, ErrEmptyName, ErrInvalidSubscription, ErrBudgetOverlap,
		ErrCategoryNotFound, ErrCategoryImmutable, ErrCategoryInUse,
		ErrDuplicateName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (p PeriodType) Valid() bool {
	return p == Weekly || p == Monthly
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Format() string {
	return d.Time.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks an expense against the clock-dependent date rules:
// not in the future, not more than ten years old.
func (e Expense) Validate(now time.Time) error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	today := DateOf(now)
	if e.Date.After(today.Time) {
		return ErrFutureDate
	}
	oldest := Date{Time: today.AddDate(-MaxExpenseAgeYears, 0, 0)}
	if e.Date.Before(oldest.Time) {
		return ErrDateTooOld
	}
	if e.AIConfidence != nil && (*e.AIConfidence < 0 || *e.AIConfidence > 1) {
		return ErrInvalidConfidence
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.PeriodType.Valid() {
		return ErrInvalidPeriodType
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if err := b.EndDate.Validate(); err != nil {
		return err
	}
	if !b.EndDate.After(b.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Active reports whether the budget window contains today.
func (b Budget) Active(today Date) bool {
	return !b.StartDate.After(today.Time) && !b.EndDate.Before(today.Time)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (p Preferences) Validate() error {
	if p.WarningThreshold < 1 || p.WarningThreshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}
