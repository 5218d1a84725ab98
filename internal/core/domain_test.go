package core

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		UserID:     1,
		Amount:     Money{Cents: 1234},
		CategoryID: 2,
		Date:       NewDate(2024, 6, 10),
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *Expense) {}},
		{name: "today is allowed", mutate: func(e *Expense) { e.Date = NewDate(2024, 6, 15) }},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "amount over cap", mutate: func(e *Expense) { e.Amount = Money{Cents: MaxAmountCents + 1} }, wantErr: ErrInvalidAmount},
		{name: "zero date", mutate: func(e *Expense) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "tomorrow", mutate: func(e *Expense) { e.Date = NewDate(2024, 6, 16) }, wantErr: ErrFutureDate},
		{name: "ten years ago exactly", mutate: func(e *Expense) { e.Date = NewDate(2014, 6, 15) }},
		{name: "older than ten years", mutate: func(e *Expense) { e.Date = NewDate(2014, 6, 14) }, wantErr: ErrDateTooOld},
		{name: "confidence in range", mutate: func(e *Expense) { c := 0.92; e.AIConfidence = &c }},
		{name: "confidence out of range", mutate: func(e *Expense) { c := 1.2; e.AIConfidence = &c }, wantErr: ErrInvalidConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate(testNow)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		UserID:     1,
		CategoryID: 2,
		Amount:     Money{Cents: 10000},
		PeriodType: Monthly,
		StartDate:  NewDate(2024, 1, 1),
		EndDate:    NewDate(2024, 1, 31),
	}

	tests := []struct {
		name    string
		mutate  func(b *Budget)
		wantErr error
	}{
		{name: "valid", mutate: func(b *Budget) {}},
		{name: "weekly", mutate: func(b *Budget) { b.PeriodType = Weekly; b.EndDate = NewDate(2024, 1, 7) }},
		{name: "non-positive amount", mutate: func(b *Budget) { b.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "bad period type", mutate: func(b *Budget) { b.PeriodType = "YEARLY" }, wantErr: ErrInvalidPeriodType},
		{name: "end equals start", mutate: func(b *Budget) { b.EndDate = b.StartDate }, wantErr: ErrInvalidDateRange},
		{name: "end before start", mutate: func(b *Budget) { b.EndDate = NewDate(2023, 12, 31) }, wantErr: ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetActive(t *testing.T) {
	b := Budget{StartDate: NewDate(2024, 6, 1), EndDate: NewDate(2024, 6, 30)}

	for _, tt := range []struct {
		day  Date
		want bool
	}{
		{NewDate(2024, 5, 31), false},
		{NewDate(2024, 6, 1), true},
		{NewDate(2024, 6, 15), true},
		{NewDate(2024, 6, 30), true},
		{NewDate(2024, 7, 1), false},
	} {
		if got := b.Active(tt.day); got != tt.want {
			t.Errorf("Active(%s) = %v, want %v", tt.day.Format(), got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("ParseDate = %s, want 2024-02-29", d.Format())
	}

	if _, err := ParseDate("29/02/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad format: got %v, want ErrInvalidDate", err)
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(ErrBudgetOverlap) {
		t.Error("ErrBudgetOverlap should be a validation error")
	}
	if IsValidationError(ErrNotFound) {
		t.Error("ErrNotFound is not a validation error")
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("arbitrary errors are not validation errors")
	}
}
