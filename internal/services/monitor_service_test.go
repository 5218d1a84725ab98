package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwatch/internal/core"
)

type monitorFixture struct {
	monitor  *MonitorService
	budgets  *fakeBudgetStore
	expenses *fakeExpenseStore
	store    *fakeNotificationStore
	sender   *fakeSender
	svc      *NotificationService
	budgetS  *BudgetService
}

func newMonitorFixture() *monitorFixture {
	budgets := newFakeBudgetStore()
	expenses := newFakeExpenseStore()
	categories := newFakeCategoryStore()
	store := newFakeNotificationStore()
	sender := newFakeSender()

	budgetSvc := NewBudgetService(budgets, expenses, categories)
	budgetSvc.now = func() time.Time { return testNow }
	notifySvc := NewNotificationService(store, sender, 50)
	notifySvc.now = func() time.Time { return testNow }
	monitor := NewMonitorService(budgetSvc, notifySvc, categories)
	monitor.now = func() time.Time { return testNow }

	return &monitorFixture{
		monitor:  monitor,
		budgets:  budgets,
		expenses: expenses,
		store:    store,
		sender:   sender,
		svc:      notifySvc,
		budgetS:  budgetSvc,
	}
}

func (f *monitorFixture) seedUser(t *testing.T, userID int64, budgetCents, spentCents int64) {
	t.Helper()
	ctx := context.Background()
	b := juneBudget(userID, 3, budgetCents)
	if err := f.budgetS.Create(ctx, b); err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	if spentCents > 0 {
		addExpense(t, f.expenses, userID, 3, spentCents, core.NewDate(2024, 6, 10))
	}
	sub := &core.Subscription{
		UserID:    userID,
		Endpoint:  "https://push.example/u" + string(rune('0'+userID)),
		P256dhKey: "k",
		AuthKey:   "a",
	}
	if err := f.svc.Subscribe(ctx, sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func TestMonitorService_CheckUserDispatchesAlerts(t *testing.T) {
	f := newMonitorFixture()
	ctx := context.Background()
	f.seedUser(t, 1, 10000, 12000)

	dispatched, err := f.monitor.CheckUser(ctx, 1)
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if dispatched != 1 {
		t.Errorf("dispatched = %d, want 1", dispatched)
	}

	logs, _ := f.svc.Logs(ctx, 1)
	if len(logs) != 1 {
		t.Fatalf("expected 1 notification log, got %d", len(logs))
	}
	if logs[0].Type != string(core.AlertOverBudget) {
		t.Errorf("log type = %q, want over_budget", logs[0].Type)
	}
	if logs[0].Title != "Budget Exceeded: Grocery" {
		t.Errorf("log title = %q", logs[0].Title)
	}
}

func TestMonitorService_CheckUserRespectsThresholdPreference(t *testing.T) {
	f := newMonitorFixture()
	ctx := context.Background()
	f.seedUser(t, 1, 10000, 6000) // 60%

	if err := f.svc.UpdatePreferences(ctx, &core.Preferences{
		UserID:                1,
		BudgetWarningsEnabled: true,
		BudgetExceededEnabled: true,
		WarningThreshold:      50,
	}); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}

	dispatched, err := f.monitor.CheckUser(ctx, 1)
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if dispatched != 1 {
		t.Errorf("60%% at user threshold 50 should warn, dispatched = %d", dispatched)
	}
}

func TestMonitorService_CheckUserQuietBelowThreshold(t *testing.T) {
	f := newMonitorFixture()
	ctx := context.Background()
	f.seedUser(t, 1, 10000, 5000) // 50%

	dispatched, err := f.monitor.CheckUser(ctx, 1)
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if dispatched != 0 {
		t.Errorf("dispatched = %d, want 0", dispatched)
	}
	logs, _ := f.svc.Logs(ctx, 1)
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %d", len(logs))
	}
}

func TestMonitorService_CheckAllUsersIsolation(t *testing.T) {
	f := newMonitorFixture()
	ctx := context.Background()
	f.seedUser(t, 1, 10000, 12000)
	f.seedUser(t, 2, 10000, 12000)

	// Poison the spending sum for every user; the sweep should still
	// visit both and report completion rather than aborting.
	f.expenses.sumErr = errors.New("disk gone")
	if err := f.monitor.CheckAllUsers(ctx); err != nil {
		t.Fatalf("CheckAllUsers should absorb per-user failures: %v", err)
	}

	// Healthy store: both users get their alert.
	f.expenses.sumErr = nil
	if err := f.monitor.CheckAllUsers(ctx); err != nil {
		t.Fatalf("CheckAllUsers: %v", err)
	}
	for _, userID := range []int64{1, 2} {
		logs, _ := f.svc.Logs(ctx, userID)
		if len(logs) == 0 {
			t.Errorf("user %d received no alert", userID)
		}
	}

	if f.monitor.LastSweep().IsZero() {
		t.Error("LastSweep should be recorded")
	}
}

func TestMonitorService_CheckAllUsersSkipsInactive(t *testing.T) {
	f := newMonitorFixture()
	ctx := context.Background()

	// Budget window entirely in the past: user is not swept.
	b := &core.Budget{
		UserID:     1,
		CategoryID: 3,
		Amount:     core.Money{Cents: 10000},
		PeriodType: core.Monthly,
		StartDate:  core.NewDate(2024, 4, 1),
		EndDate:    core.NewDate(2024, 4, 30),
	}
	if err := f.budgetS.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	addExpense(t, f.expenses, 1, 3, 99999, core.NewDate(2024, 4, 10))

	if err := f.monitor.CheckAllUsers(ctx); err != nil {
		t.Fatalf("CheckAllUsers: %v", err)
	}
	logs, _ := f.svc.Logs(ctx, 1)
	if len(logs) != 0 {
		t.Errorf("expired budget should not alert, got %d logs", len(logs))
	}
}
