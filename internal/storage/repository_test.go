package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendwatch/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository) int64 {
	t.Helper()
	res, err := repo.db.Exec(
		"INSERT INTO users (email, password_hash) VALUES (?, ?)",
		"test@example.com", "x")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func TestMigrationsSeedDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	cats, err := repo.ListCategories(ctx, userID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 5 {
		t.Fatalf("expected 5 default categories, got %d", len(cats))
	}
	for _, c := range cats {
		if !c.IsDefault {
			t.Errorf("category %q should be a default", c.Name)
		}
		if c.UserID != 0 {
			t.Errorf("default category %q has user id %d", c.Name, c.UserID)
		}
	}
}

func TestCategoryVisibility(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := seedUser(t, repo)
	res, _ := repo.db.Exec("INSERT INTO users (email, password_hash) VALUES ('bob@example.com', 'x')")
	bob, _ := res.LastInsertId()

	mine := &core.Category{UserID: alice, Name: "Pets", Color: "#112233"}
	if err := repo.CreateCategory(ctx, mine); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	if _, err := repo.GetCategory(ctx, alice, mine.ID); err != nil {
		t.Errorf("owner should see own category: %v", err)
	}
	if _, err := repo.GetCategory(ctx, bob, mine.ID); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Errorf("other user should get ErrCategoryNotFound, got %v", err)
	}

	bobCats, err := repo.ListCategories(ctx, bob)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	for _, c := range bobCats {
		if c.ID == mine.ID {
			t.Error("another user's category leaked into listing")
		}
	}
}

func TestSumSpendingInclusiveRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)
	cat, err := repo.GetCategoryByName(ctx, userID, "Grocery")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	now := time.Now().UTC()
	add := func(day string, cents int64) {
		t.Helper()
		d, _ := core.ParseDate(day)
		e := &core.Expense{
			UserID:     userID,
			CategoryID: cat.ID,
			Amount:     core.Money{Cents: cents},
			Date:       d,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	// Boundary days count; days outside the window do not.
	add("2024-05-31", 100)
	add("2024-06-01", 200)
	add("2024-06-15", 300)
	add("2024-06-30", 400)
	add("2024-07-01", 500)

	start, _ := core.ParseDate("2024-06-01")
	end, _ := core.ParseDate("2024-06-30")
	total, err := repo.SumSpending(ctx, userID, cat.ID, &start, &end)
	if err != nil {
		t.Fatalf("SumSpending: %v", err)
	}
	if total.Cents != 900 {
		t.Errorf("expected 900 cents in range, got %d", total.Cents)
	}

	// Nil bounds leave the range open.
	total, err = repo.SumSpending(ctx, userID, cat.ID, nil, nil)
	if err != nil {
		t.Fatalf("SumSpending unbounded: %v", err)
	}
	if total.Cents != 1500 {
		t.Errorf("expected 1500 cents unbounded, got %d", total.Cents)
	}
	total, err = repo.SumSpending(ctx, userID, cat.ID, &start, nil)
	if err != nil {
		t.Fatalf("SumSpending open end: %v", err)
	}
	if total.Cents != 1400 {
		t.Errorf("expected 1400 cents from start onward, got %d", total.Cents)
	}
}

func TestGetCategoryByNameIgnoresCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	cat, err := repo.GetCategoryByName(ctx, userID, "grocery")
	if err != nil {
		t.Fatalf("GetCategoryByName(grocery): %v", err)
	}
	if cat.Name != "Grocery" || !cat.IsDefault {
		t.Errorf("lowercase lookup = %+v, want the seeded Grocery default", cat)
	}
}

func TestSpendingStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)
	cat, err := repo.GetCategoryByName(ctx, userID, "Grocery")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	now := time.Now().UTC()
	for _, cents := range []int64{1000, 2000, 3000} {
		d, _ := core.ParseDate("2024-06-10")
		e := &core.Expense{
			UserID: userID, CategoryID: cat.ID,
			Amount: core.Money{Cents: cents}, Date: d,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	stats, err := repo.SpendingStats(ctx, userID, nil, nil)
	if err != nil {
		t.Fatalf("SpendingStats: %v", err)
	}
	if stats.Total.Cents != 6000 || stats.Count != 3 || stats.Average.Cents != 2000 {
		t.Errorf("stats = %+v, want total 6000, count 3, average 2000", stats)
	}

	empty, err := repo.SpendingStats(ctx, userID+1, nil, nil)
	if err != nil {
		t.Fatalf("SpendingStats empty: %v", err)
	}
	if empty.Total.Cents != 0 || empty.Count != 0 || empty.Average.Cents != 0 {
		t.Errorf("empty stats = %+v, want zeroes", empty)
	}
}

func TestCreateBudgetRejectsOverlap(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)
	cat, err := repo.GetCategoryByName(ctx, userID, "Restaurants")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	mk := func(start, end string) *core.Budget {
		s, _ := core.ParseDate(start)
		e, _ := core.ParseDate(end)
		return &core.Budget{
			UserID:     userID,
			CategoryID: cat.ID,
			Amount:     core.Money{Cents: 10000},
			PeriodType: core.Monthly,
			StartDate:  s,
			EndDate:    e,
			CreatedAt:  time.Now().UTC(),
		}
	}

	if err := repo.CreateBudget(ctx, mk("2024-06-01", "2024-06-30")); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	tests := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"identical window", "2024-06-01", "2024-06-30", core.ErrBudgetOverlap},
		{"straddles start", "2024-05-15", "2024-06-05", core.ErrBudgetOverlap},
		{"touches last day", "2024-06-30", "2024-07-31", core.ErrBudgetOverlap},
		{"contained inside", "2024-06-10", "2024-06-20", core.ErrBudgetOverlap},
		{"starts day after", "2024-07-01", "2024-07-31", nil},
		{"ends day before", "2024-05-01", "2024-05-31", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateBudget(ctx, mk(tt.start, tt.end))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateBudget(%s..%s) = %v, want %v", tt.start, tt.end, err, tt.wantErr)
			}
		})
	}
}

func TestCreateBudgetAllowsDifferentPeriodType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)
	cat, err := repo.GetCategoryByName(ctx, userID, "Leisure")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	s, _ := core.ParseDate("2024-06-01")
	e, _ := core.ParseDate("2024-06-30")
	monthly := &core.Budget{
		UserID: userID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 5000}, PeriodType: core.Monthly,
		StartDate: s, EndDate: e, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, monthly); err != nil {
		t.Fatalf("CreateBudget monthly: %v", err)
	}

	we, _ := core.ParseDate("2024-06-07")
	weekly := &core.Budget{
		UserID: userID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 2000}, PeriodType: core.Weekly,
		StartDate: s, EndDate: we, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, weekly); err != nil {
		t.Errorf("weekly budget over same dates should not conflict with monthly: %v", err)
	}
}

func TestPreferencesUniquePerUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	now := time.Now().UTC()
	p := &core.Preferences{
		UserID:                userID,
		BudgetWarningsEnabled: true,
		BudgetExceededEnabled: true,
		WarningThreshold:      80,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := repo.CreatePreferences(ctx, p); err != nil {
		t.Fatalf("CreatePreferences: %v", err)
	}

	dup := *p
	if err := repo.CreatePreferences(ctx, &dup); !errors.Is(err, core.ErrAlreadyExists) {
		t.Errorf("duplicate preferences = %v, want ErrAlreadyExists", err)
	}
}

func TestUpsertSubscriptionRefreshesEndpoint(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)

	now := time.Now().UTC()
	sub := &core.Subscription{
		UserID: userID, Endpoint: "https://push.example/ep1",
		P256dhKey: "k1", AuthKey: "a1",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.UpsertSubscription(ctx, sub); err != nil {
		t.Fatalf("UpsertSubscription: %v", err)
	}
	if err := repo.DeactivateSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("DeactivateSubscription: %v", err)
	}

	again := &core.Subscription{
		UserID: userID, Endpoint: "https://push.example/ep1",
		P256dhKey: "k2", AuthKey: "a2",
		CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}
	if err := repo.UpsertSubscription(ctx, again); err != nil {
		t.Fatalf("UpsertSubscription again: %v", err)
	}

	subs, err := repo.ActiveSubscriptions(ctx, userID)
	if err != nil {
		t.Fatalf("ActiveSubscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 active subscription, got %d", len(subs))
	}
	if subs[0].P256dhKey != "k2" {
		t.Errorf("keys not refreshed, got %q", subs[0].P256dhKey)
	}
}

func TestUsersWithActiveBudgets(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userID := seedUser(t, repo)
	cat, err := repo.GetCategoryByName(ctx, userID, "Housing")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	s, _ := core.ParseDate("2024-06-01")
	e, _ := core.ParseDate("2024-06-30")
	b := &core.Budget{
		UserID: userID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 10000}, PeriodType: core.Monthly,
		StartDate: s, EndDate: e, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	inside, _ := core.ParseDate("2024-06-15")
	users, err := repo.UsersWithActiveBudgets(ctx, inside)
	if err != nil {
		t.Fatalf("UsersWithActiveBudgets: %v", err)
	}
	if len(users) != 1 || users[0] != userID {
		t.Errorf("expected [%d], got %v", userID, users)
	}

	outside, _ := core.ParseDate("2024-07-15")
	users, err = repo.UsersWithActiveBudgets(ctx, outside)
	if err != nil {
		t.Fatalf("UsersWithActiveBudgets: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users outside window, got %v", users)
	}
}
