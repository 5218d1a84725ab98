package services

import (
	"context"
	"strings"
	"sync"

	"spendwatch/internal/core"
	"spendwatch/internal/push"
)

// In-memory store fakes. They mirror the SQLite repository's contract
// closely enough for service-level tests: visibility rules, overlap
// checks and inclusive date ranges behave the same.

type fakeExpenseStore struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]core.Expense
	sumErr   error
}

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{expenses: make(map[int64]core.Expense)}
}

func (f *fakeExpenseStore) CreateExpense(_ context.Context, e *core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.expenses[e.ID] = *e
	return nil
}

func (f *fakeExpenseStore) GetExpense(_ context.Context, userID, id int64) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context, userID int64, filter core.ExpenseFilter) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Expense
	for _, e := range f.expenses {
		if e.UserID != userID {
			continue
		}
		if filter.CategoryID != 0 && e.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExpenseStore) UpdateExpense(_ context.Context, e *core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.expenses[e.ID]
	if !ok || old.UserID != e.UserID {
		return core.ErrNotFound
	}
	f.expenses[e.ID] = *e
	return nil
}

func (f *fakeExpenseStore) DeleteExpense(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok || e.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.expenses, id)
	return nil
}

func inRange(d core.Date, start, end *core.Date) bool {
	if start != nil && d.Before(start.Time) {
		return false
	}
	if end != nil && d.After(end.Time) {
		return false
	}
	return true
}

func (f *fakeExpenseStore) SumSpending(_ context.Context, userID, categoryID int64, start, end *core.Date) (core.Money, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sumErr != nil {
		return core.Money{}, f.sumErr
	}
	var total int64
	for _, e := range f.expenses {
		if e.UserID != userID {
			continue
		}
		if categoryID != 0 && e.CategoryID != categoryID {
			continue
		}
		if !inRange(e.Date, start, end) {
			continue
		}
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}, nil
}

func (f *fakeExpenseStore) CategorySpending(_ context.Context, userID int64, start, end *core.Date) ([]core.CategorySpending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCat := make(map[int64]*core.CategorySpending)
	for _, e := range f.expenses {
		if e.UserID != userID || !inRange(e.Date, start, end) {
			continue
		}
		cs, ok := byCat[e.CategoryID]
		if !ok {
			cs = &core.CategorySpending{CategoryID: e.CategoryID}
			byCat[e.CategoryID] = cs
		}
		cs.Total.Cents += e.Amount.Cents
		cs.Count++
	}
	var out []core.CategorySpending
	for _, cs := range byCat {
		out = append(out, *cs)
	}
	return out, nil
}

func (f *fakeExpenseStore) SpendingStats(_ context.Context, userID int64, start, end *core.Date) (core.SpendingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats core.SpendingStats
	for _, e := range f.expenses {
		if e.UserID != userID || !inRange(e.Date, start, end) {
			continue
		}
		stats.Total.Cents += e.Amount.Cents
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average.Cents = stats.Total.Cents / stats.Count
	}
	return stats, nil
}

func (f *fakeExpenseStore) MonthlyTotals(_ context.Context, userID int64, since core.Date) ([]core.MonthlyTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byMonth := make(map[[2]int]int64)
	for _, e := range f.expenses {
		if e.UserID != userID || e.Date.Before(since.Time) {
			continue
		}
		key := [2]int{e.Date.Year(), int(e.Date.Month())}
		byMonth[key] += e.Amount.Cents
	}
	var out []core.MonthlyTotal
	for key, cents := range byMonth {
		out = append(out, core.MonthlyTotal{Year: key[0], Month: key[1], Total: core.Money{Cents: cents}})
	}
	return out, nil
}

type fakeCategoryStore struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]core.Category
	inUse      map[int64]bool
}

func newFakeCategoryStore() *fakeCategoryStore {
	f := &fakeCategoryStore{
		categories: make(map[int64]core.Category),
		inUse:      make(map[int64]bool),
	}
	for _, name := range []string{"Restaurants", "Housing", "Grocery", "Leisure", "Uncategorized"} {
		f.nextID++
		f.categories[f.nextID] = core.Category{ID: f.nextID, Name: name, IsDefault: true}
	}
	return f
}

func (f *fakeCategoryStore) visible(c core.Category, userID int64) bool {
	return c.IsDefault || c.UserID == userID
}

func (f *fakeCategoryStore) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Category
	for _, c := range f.categories {
		if f.visible(c, userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || !f.visible(c, userID) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategoryStore) GetCategoryByName(_ context.Context, userID int64, name string) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) && f.visible(c, userID) {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.categories[c.ID]
	if !ok || old.UserID != c.UserID {
		return core.ErrCategoryNotFound
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCategoryStore) DeleteCategory(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return core.ErrCategoryNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryStore) CategoryInUse(_ context.Context, categoryID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inUse[categoryID], nil
}

type fakeBudgetStore struct {
	mu      sync.Mutex
	nextID  int64
	budgets map[int64]core.Budget
}

func newFakeBudgetStore() *fakeBudgetStore {
	return &fakeBudgetStore{budgets: make(map[int64]core.Budget)}
}

func (f *fakeBudgetStore) CreateBudget(_ context.Context, b *core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.budgets {
		if existing.UserID == b.UserID &&
			existing.CategoryID == b.CategoryID &&
			existing.PeriodType == b.PeriodType &&
			!existing.StartDate.After(b.EndDate.Time) &&
			!existing.EndDate.Before(b.StartDate.Time) {
			return core.ErrBudgetOverlap
		}
	}
	f.nextID++
	b.ID = f.nextID
	f.budgets[b.ID] = *b
	return nil
}

func (f *fakeBudgetStore) GetBudget(_ context.Context, userID, id int64) (core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (f *fakeBudgetStore) ListBudgets(_ context.Context, userID int64, filter core.BudgetFilter) ([]core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Budget
	for _, b := range f.budgets {
		if b.UserID != userID {
			continue
		}
		if filter.CategoryID != 0 && b.CategoryID != filter.CategoryID {
			continue
		}
		if filter.PeriodType != "" && b.PeriodType != filter.PeriodType {
			continue
		}
		if filter.ActiveOn != nil && !b.Active(*filter.ActiveOn) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBudgetStore) UpdateBudget(_ context.Context, b *core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.budgets[b.ID]
	if !ok || old.UserID != b.UserID {
		return core.ErrNotFound
	}
	f.budgets[b.ID] = *b
	return nil
}

func (f *fakeBudgetStore) DeleteBudget(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[id]
	if !ok || b.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.budgets, id)
	return nil
}

func (f *fakeBudgetStore) UsersWithActiveBudgets(_ context.Context, today core.Date) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, b := range f.budgets {
		if b.Active(today) && !seen[b.UserID] {
			seen[b.UserID] = true
			out = append(out, b.UserID)
		}
	}
	return out, nil
}

type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]core.Subscription
	prefs  map[int64]core.Preferences
	logs   []core.NotificationLog
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		subs:  make(map[int64]core.Subscription),
		prefs: make(map[int64]core.Preferences),
	}
}

func (f *fakeNotificationStore) UpsertSubscription(_ context.Context, s *core.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.subs {
		if existing.UserID == s.UserID && existing.Endpoint == s.Endpoint {
			s.ID = id
			s.Active = true
			f.subs[id] = *s
			return nil
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.Active = true
	f.subs[s.ID] = *s
	return nil
}

func (f *fakeNotificationStore) ActiveSubscriptions(_ context.Context, userID int64) ([]core.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Subscription
	for _, s := range f.subs {
		if s.UserID == userID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) DeactivateSubscription(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if ok {
		s.Active = false
		f.subs[id] = s
	}
	return nil
}

func (f *fakeNotificationStore) DeleteSubscription(_ context.Context, userID int64, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.subs {
		if s.UserID == userID && s.Endpoint == endpoint {
			delete(f.subs, id)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeNotificationStore) GetPreferences(_ context.Context, userID int64) (core.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		return core.Preferences{}, core.ErrNotFound
	}
	return p, nil
}

func (f *fakeNotificationStore) CreatePreferences(_ context.Context, p *core.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prefs[p.UserID]; ok {
		return core.ErrAlreadyExists
	}
	f.nextID++
	p.ID = f.nextID
	f.prefs[p.UserID] = *p
	return nil
}

func (f *fakeNotificationStore) UpdatePreferences(_ context.Context, p *core.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prefs[p.UserID]; !ok {
		return core.ErrNotFound
	}
	f.prefs[p.UserID] = *p
	return nil
}

func (f *fakeNotificationStore) CreateLog(_ context.Context, l *core.NotificationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeNotificationStore) ListLogs(_ context.Context, userID int64, limit int) ([]core.NotificationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.NotificationLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].UserID == userID {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

// fakeSender records deliveries and simulates dead endpoints.
type fakeSender struct {
	mu        sync.Mutex
	delivered []string
	gone      map[string]bool
	err       error
}

func newFakeSender() *fakeSender {
	return &fakeSender{gone: make(map[string]bool)}
}

func (f *fakeSender) Send(_ context.Context, sub core.Subscription, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gone[sub.Endpoint] {
		return push.ErrEndpointGone
	}
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, sub.Endpoint)
	return nil
}

type publishedCheck struct {
	UserID int64
	Reason string
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedCheck
	err       error
}

func (f *fakePublisher) PublishBudgetCheck(_ context.Context, userID int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedCheck{UserID: userID, Reason: reason})
	return nil
}
