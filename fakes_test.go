package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/chatbot"
)

// memStore keeps users and categories in memory and implements dataStore. Setting err makes
// every call fail with it.
type memStore struct {
	users        map[int64]User
	categories   map[int64]Category
	transactions map[int64]Transaction
	budgets      map[int64]Budget
	nextID       int64
	err          error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int64]User{},
		categories:   map[int64]Category{},
		transactions: map[int64]Transaction{},
		budgets:      map[int64]Budget{},
		nextID:       100,
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) userExists(id int64) error {
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("%w: user %d", errNotFound, id)
	}
	return nil
}

func (m *memStore) Ping(context.Context) error { return m.err }

func (m *memStore) CreateUser(_ context.Context, name, email string, isAdmin bool) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return User{}, fmt.Errorf("%w: email %s", errConflict, email)
		}
	}
	u := User{ID: m.id(), Name: name, Email: email, IsAdmin: isAdmin, Status: true}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return User{}, errNotFound
	}
	return u, nil
}

func (m *memStore) ListUsers(context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, m.err
}

func (m *memStore) UpdateUser(_ context.Context, id int64, name, email *string, isAdmin *bool) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return User{}, errNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	if isAdmin != nil {
		u.IsAdmin = *isAdmin
	}
	m.users[id] = u
	return u, nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return errNotFound
	}
	delete(m.users, id)
	for cid, c := range m.categories {
		if c.UserID == id {
			delete(m.categories, cid)
		}
	}
	return nil
}

func (m *memStore) FindCategoriesForUser(_ context.Context, userID int64) ([]chatbot.Category, error) {
	var out []chatbot.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			out = append(out, chatbot.Category{ID: c.ID, Name: c.Name, Type: c.Type})
		}
	}
	return out, m.err
}

func (m *memStore) CreateCategory(_ context.Context, userID int64, name string, typ chatbot.TransactionType) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if err := m.userExists(userID); err != nil {
		return 0, err
	}
	c := Category{ID: m.id(), UserID: userID, Name: name, Type: typ, Color: "#123456", Status: true}
	m.categories[c.ID] = c
	return c.ID, nil
}

func (m *memStore) ListCategories(_ context.Context, userID int64, typ chatbot.TransactionType) ([]Category, error) {
	out := make([]Category, 0)
	for _, c := range m.categories {
		if c.UserID == userID && (typ == "" || c.Type == typ) {
			out = append(out, c)
		}
	}
	return out, m.err
}

func (m *memStore) GetCategory(_ context.Context, id int64) (Category, error) {
	if m.err != nil {
		return Category{}, m.err
	}
	c, ok := m.categories[id]
	if !ok {
		return Category{}, errNotFound
	}
	return c, nil
}

func (m *memStore) UpdateCategory(_ context.Context, id int64, name string, typ chatbot.TransactionType, color string) (Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return Category{}, errNotFound
	}
	c.Name, c.Type = name, typ
	if color != "" {
		c.Color = color
	}
	m.categories[id] = c
	return c, m.err
}

func (m *memStore) DeleteCategory(_ context.Context, id int64) (int64, error) {
	c, ok := m.categories[id]
	if !ok {
		return 0, errNotFound
	}
	delete(m.categories, id)
	return c.UserID, m.err
}

func (m *memStore) CreateTransaction(_ context.Context, userID, categoryID int64, typ chatbot.TransactionType, amount decimal.Decimal, description string, date time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if err := m.userExists(userID); err != nil {
		return 0, err
	}
	cid := categoryID
	t := Transaction{ID: m.id(), UserID: userID, CategoryID: &cid, Type: typ, Amount: amount, Description: description, Date: date, Status: true}
	m.transactions[t.ID] = t
	return t.ID, nil
}

func (m *memStore) GetTransaction(_ context.Context, id int64) (Transaction, error) {
	t, ok := m.transactions[id]
	if !ok {
		return Transaction{}, errNotFound
	}
	return t, m.err
}

func (m *memStore) ListTransactionsForUser(_ context.Context, userID int64, _ int) ([]Transaction, error) {
	out := make([]Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, m.err
}

func (m *memStore) UpdateTransaction(_ context.Context, id, categoryID int64, typ chatbot.TransactionType, amount decimal.Decimal, description string, date time.Time, status bool) error {
	t, ok := m.transactions[id]
	if !ok {
		return errNotFound
	}
	cid := categoryID
	t.CategoryID, t.Type, t.Amount, t.Description, t.Date, t.Status = &cid, typ, amount, description, date, status
	m.transactions[id] = t
	return m.err
}

func (m *memStore) DeleteTransaction(_ context.Context, id int64) (int64, error) {
	t, ok := m.transactions[id]
	if !ok {
		return 0, errNotFound
	}
	delete(m.transactions, id)
	return t.UserID, m.err
}

func (m *memStore) CreateBudget(_ context.Context, userID int64, title string, amount decimal.Decimal, description string, start, end time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if err := m.userExists(userID); err != nil {
		return 0, err
	}
	b := Budget{ID: m.id(), UserID: userID, Title: title, Amount: amount, Description: description, StartDate: start, EndDate: end, Status: true}
	m.budgets[b.ID] = b
	return b.ID, nil
}

func (m *memStore) GetBudget(_ context.Context, id int64) (Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return Budget{}, errNotFound
	}
	return b, m.err
}

func (m *memStore) ListBudgetsForUser(_ context.Context, userID int64) ([]Budget, error) {
	out := make([]Budget, 0)
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, m.err
}

func (m *memStore) DeleteBudget(_ context.Context, id int64) (int64, error) {
	b, ok := m.budgets[id]
	if !ok {
		return 0, errNotFound
	}
	delete(m.budgets, id)
	return b.UserID, m.err
}

func (m *memStore) Summary(_ context.Context, userID int64) (AnalyticsSummary, error) {
	var sum AnalyticsSummary
	for _, t := range m.transactions {
		if t.UserID != userID || !t.Status {
			continue
		}
		if t.Type == chatbot.Income {
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		} else {
			sum.TotalExpense = sum.TotalExpense.Add(t.Amount)
		}
	}
	sum.TotalBalance = sum.TotalIncome.Sub(sum.TotalExpense)
	sum.TotalSavings = sum.TotalBalance
	return sum, m.err
}

func (m *memStore) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	sum, err := m.Summary(ctx, userID)
	return sum.TotalBalance, err
}

func (m *memStore) MonthlyTotals(context.Context, int64) ([]monthTotal, error) { return nil, m.err }

func (m *memStore) CategoryTotals(context.Context, int64) ([]categoryTotal, error) {
	return nil, m.err
}

func (m *memStore) ActiveBudgetUsage(context.Context, int64, time.Time) ([]budgetUsage, error) {
	return nil, m.err
}

func (m *memStore) AdminStats(context.Context) (AdminStats, error) {
	return AdminStats{Users: len(m.users), Categories: len(m.categories), Budgets: len(m.budgets)}, m.err
}

// recordingCache is an in-memory responseCache that remembers invalidations.
type recordingCache struct {
	entries     map[string][]byte
	invalidated []int64
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]byte{}}
}

func (c *recordingCache) get(_ context.Context, key string, dst interface{}) bool {
	data, ok := c.entries[key]
	return ok && json.Unmarshal(data, dst) == nil
}

func (c *recordingCache) set(_ context.Context, key string, v interface{}, _ time.Duration) {
	if data, err := json.Marshal(v); err == nil {
		c.entries[key] = data
	}
}

func (c *recordingCache) invalidateUser(_ context.Context, userID int64) {
	c.invalidated = append(c.invalidated, userID)
	suffix := fmt.Sprintf(":%d", userID)
	for key := range c.entries {
		if strings.HasSuffix(key, suffix) {
			delete(c.entries, key)
		}
	}
}
