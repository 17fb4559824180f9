package chatbot

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store down")

type fakeTransaction struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

type fakeBudget struct {
	ID          int64
	UserID      int64
	Title       string
	Amount      decimal.Decimal
	Description string
	Start, End  time.Time
}

// fakeStore keeps everything in memory and implements every collaborator interface.
type fakeStore struct {
	categories   map[int64][]Category
	transactions []fakeTransaction
	budgets      []fakeBudget
	nextID       int64

	createCategoryCalls int
	listErr             error
	createCategoryErr   error
	createTxErr         error
	createBudgetErr     error
	balanceErr          error
	zeroIDs             bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{categories: map[int64][]Category{}, nextID: 1}
}

func (s *fakeStore) id() int64 {
	if s.zeroIDs {
		return 0
	}
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) FindCategoriesForUser(_ context.Context, userID int64) ([]Category, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]Category(nil), s.categories[userID]...), nil
}

func (s *fakeStore) CreateCategory(_ context.Context, userID int64, name string, typ TransactionType) (int64, error) {
	s.createCategoryCalls++
	if s.createCategoryErr != nil {
		return 0, s.createCategoryErr
	}
	c := Category{ID: s.id(), Name: name, Type: typ}
	s.categories[userID] = append(s.categories[userID], c)
	return c.ID, nil
}

func (s *fakeStore) CreateTransaction(_ context.Context, userID, categoryID int64, typ TransactionType, amount decimal.Decimal, description string, date time.Time) (int64, error) {
	if s.createTxErr != nil {
		return 0, s.createTxErr
	}
	t := fakeTransaction{ID: s.id(), UserID: userID, CategoryID: categoryID, Type: typ, Amount: amount, Description: description, Date: date}
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

func (s *fakeStore) CreateBudget(_ context.Context, userID int64, title string, amount decimal.Decimal, description string, start, end time.Time) (int64, error) {
	if s.createBudgetErr != nil {
		return 0, s.createBudgetErr
	}
	b := fakeBudget{ID: s.id(), UserID: userID, Title: title, Amount: amount, Description: description, Start: start, End: end}
	s.budgets = append(s.budgets, b)
	return b.ID, nil
}

func (s *fakeStore) GetBalance(_ context.Context, userID int64) (decimal.Decimal, error) {
	if s.balanceErr != nil {
		return decimal.Zero, s.balanceErr
	}
	balance := decimal.Zero
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if t.Type == Income {
			balance = balance.Add(t.Amount)
		} else {
			balance = balance.Sub(t.Amount)
		}
	}
	return balance, nil
}

func (s *fakeStore) stores() Stores {
	return Stores{Categories: s, Transactions: s, Budgets: s, Balance: s}
}

// stubParser answers from a fixed table and records what it was asked.
type stubParser struct {
	answers map[string]time.Time
	calls   []string
}

func (p *stubParser) Parse(phrase string, _ time.Time, _ bool) (time.Time, bool) {
	p.calls = append(p.calls, phrase)
	t, ok := p.answers[phrase]
	return t, ok
}

var testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
