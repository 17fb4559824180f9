package chatbot

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestProcessor(s *fakeStore) *Processor {
	return NewProcessorWithClock(s.stores(), fixedClock, zerolog.Nop())
}

func TestProcessCreatesCategoryAndTransaction(t *testing.T) {
	s := newFakeStore()
	p := newTestProcessor(s)

	r := p.Process(context.Background(), IncomingMessage{Message: "I spent $45 on Groceries", UserID: 7})

	if r.TransactionCreated == nil || !*r.TransactionCreated {
		t.Fatalf("expected transactionCreated=true, got %+v", r)
	}
	if s.createCategoryCalls != 1 || len(s.categories[7]) != 1 {
		t.Fatalf("expected exactly one new category, got %d calls", s.createCategoryCalls)
	}
	if c := s.categories[7][0]; c.Name != "Groceries" || c.Type != Expense {
		t.Errorf("category = %+v", c)
	}
	if len(s.transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(s.transactions))
	}
	tx := s.transactions[0]
	if !tx.Amount.Equal(decimal.NewFromInt(45)) || tx.Type != Expense || tx.CategoryID != s.categories[7][0].ID {
		t.Errorf("transaction = %+v", tx)
	}
	if tx.Description != "Added via chatbot: i spent $45 on groceries" {
		t.Errorf("description = %q", tx.Description)
	}

	d := r.TransactionDetails
	if d == nil {
		t.Fatal("missing transaction details")
	}
	if !d.Balance.Equal(decimal.NewFromInt(-45)) {
		t.Errorf("balance = %s, want -45", d.Balance)
	}
	if d.Category != "Groceries" || d.Type != Expense {
		t.Errorf("details = %+v", d)
	}
	if !strings.Contains(r.Message, "Successfully spent $45 in Groceries") ||
		!strings.Contains(r.Message, "Created new 'Groceries' category.") ||
		!strings.HasSuffix(r.Message, "\nYour current balance is: $-45.00") {
		t.Errorf("message = %q", r.Message)
	}
}

func TestProcessSameMessageTwiceReusesCategory(t *testing.T) {
	s := newFakeStore()
	p := newTestProcessor(s)
	msg := IncomingMessage{Message: "I spent $45 on Groceries", UserID: 7}

	p.Process(context.Background(), msg)
	r := p.Process(context.Background(), msg)

	if len(s.transactions) != 2 {
		t.Fatalf("expected two transactions, got %d", len(s.transactions))
	}
	if s.createCategoryCalls != 1 {
		t.Errorf("expected one category creation, got %d", s.createCategoryCalls)
	}
	if s.transactions[0].CategoryID != s.transactions[1].CategoryID {
		t.Error("transactions should share the category")
	}
	if strings.Contains(r.Message, "Created new") {
		t.Errorf("second reply should not announce a new category: %q", r.Message)
	}
	if !r.TransactionDetails.Balance.Equal(decimal.NewFromInt(-90)) {
		t.Errorf("balance = %s, want -90", r.TransactionDetails.Balance)
	}
}

func TestProcessIncome(t *testing.T) {
	s := newFakeStore()
	r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: "I earned $500 in Salary", UserID: 1})

	if !r.Created() {
		t.Fatalf("expected success, got %+v", r)
	}
	if r.TransactionDetails.Type != Income {
		t.Errorf("type = %s", r.TransactionDetails.Type)
	}
	if !strings.HasPrefix(r.Message, "Successfully received $500 in Salary on ") {
		t.Errorf("message = %q", r.Message)
	}
	if !strings.HasSuffix(r.Message, "$500.00") {
		t.Errorf("balance missing from %q", r.Message)
	}
}

func TestProcessNeedsAmountAndCategory(t *testing.T) {
	for _, text := range []string{"hello there", "spent 20 dollars", "bought stuff on sale", "spent $0 on gum"} {
		s := newFakeStore()
		r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: text, UserID: 1})
		if r.TransactionCreated == nil || *r.TransactionCreated {
			t.Errorf("%q: expected transactionCreated=false, got %+v", text, r)
		}
		if r.Message != transactionHelp {
			t.Errorf("%q: message = %q", text, r.Message)
		}
		if len(s.transactions) != 0 || s.createCategoryCalls != 0 {
			t.Errorf("%q: nothing should be written", text)
		}
	}
}

func TestProcessStoreFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*fakeStore)
		wantCreated bool
		wantPrefix  string
	}{
		{"category list fails", func(s *fakeStore) { s.listErr = errStoreDown }, false, "Couldn't find or create the Coffee category"},
		{"category create fails", func(s *fakeStore) { s.createCategoryErr = errStoreDown }, false, "Couldn't find or create the Coffee category"},
		{"transaction insert fails", func(s *fakeStore) { s.createTxErr = errStoreDown }, false, "Error: store down"},
		{"new category without id", func(s *fakeStore) { s.zeroIDs = true }, false, "Created the Coffee category but couldn't retrieve its ID"},
		{"existing category without id", func(s *fakeStore) {
			s.categories[3] = []Category{{ID: 0, Name: "Coffee", Type: Expense}}
		}, false, "Found the Coffee category but couldn't retrieve its ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			tt.setup(s)
			r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: "spent 4.50 on coffee", UserID: 3})
			if r.Created() != tt.wantCreated {
				t.Errorf("created = %v, want %v", r.Created(), tt.wantCreated)
			}
			if !strings.HasPrefix(r.Message, tt.wantPrefix) {
				t.Errorf("message = %q, want prefix %q", r.Message, tt.wantPrefix)
			}
		})
	}
}

func TestProcessTransactionWithoutID(t *testing.T) {
	s := newFakeStore()
	s.categories[3] = []Category{{ID: 11, Name: "coffee", Type: Expense}}
	s.nextID = 0
	s.zeroIDs = false
	p := newTestProcessor(s)

	r := p.Process(context.Background(), IncomingMessage{Message: "spent 4.50 on coffee", UserID: 3})
	if !r.Created() || r.Message != "Transaction was created but there was an issue retrieving its ID." {
		t.Errorf("reply = %+v", r)
	}
}

func TestProcessBalanceFailureReportsZero(t *testing.T) {
	s := newFakeStore()
	s.balanceErr = errStoreDown
	r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: "spent 4.50 on coffee", UserID: 3})

	if !r.Created() {
		t.Fatalf("balance errors must not fail the transaction: %+v", r)
	}
	if !r.TransactionDetails.Balance.IsZero() || !strings.HasSuffix(r.Message, "$0.00") {
		t.Errorf("reply = %+v", r)
	}
}

func TestProcessBudget(t *testing.T) {
	s := newFakeStore()
	r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: "Set budget of $500 for April", UserID: 2})

	if r.BudgetCreated == nil || !*r.BudgetCreated {
		t.Fatalf("expected budgetCreated=true, got %+v", r)
	}
	if r.TransactionCreated != nil {
		t.Error("budget replies carry no transaction flag")
	}
	if len(s.budgets) != 1 {
		t.Fatalf("expected one budget, got %d", len(s.budgets))
	}
	b := s.budgets[0]
	if b.Title != "April 2026 Budget" || !b.Amount.Equal(decimal.NewFromInt(500)) || b.UserID != 2 {
		t.Errorf("budget = %+v", b)
	}
	want := "Successfully created budget 'April 2026 Budget' of $500 from April 01, 2026 to April 30, 2026."
	if r.Message != want {
		t.Errorf("message = %q, want %q", r.Message, want)
	}
	if r.BudgetDetails == nil || !r.BudgetDetails.StartDate.Equal(day(2026, 4, 1)) || !r.BudgetDetails.EndDate.Equal(day(2026, 4, 30)) {
		t.Errorf("details = %+v", r.BudgetDetails)
	}
	if len(s.transactions) != 0 {
		t.Error("budget messages must not create transactions")
	}
}

func TestProcessBudgetOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		setup       func(*fakeStore)
		wantCreated bool
		wantMessage string
	}{
		{"no amount", "set budget for travel", func(*fakeStore) {}, false, budgetHelp},
		{"store error", "set budget of 100", func(s *fakeStore) { s.createBudgetErr = errStoreDown }, false, "Error creating budget: store down"},
		{"no id", "set budget of 100", func(s *fakeStore) { s.zeroIDs = true }, true, "Budget was created but there was an issue retrieving its ID."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			tt.setup(s)
			r := newTestProcessor(s).Process(context.Background(), IncomingMessage{Message: tt.text, UserID: 2})
			if r.BudgetCreated == nil || *r.BudgetCreated != tt.wantCreated {
				t.Errorf("budgetCreated = %v, want %v", r.BudgetCreated, tt.wantCreated)
			}
			if r.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", r.Message, tt.wantMessage)
			}
			if r.BudgetDetails != nil {
				t.Error("only successful budgets carry details")
			}
		})
	}
}

func TestCategoryResolverIsCaseInsensitive(t *testing.T) {
	s := newFakeStore()
	r := NewCategoryResolver(s, zerolog.Nop())
	ctx := context.Background()

	first, err := r.Resolve(ctx, 5, "travel", Expense)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(ctx, 5, "Travel", Expense)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Created || second.Created || first.ID != second.ID {
		t.Errorf("first = %+v, second = %+v", first, second)
	}

	income, err := r.Resolve(ctx, 5, "Travel", Income)
	if err != nil {
		t.Fatal(err)
	}
	if income.ID == first.ID || !income.Created {
		t.Errorf("type is part of the key: %+v", income)
	}

	other, err := r.Resolve(ctx, 6, "travel", Expense)
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Error("categories are per user")
	}
}

func TestCategoryResolverRejectsBadInput(t *testing.T) {
	r := NewCategoryResolver(newFakeStore(), zerolog.Nop())
	if _, err := r.Resolve(context.Background(), 1, "  ", Expense); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := r.Resolve(context.Background(), 1, "Food", "Transfer"); err == nil {
		t.Error("expected error for unknown type")
	}
}
