// Package chatbot turns short free-text finance notes ("spent $45 on groceries yesterday",
// "set budget of $500 for april") into transactions and budgets.
package chatbot

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType labels money flowing in or out.
type TransactionType string

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// IncomingMessage is one chat line from a user. It is never persisted.
type IncomingMessage struct {
	Message string `json:"message" binding:"required"`
	UserID  int64  `json:"userId" binding:"required"`
}

// ExtractedTransaction is what the transaction branch pulls out of a message.
type ExtractedTransaction struct {
	Amount      decimal.Decimal
	Category    string
	Type        TransactionType
	Date        time.Time
	Description string
}

// ExtractedBudget is what the budget branch pulls out of a message. Start is never after End.
type ExtractedBudget struct {
	Title       string
	Amount      decimal.Decimal
	Start       time.Time
	End         time.Time
	Description string
}

// Category is the subset of a stored category the resolver needs.
type Category struct {
	ID   int64
	Name string
	Type TransactionType
}

// CategoryStore lists and creates a user's categories.
type CategoryStore interface {
	FindCategoriesForUser(ctx context.Context, userID int64) ([]Category, error)
	CreateCategory(ctx context.Context, userID int64, name string, typ TransactionType) (int64, error)
}

// TransactionStore persists a transaction and returns its id.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, userID, categoryID int64, typ TransactionType, amount decimal.Decimal, description string, date time.Time) (int64, error)
}

// BudgetStore persists a budget and returns its id.
type BudgetStore interface {
	CreateBudget(ctx context.Context, userID int64, title string, amount decimal.Decimal, description string, start, end time.Time) (int64, error)
}

// BalanceProvider reports income minus expense for a user.
type BalanceProvider interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Reply is the payload returned for every processed message, whatever happened.
type Reply struct {
	Message            string              `json:"message"`
	TransactionCreated *bool               `json:"transactionCreated,omitempty"`
	BudgetCreated      *bool               `json:"budgetCreated,omitempty"`
	TransactionDetails *TransactionDetails `json:"transactionDetails,omitempty"`
	BudgetDetails      *BudgetDetails      `json:"budgetDetails,omitempty"`
	Error              string              `json:"error,omitempty"`
}

// TransactionDetails is the machine-readable part of a successful transaction reply.
type TransactionDetails struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
	Date     time.Time       `json:"date"`
	Balance  decimal.Decimal `json:"balance"`
}

// BudgetDetails is the machine-readable part of a successful budget reply.
type BudgetDetails struct {
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// Created reports whether the reply's branch succeeded.
func (r Reply) Created() bool {
	if r.TransactionCreated != nil {
		return *r.TransactionCreated
	}
	return r.BudgetCreated != nil && *r.BudgetCreated
}

func transactionReply(msg string, created bool) Reply {
	return Reply{Message: msg, TransactionCreated: &created}
}

func budgetReply(msg string, created bool) Reply {
	return Reply{Message: msg, BudgetCreated: &created}
}
