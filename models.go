package main

import (
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/chatbot"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// User owns categories, transactions and budgets
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Category represents a transaction category
type Category struct {
	ID        int64                   `json:"id"`
	UserID    int64                   `json:"user_id"`
	Name      string                  `json:"name"`
	Type      chatbot.TransactionType `json:"type"`
	Color     string                  `json:"color"`
	Status    bool                    `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Transaction represents a financial transaction
type Transaction struct {
	ID            int64                   `json:"id"`
	UserID        int64                   `json:"user_id"`
	CategoryID    *int64                  `json:"category_id"`
	Type          chatbot.TransactionType `json:"type"`
	Amount        decimal.Decimal         `json:"amount"`
	Description   string                  `json:"description"`
	Date          time.Time               `json:"date"`
	Status        bool                    `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	CategoryName  *string                 `json:"category_name"`
	CategoryColor *string                 `json:"category_color"`
}

// Budget is a spending limit over an inclusive date range
type Budget struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Status      bool            `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AnalyticsSummary contains per-user totals
type AnalyticsSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

// MonthlySeries is income and expense per calendar month, ready for a line chart
type MonthlySeries struct {
	Labels   []string         `json:"labels"`
	Datasets []MonthlyDataset `json:"datasets"`
}

type MonthlyDataset struct {
	Label string            `json:"label"`
	Data  []decimal.Decimal `json:"data"`
}

// CategoryAnalytics contains analytics data for a specific category
type CategoryAnalytics struct {
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// CategoryBreakdown splits category totals by type
type CategoryBreakdown struct {
	Income  []CategoryAnalytics `json:"income"`
	Expense []CategoryAnalytics `json:"expense"`
}

// BudgetStatus is how far an active budget has been used
type BudgetStatus struct {
	BudgetID       int64           `json:"budget_id"`
	Title          string          `json:"title"`
	BudgetLimit    decimal.Decimal `json:"budget_limit"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	Status         string          `json:"status"`
	Message        string          `json:"message"`
	Start          time.Time       `json:"start"`
	End            time.Time       `json:"end"`
}

// Suggestions is the financial advice payload
type Suggestions struct {
	Summary            SuggestionSummary `json:"summary"`
	BudgetAlerts       []BudgetAlert     `json:"budget_alerts"`
	SavingsSuggestions []Advice          `json:"savings_suggestions"`
	GeneralAdvice      []Advice          `json:"general_advice"`
}

type SuggestionSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	SavingsRate  decimal.Decimal `json:"savings_rate"`
}

type BudgetAlert struct {
	Budget              string           `json:"budget"`
	Limit               decimal.Decimal  `json:"limit"`
	Spent               decimal.Decimal  `json:"spent"`
	OverspendPercentage *decimal.Decimal `json:"overspend_percentage,omitempty"`
	UsagePercentage     *decimal.Decimal `json:"usage_percentage,omitempty"`
	Message             string           `json:"message"`
}

type Advice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AdminStats contains cross-user counts
type AdminStats struct {
	Users                int `json:"users"`
	Categories           int `json:"categories"`
	Budgets              int `json:"budgets"`
	TotalTransactions    int `json:"total_transactions"`
	ActiveTransactions   int `json:"active_transactions"`
	InactiveTransactions int `json:"inactive_transactions"`
}
