package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/chatbot"
)

var hundred = decimal.NewFromInt(100)

type monthTotal struct {
	Month string // YYYY-MM
	Type  chatbot.TransactionType
	Total decimal.Decimal
}

type categoryTotal struct {
	Name  string
	Color string
	Type  chatbot.TransactionType
	Total decimal.Decimal
	Count int
}

// budgetUsage is a budget with the expense total dated inside its range.
type budgetUsage struct {
	Budget Budget
	Spent  decimal.Decimal
}

// Summary totals the user's active transactions.
func (s *pgStore) Summary(ctx context.Context, userID int64) (AnalyticsSummary, error) {
	var sum AnalyticsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'Income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'Expense' THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = $1 AND status`, userID).Scan(&sum.TotalIncome, &sum.TotalExpense)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("summing transactions: %w", err)
	}
	sum.TotalBalance = sum.TotalIncome.Sub(sum.TotalExpense)
	sum.TotalSavings = sum.TotalBalance
	return sum, nil
}

// GetBalance is income minus expense, always read from the database.
func (s *pgStore) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	sum, err := s.Summary(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return sum.TotalBalance, nil
}

func (s *pgStore) MonthlyTotals(ctx context.Context, userID int64) ([]monthTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(date, 'YYYY-MM') AS month, type, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND status
		GROUP BY month, type
		ORDER BY month`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []monthTotal
	for rows.Next() {
		var m monthTotal
		if err := rows.Scan(&m.Month, &m.Type, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CategoryTotals reports every category of the user, including unused ones.
func (s *pgStore) CategoryTotals(ctx context.Context, userID int64) ([]categoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.color, c.type, COALESCE(SUM(t.amount), 0), COUNT(t.id)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id AND t.status
		WHERE c.user_id = $1
		GROUP BY c.id, c.name, c.color, c.type
		ORDER BY c.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categoryTotal
	for rows.Next() {
		var c categoryTotal
		if err := rows.Scan(&c.Name, &c.Color, &c.Type, &c.Total, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActiveBudgetUsage returns the user's active budgets whose range contains day.
func (s *pgStore) ActiveBudgetUsage(ctx context.Context, userID int64, day time.Time) ([]budgetUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.title, b.amount, b.description, b.start_date, b.end_date, b.status, b.created_at,
		       COALESCE((
		           SELECT SUM(t.amount) FROM transactions t
		           WHERE t.user_id = b.user_id AND t.type = 'Expense' AND t.status
		             AND t.date BETWEEN b.start_date AND b.end_date
		       ), 0)
		FROM budgets b
		WHERE b.user_id = $1 AND b.status AND b.start_date <= $2::date AND b.end_date >= $2::date
		ORDER BY b.start_date, b.id`, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []budgetUsage
	for rows.Next() {
		var u budgetUsage
		b := &u.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount, &b.Description, &b.StartDate, &b.EndDate,
			&b.Status, &b.CreatedAt, &u.Spent); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *pgStore) AdminStats(ctx context.Context) (AdminStats, error) {
	var st AdminStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM budgets),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM transactions WHERE status),
			(SELECT COUNT(*) FROM transactions WHERE NOT status)`).Scan(
		&st.Users, &st.Categories, &st.Budgets,
		&st.TotalTransactions, &st.ActiveTransactions, &st.InactiveTransactions,
	)
	return st, err
}

// buildMonthlySeries lays the totals out as one Income and one Expense dataset over
// ascending month labels. The month of now is always present.
func buildMonthlySeries(rows []monthTotal, now time.Time) MonthlySeries {
	byMonth := map[string]map[chatbot.TransactionType]decimal.Decimal{
		now.Format("2006-01"): {},
	}
	for _, r := range rows {
		m, ok := byMonth[r.Month]
		if !ok {
			m = map[chatbot.TransactionType]decimal.Decimal{}
			byMonth[r.Month] = m
		}
		m[r.Type] = m[r.Type].Add(r.Total)
	}

	labels := make([]string, 0, len(byMonth))
	for month := range byMonth {
		labels = append(labels, month)
	}
	sort.Strings(labels)

	series := MonthlySeries{Labels: labels}
	for _, typ := range []chatbot.TransactionType{chatbot.Income, chatbot.Expense} {
		ds := MonthlyDataset{Label: string(typ), Data: make([]decimal.Decimal, len(labels))}
		for i, month := range labels {
			ds.Data[i] = byMonth[month][typ]
		}
		series.Datasets = append(series.Datasets, ds)
	}
	return series
}

func buildCategoryBreakdown(rows []categoryTotal) CategoryBreakdown {
	out := CategoryBreakdown{
		Income:  make([]CategoryAnalytics, 0),
		Expense: make([]CategoryAnalytics, 0),
	}
	for _, r := range rows {
		ca := CategoryAnalytics{Name: r.Name, Color: r.Color, Total: r.Total, Count: r.Count}
		switch r.Type {
		case chatbot.Income:
			out.Income = append(out.Income, ca)
		case chatbot.Expense:
			out.Expense = append(out.Expense, ca)
		}
	}
	return out
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func budgetStatus(u budgetUsage) BudgetStatus {
	pct := percentOf(u.Spent, u.Budget.Amount)
	st := BudgetStatus{
		BudgetID:       u.Budget.ID,
		Title:          u.Budget.Title,
		BudgetLimit:    u.Budget.Amount,
		TotalSpent:     u.Spent,
		Remaining:      u.Budget.Amount.Sub(u.Spent),
		PercentageUsed: pct,
		Status:         "normal",
		Message:        "Budget is on track",
		Start:          u.Budget.StartDate,
		End:            u.Budget.EndDate,
	}
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(90)):
		st.Status, st.Message = "danger", "Budget limit almost reached!"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(75)):
		st.Status, st.Message = "warning", "Approaching budget limit"
	}
	return st
}

// buildSuggestions turns totals and budget usage into advice.
func buildSuggestions(sum AnalyticsSummary, usages []budgetUsage) Suggestions {
	out := Suggestions{
		Summary: SuggestionSummary{
			TotalIncome:  sum.TotalIncome,
			TotalExpense: sum.TotalExpense,
			SavingsRate:  percentOf(sum.TotalIncome.Sub(sum.TotalExpense), sum.TotalIncome),
		},
		BudgetAlerts:       make([]BudgetAlert, 0),
		SavingsSuggestions: make([]Advice, 0),
		GeneralAdvice:      make([]Advice, 0),
	}

	for _, u := range usages {
		limit := u.Budget.Amount
		if !limit.IsPositive() {
			continue
		}
		alert := BudgetAlert{Budget: u.Budget.Title, Limit: limit, Spent: u.Spent}
		switch {
		case u.Spent.GreaterThan(limit):
			over := percentOf(u.Spent.Sub(limit), limit)
			alert.OverspendPercentage = &over
			alert.Message = fmt.Sprintf("⚠️ You've exceeded your %s budget by %s%%", u.Budget.Title, over.String())
		case u.Spent.GreaterThan(limit.Mul(decimal.NewFromFloat(0.8))):
			usage := percentOf(u.Spent, limit)
			alert.UsagePercentage = &usage
			alert.Message = fmt.Sprintf("⚠️ You're close to exceeding your %s budget", u.Budget.Title)
		default:
			continue
		}
		out.BudgetAlerts = append(out.BudgetAlerts, alert)
	}

	if sum.TotalIncome.IsPositive() {
		rate := out.Summary.SavingsRate
		switch {
		case rate.LessThan(decimal.NewFromInt(20)):
			out.SavingsSuggestions = append(out.SavingsSuggestions, Advice{
				Type:    "warning",
				Message: "Your savings rate is below recommended 20%. Consider reducing non-essential expenses.",
			})
		case rate.GreaterThan(decimal.NewFromInt(30)):
			out.SavingsSuggestions = append(out.SavingsSuggestions, Advice{
				Type:    "positive",
				Message: "Great job! You're maintaining a healthy savings rate.",
			})
		}
	}

	if len(out.BudgetAlerts) > 2 {
		out.GeneralAdvice = append(out.GeneralAdvice, Advice{
			Type:    "warning",
			Message: "Multiple budget overages detected. Consider reviewing your spending habits or adjusting budgets.",
		})
	}
	if sum.TotalExpense.GreaterThan(sum.TotalIncome) {
		out.GeneralAdvice = append(out.GeneralAdvice, Advice{
			Type:    "critical",
			Message: "⚠️ Your expenses exceed your income. This is unsustainable long-term.",
		})
	}
	return out
}
