package main

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL CHECK (type IN ('Income', 'Expense')),
		color VARCHAR(7) NOT NULL DEFAULT '#667eea',
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		type VARCHAR(20) NOT NULL CHECK (type IN ('Income', 'Expense')),
		amount DECIMAL(12,2) NOT NULL CHECK (amount > 0),
		description TEXT NOT NULL DEFAULT '',
		date DATE NOT NULL,
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS budgets (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(150) NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount > 0),
		description TEXT NOT NULL DEFAULT '',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (start_date <= end_date)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_budgets_user_range ON budgets(user_id, start_date, end_date);

	-- Remove duplicates before enforcing uniqueness
	DO $$
	BEGIN
		WITH d AS (
			SELECT id, MIN(id) OVER (PARTITION BY user_id, lower(name), type) AS keep
			FROM categories
		)
		UPDATE transactions t SET category_id = d.keep
		FROM d WHERE t.category_id = d.id AND d.id <> d.keep;

		WITH d AS (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id, lower(name), type ORDER BY id) rn
			FROM categories
		)
		DELETE FROM categories WHERE id IN (SELECT id FROM d WHERE rn > 1);
	END $$;

	-- One category per (user, case-insensitive name, type)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_name_type ON categories(user_id, lower(name), type);
`

// demoCategories are created for the demo user by -seed-demo.
var demoCategories = []struct {
	Name, Type, Color string
}{
	{"Groceries", "Expense", "#e74c3c"},
	{"Rent", "Expense", "#e67e22"},
	{"Utilities", "Expense", "#f39c12"},
	{"Transportation", "Expense", "#3498db"},
	{"Entertainment", "Expense", "#9b59b6"},
	{"Salary", "Income", "#27ae60"},
	{"Freelance", "Income", "#16a085"},
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// seedDemoData creates a demo user with categories, a month of transactions and budgets.
// Idempotent: does nothing once the demo user has transactions.
func seedDemoData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email) VALUES ('Demo User', 'demo@example.com')
		ON CONFLICT (email) DO UPDATE SET updated_at = users.updated_at
		RETURNING id`).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seeding demo user: %w", err)
	}

	var cnt int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&cnt); err != nil {
		return fmt.Errorf("checking transactions count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	for _, c := range demoCategories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (user_id, name, type, color) VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, (lower(name)), type) DO NOTHING`,
			userID, c.Name, c.Type, c.Color)
		if err != nil {
			return fmt.Errorf("seeding category %s: %w", c.Name, err)
		}
	}

	const demoTx = `
	INSERT INTO transactions (user_id, date, description, amount, category_id, type)
	SELECT $1, CURRENT_DATE - v.days * INTERVAL '1 day', v.description, v.amount,
	       (SELECT id FROM categories WHERE user_id = $1 AND name = v.category AND type = v.type LIMIT 1), v.type
	FROM (VALUES
		(28, 'Monthly Salary', 3200.00, 'Salary', 'Income'),
		(25, 'Freelance: Landing Page', 850.00, 'Freelance', 'Income'),
		(24, 'Rent - Apartment', 1500.00, 'Rent', 'Expense'),
		(22, 'Utilities - Electricity', 120.45, 'Utilities', 'Expense'),
		(20, 'Groceries - Whole Foods', 96.72, 'Groceries', 'Expense'),
		(19, 'Subway Pass', 45.00, 'Transportation', 'Expense'),
		(16, 'Movie Night', 28.50, 'Entertainment', 'Expense'),
		(14, 'Groceries - Trader Joes', 64.11, 'Groceries', 'Expense'),
		(13, 'Freelance: Dashboard Charts', 600.00, 'Freelance', 'Income'),
		(11, 'Utilities - Internet', 60.00, 'Utilities', 'Expense'),
		(8, 'Concert Tickets', 140.00, 'Entertainment', 'Expense'),
		(6, 'Groceries - Costco', 132.39, 'Groceries', 'Expense'),
		(4, 'Rideshare', 22.30, 'Transportation', 'Expense'),
		(1, 'Dinner Out', 54.80, 'Entertainment', 'Expense')
	) AS v(days, description, amount, category, type)
	`
	if _, err := tx.ExecContext(ctx, demoTx, userID); err != nil {
		return fmt.Errorf("seeding demo transactions: %w", err)
	}

	const demoBudgets = `
	INSERT INTO budgets (user_id, title, amount, description, start_date, end_date) VALUES
	($1, 'Monthly Budget', 2500.00, 'Everything this month',
		date_trunc('month', CURRENT_DATE)::date, (date_trunc('month', CURRENT_DATE) + INTERVAL '1 month - 1 day')::date),
	($1, 'Fun Money', 200.00, 'Entertainment this month',
		date_trunc('month', CURRENT_DATE)::date, (date_trunc('month', CURRENT_DATE) + INTERVAL '1 month - 1 day')::date)
	`
	if _, err := tx.ExecContext(ctx, demoBudgets, userID); err != nil {
		return fmt.Errorf("seeding demo budgets: %w", err)
	}

	return tx.Commit()
}
