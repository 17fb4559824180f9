package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/chatbot"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgStore is the PostgreSQL persistence layer. It implements the chatbot's category,
// transaction, budget and balance collaborators.
type pgStore struct {
	db *sql.DB
}

func newPGStore(db *sql.DB) *pgStore {
	return &pgStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// translateErr maps driver errors onto the store's sentinel errors.
func translateErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", errConflict, pgErr.Detail)
		case pgForeignKeyViolation:
			// the referenced user or category does not exist
			return fmt.Errorf("%w: %s", errNotFound, pgErr.Detail)
		}
	}
	return err
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

// ---- users ----

const userColumns = `id, name, email, is_admin, status, created_at`

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.Status, &u.CreatedAt)
	return u, translateErr(err)
}

func (s *pgStore) CreateUser(ctx context.Context, name, email string, isAdmin bool) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, is_admin) VALUES ($1, $2, $3) RETURNING `+userColumns,
		name, email, isAdmin)
	return scanUser(row)
}

func (s *pgStore) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateUser changes the fields that are non-nil.
func (s *pgStore) UpdateUser(ctx context.Context, id int64, name, email *string, isAdmin *bool) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name), email = COALESCE($3, email), is_admin = COALESCE($4, is_admin),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, email, isAdmin)
	return scanUser(row)
}

// DeleteUser removes the user. Categories, transactions and budgets go with it.
func (s *pgStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	return expectAffected(res)
}

func (s *pgStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ---- categories ----

const categoryColumns = `id, user_id, name, type, color, status, created_at, updated_at`

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, translateErr(err)
}

// FindCategoriesForUser lists the user's categories in creation order.
func (s *pgStore) FindCategoriesForUser(ctx context.Context, userID int64) ([]chatbot.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM categories WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chatbot.Category
	for rows.Next() {
		var c chatbot.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category with a random color. When a category with the same
// case-insensitive name and type already exists for the user, its id is returned instead.
func (s *pgStore) CreateCategory(ctx context.Context, userID int64, name string, typ chatbot.TransactionType) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name, type, color) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, (lower(name)), type) DO UPDATE SET name = categories.name
		RETURNING id`,
		userID, name, string(typ), randomColor()).Scan(&id)
	if err != nil {
		return 0, translateErr(err)
	}
	return id, nil
}

// ListCategories lists a user's categories, optionally only those of one type.
func (s *pgStore) ListCategories(ctx context.Context, userID int64, typ chatbot.TransactionType) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = $2`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *pgStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (s *pgStore) UpdateCategory(ctx context.Context, id int64, name string, typ chatbot.TransactionType, color string) (Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $2, type = $3, color = COALESCE(NULLIF($4, ''), color), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, name, string(typ), color)
	return scanCategory(row)
}

func (s *pgStore) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM categories WHERE id = $1 RETURNING user_id`, id).Scan(&userID)
	return userID, translateErr(err)
}

// ---- transactions ----

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.type, t.amount, t.description, t.date, t.status,
	       t.created_at, t.updated_at, c.name, c.color
	FROM transactions t
	LEFT JOIN categories c ON t.category_id = c.id`

func scanTransaction(row rowScanner) (Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Type, &t.Amount, &t.Description, &t.Date, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.CategoryName, &t.CategoryColor,
	)
	return t, translateErr(err)
}

// CreateTransaction inserts an active transaction and returns its id.
func (s *pgStore) CreateTransaction(ctx context.Context, userID, categoryID int64, typ chatbot.TransactionType, amount decimal.Decimal, description string, date time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, category_id, type, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userID, categoryID, string(typ), amount, description, date).Scan(&id)
	if err != nil {
		return 0, translateErr(err)
	}
	return id, nil
}

func (s *pgStore) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(s.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = $1`, id))
}

// ListTransactionsForUser returns the user's most recent transactions first.
func (s *pgStore) ListTransactionsForUser(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		transactionSelect+` WHERE t.user_id = $1 ORDER BY t.date DESC, t.id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	transactions := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *pgStore) UpdateTransaction(ctx context.Context, id, categoryID int64, typ chatbot.TransactionType, amount decimal.Decimal, description string, date time.Time, status bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = $2, type = $3, amount = $4, description = $5, date = $6, status = $7,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		id, categoryID, string(typ), amount, description, date, status)
	if err != nil {
		return translateErr(err)
	}
	return expectAffected(res)
}

func (s *pgStore) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM transactions WHERE id = $1 RETURNING user_id`, id).Scan(&userID)
	return userID, translateErr(err)
}

// ---- budgets ----

const budgetColumns = `id, user_id, title, amount, description, start_date, end_date, status, created_at`

func scanBudget(row rowScanner) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount, &b.Description, &b.StartDate, &b.EndDate, &b.Status, &b.CreatedAt)
	return b, translateErr(err)
}

// CreateBudget inserts a budget over the inclusive range [start, end] and returns its id.
func (s *pgStore) CreateBudget(ctx context.Context, userID int64, title string, amount decimal.Decimal, description string, start, end time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, title, amount, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		userID, title, amount, description, start, end).Scan(&id)
	if err != nil {
		return 0, translateErr(err)
	}
	return id, nil
}

func (s *pgStore) GetBudget(ctx context.Context, id int64) (Budget, error) {
	return scanBudget(s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
}

func (s *pgStore) ListBudgetsForUser(ctx context.Context, userID int64) ([]Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY start_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *pgStore) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM budgets WHERE id = $1 RETURNING user_id`, id).Scan(&userID)
	return userID, translateErr(err)
}
