package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/chatbot"
	"finance-tracker-backend/internal/logger"
)

const (
	dateLayout        = "2006-01-02"
	transactionsLimit = 100
)

// messageProcessor turns a chat line into a reply.
type messageProcessor interface {
	Process(ctx context.Context, in chatbot.IncomingMessage) chatbot.Reply
}

// dataStore is the persistence the handlers need. *pgStore implements it.
type dataStore interface {
	chatbot.CategoryStore
	chatbot.TransactionStore
	chatbot.BudgetStore
	chatbot.BalanceProvider

	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, name, email string, isAdmin bool) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, name, email *string, isAdmin *bool) (User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, userID int64, typ chatbot.TransactionType) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, typ chatbot.TransactionType, color string) (Category, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)

	GetTransaction(ctx context.Context, id int64) (Transaction, error)
	ListTransactionsForUser(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, id, categoryID int64, typ chatbot.TransactionType, amount decimal.Decimal, description string, date time.Time, status bool) error
	DeleteTransaction(ctx context.Context, id int64) (int64, error)

	GetBudget(ctx context.Context, id int64) (Budget, error)
	ListBudgetsForUser(ctx context.Context, userID int64) ([]Budget, error)
	DeleteBudget(ctx context.Context, id int64) (int64, error)

	Summary(ctx context.Context, userID int64) (AnalyticsSummary, error)
	MonthlyTotals(ctx context.Context, userID int64) ([]monthTotal, error)
	CategoryTotals(ctx context.Context, userID int64) ([]categoryTotal, error)
	ActiveBudgetUsage(ctx context.Context, userID int64, day time.Time) ([]budgetUsage, error)
	AdminStats(ctx context.Context) (AdminStats, error)
}

// responseCache caches per-user reads. *cache implements it, including as a nil pointer.
type responseCache interface {
	get(ctx context.Context, key string, dst interface{}) bool
	set(ctx context.Context, key string, v interface{}, ttl time.Duration)
	invalidateUser(ctx context.Context, userID int64)
}

// server holds the dependencies shared by the HTTP handlers.
type server struct {
	store      dataStore
	cache      responseCache
	bot        messageProcessor
	categories *chatbot.CategoryResolver
	now        func() time.Time
	log        zerolog.Logger
}

func newServer(store dataStore, c responseCache, log zerolog.Logger) *server {
	return &server{
		store:      store,
		cache:      c,
		bot:        chatbot.NewProcessor(chatbot.Stores{Categories: store, Transactions: store, Budgets: store, Balance: store}, log),
		categories: chatbot.NewCategoryResolver(store, log),
		now:        time.Now,
		log:        log,
	}
}

// pathID parses a positive integer path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + strings.ReplaceAll(name, "_", " ")})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// fail maps a store error to a response.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// healthCheck handles the health check endpoint
func (s *server) healthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance-tracker",
	})
}

type transactionInput struct {
	UserID      int64                   `json:"user_id"`
	CategoryID  int64                   `json:"category_id" binding:"required"`
	Type        chatbot.TransactionType `json:"type" binding:"required"`
	Amount      decimal.Decimal         `json:"amount"`
	Description string                  `json:"description"`
	Date        string                  `json:"date" binding:"required"`
	Status      *bool                   `json:"status"`
}

// validate checks the fields shared by create and update and returns the parsed date.
func (in transactionInput) validate() (time.Time, error) {
	if !in.Type.Valid() {
		return time.Time{}, errors.New("type must be Income or Expense")
	}
	if !in.Amount.IsPositive() {
		return time.Time{}, errors.New("amount must be greater than zero")
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return date, nil
}

// checkCategory confirms the category exists and belongs to the user.
func (s *server) checkCategory(c *gin.Context, userID, categoryID int64) bool {
	cat, err := s.store.GetCategory(c.Request.Context(), categoryID)
	if errors.Is(err, errNotFound) || (err == nil && cat.UserID != userID) {
		badRequest(c, "category does not belong to user")
		return false
	}
	if err != nil {
		fail(c, err)
		return false
	}
	return true
}

// getTransactions lists a user's transactions, served from cache when possible
func (s *server) getTransactions(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var transactions []Transaction
	if s.cache.get(ctx, transactionsKey(userID), &transactions) {
		c.JSON(http.StatusOK, transactions)
		return
	}

	transactions, err := s.store.ListTransactionsForUser(ctx, userID, transactionsLimit)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.set(ctx, transactionsKey(userID), transactions, transactionsTTL)

	c.JSON(http.StatusOK, transactions)
}

func (s *server) getTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := s.store.GetTransaction(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// addTransaction creates a new transaction
func (s *server) addTransaction(c *gin.Context) {
	var in transactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if in.UserID <= 0 {
		badRequest(c, "user_id is required")
		return
	}
	date, err := in.validate()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if !s.checkCategory(c, in.UserID, in.CategoryID) {
		return
	}

	ctx := c.Request.Context()
	id, err := s.store.CreateTransaction(ctx, in.UserID, in.CategoryID, in.Type, in.Amount, in.Description, date)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, in.UserID)

	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) updateTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in transactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := in.validate()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if !s.checkCategory(c, existing.UserID, in.CategoryID) {
		return
	}
	status := existing.Status
	if in.Status != nil {
		status = *in.Status
	}

	if err := s.store.UpdateTransaction(ctx, id, in.CategoryID, in.Type, in.Amount, in.Description, date, status); err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, existing.UserID)

	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// deleteTransaction removes a transaction by ID
func (s *server) deleteTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}
