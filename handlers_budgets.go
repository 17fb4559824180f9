package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type budgetInput struct {
	UserID      int64           `json:"user_id" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	StartDate   string          `json:"start_date" binding:"required"`
	EndDate     string          `json:"end_date" binding:"required"`
}

func (in budgetInput) dates() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("start_date must not be after end_date")
	}
	return start, end, nil
}

func (s *server) addBudget(c *gin.Context) {
	var in budgetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		badRequest(c, "title is required")
		return
	}
	if !in.Amount.IsPositive() {
		badRequest(c, "amount must be greater than zero")
		return
	}
	start, end, err := in.dates()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id, err := s.store.CreateBudget(ctx, in.UserID, in.Title, in.Amount, in.Description, start, end)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, in.UserID)

	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *server) getBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := s.store.GetBudget(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *server) getBudgets(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	budgets, err := s.store.ListBudgetsForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (s *server) deleteBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID, err := s.store.DeleteBudget(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}

// getBudgetAnalytics reports how much of each budget active today has been spent.
func (s *server) getBudgetAnalytics(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	usages, err := s.store.ActiveBudgetUsage(c.Request.Context(), userID, s.now())
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]BudgetStatus, 0, len(usages))
	for _, u := range usages {
		out = append(out, budgetStatus(u))
	}
	c.JSON(http.StatusOK, out)
}
