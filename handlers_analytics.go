package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getAnalytics returns the user's totals with optional Redis caching
func (s *server) getAnalytics(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var summary AnalyticsSummary
	if s.cache.get(ctx, summaryKey(userID), &summary) {
		c.JSON(http.StatusOK, summary)
		return
	}

	summary, err := s.store.Summary(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.set(ctx, summaryKey(userID), summary, summaryTTL)

	c.JSON(http.StatusOK, summary)
}

func (s *server) getMonthlyAnalytics(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	rows, err := s.store.MonthlyTotals(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildMonthlySeries(rows, s.now()))
}

func (s *server) getCategoryAnalytics(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	rows, err := s.store.CategoryTotals(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildCategoryBreakdown(rows))
}

func (s *server) getSuggestions(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	summary, err := s.store.Summary(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	usages, err := s.store.ActiveBudgetUsage(ctx, userID, s.now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSuggestions(summary, usages))
}
