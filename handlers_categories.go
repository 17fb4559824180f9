package main

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/chatbot"
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type categoryInput struct {
	UserID int64                   `json:"user_id"`
	Name   string                  `json:"name" binding:"required"`
	Type   chatbot.TransactionType `json:"type" binding:"required"`
	Color  string                  `json:"color"`
}

func (in *categoryInput) validate() string {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return "name is required"
	case !in.Type.Valid():
		return "type must be Income or Expense"
	case in.Color != "" && !colorRe.MatchString(in.Color):
		return "color must look like #rrggbb"
	}
	return ""
}

// getCategories lists a user's categories, optionally filtered by type
func (s *server) getCategories(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	typ := chatbot.TransactionType(c.Param("type"))
	if typ != "" && !typ.Valid() {
		badRequest(c, "type must be Income or Expense")
		return
	}

	categories, err := s.store.ListCategories(c.Request.Context(), userID, typ)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *server) getCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cat, err := s.store.GetCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// addCategory returns the user's existing category when the name and type already match one.
func (s *server) addCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if msg := in.validate(); msg != "" {
		badRequest(c, msg)
		return
	}
	if in.UserID <= 0 {
		badRequest(c, "user_id is required")
		return
	}

	ctx := c.Request.Context()
	res, err := s.categories.Resolve(ctx, in.UserID, in.Name, in.Type)
	if err != nil {
		fail(c, err)
		return
	}
	cat, err := s.store.GetCategory(ctx, res.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if res.Created && in.Color != "" {
		if cat, err = s.store.UpdateCategory(ctx, cat.ID, cat.Name, cat.Type, in.Color); err != nil {
			fail(c, err)
			return
		}
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		s.cache.invalidateUser(ctx, in.UserID)
	}
	c.JSON(status, cat)
}

func (s *server) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if msg := in.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	ctx := c.Request.Context()
	cat, err := s.store.UpdateCategory(ctx, id, in.Name, in.Type, in.Color)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, cat.UserID)
	c.JSON(http.StatusOK, cat)
}

func (s *server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
