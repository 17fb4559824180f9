package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type userInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	IsAdmin bool   `json:"is_admin"`
}

func (s *server) addUser(c *gin.Context) {
	var in userInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := s.store.CreateUser(c.Request.Context(), strings.TrimSpace(in.Name), strings.ToLower(in.Email), in.IsAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *server) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := s.store.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type userUpdateInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	IsAdmin *bool   `json:"is_admin"`
}

// updateUser changes only the fields present in the body.
func (s *server) updateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in userUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			badRequest(c, "name must not be blank")
			return
		}
		in.Name = &name
	}
	if in.Email != nil {
		email := strings.ToLower(*in.Email)
		in.Email = &email
	}

	u, err := s.store.UpdateUser(c.Request.Context(), id, in.Name, in.Email, in.IsAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *server) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := s.store.DeleteUser(ctx, id); err != nil {
		fail(c, err)
		return
	}
	s.cache.invalidateUser(ctx, id)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// requireAdmin answers 401 unless :admin_id names an admin user.
func (s *server) requireAdmin(c *gin.Context) {
	id, ok := pathID(c, "admin_id")
	if !ok {
		c.Abort()
		return
	}
	u, err := s.store.GetUser(c.Request.Context(), id)
	if errors.Is(err, errNotFound) || (err == nil && !u.IsAdmin) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized access"})
		return
	}
	if err != nil {
		fail(c, err)
		c.Abort()
		return
	}
	c.Next()
}

func (s *server) listUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *server) adminStats(c *gin.Context) {
	st, err := s.store.AdminStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
