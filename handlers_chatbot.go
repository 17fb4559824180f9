package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/chatbot"
)

// processChatMessage runs one chat line through the chatbot. Every processing outcome,
// including failures, comes back as a 200 reply.
func (s *server) processChatMessage(c *gin.Context) {
	var in chatbot.IncomingMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "message and userId are required")
		return
	}

	ctx := c.Request.Context()
	reply := s.bot.Process(ctx, in)
	if reply.Created() {
		s.cache.invalidateUser(ctx, in.UserID)
	}
	c.JSON(http.StatusOK, reply)
}
