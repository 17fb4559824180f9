package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// newRouter builds the gin engine with middleware and every route.
func newRouter(s *server, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.healthCheck)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("", s.addUser)
	users.GET("/:id", s.getUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)

	admin := api.Group("/admin/:admin_id", s.requireAdmin)
	admin.GET("/users", s.listUsers)
	admin.GET("/stats", s.adminStats)

	categories := api.Group("/categories")
	categories.GET("/user/:user_id", s.getCategories)
	categories.GET("/user/:user_id/:type", s.getCategories)
	categories.GET("/:id", s.getCategory)
	categories.POST("", s.addCategory)
	categories.PUT("/:id", s.updateCategory)
	categories.DELETE("/:id", s.deleteCategory)

	transactions := api.Group("/transactions")
	transactions.GET("/user/:user_id", s.getTransactions)
	transactions.GET("/:id", s.getTransaction)
	transactions.POST("", s.addTransaction)
	transactions.PUT("/:id", s.updateTransaction)
	transactions.DELETE("/:id", s.deleteTransaction)

	budgets := api.Group("/budgets")
	budgets.GET("/user/:user_id", s.getBudgets)
	budgets.GET("/user/:user_id/analytics", s.getBudgetAnalytics)
	budgets.GET("/:id", s.getBudget)
	budgets.POST("", s.addBudget)
	budgets.DELETE("/:id", s.deleteBudget)

	analytics := api.Group("/analytics/user/:user_id")
	analytics.GET("", s.getAnalytics)
	analytics.GET("/monthly", s.getMonthlyAnalytics)
	analytics.GET("/categories", s.getCategoryAnalytics)
	analytics.GET("/suggestions", s.getSuggestions)

	api.POST("/chatbot/process", s.processChatMessage)

	return r
}
