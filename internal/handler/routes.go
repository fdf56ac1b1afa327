package handler

import (
	"net/http"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Transactions *TransactionHandler
	Categories   *CategoryHandler
	Budgets      *BudgetHandler
	Dashboard    *DashboardHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Every /api/v1 route requires a valid
// bearer token and is rate limited per owner.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", Health)

	// WebSocket authenticates with the token query parameter
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", h.Transactions.CreateTransaction)
	transactions.GET("", h.Transactions.GetTransactions)
	transactions.GET("/recent", h.Transactions.GetRecentTransactions)
	transactions.GET("/summary", h.Transactions.GetSummary)
	transactions.GET("/:id", h.Transactions.GetTransaction)
	transactions.PUT("/:id", h.Transactions.UpdateTransaction)
	transactions.DELETE("/:id", h.Transactions.DeleteTransaction)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", h.Categories.CreateCategory)
	categories.GET("", h.Categories.GetCategories)
	categories.GET("/icons", h.Categories.GetIcons)
	categories.POST("/defaults", h.Categories.CreateDefaults)
	categories.GET("/:id", h.Categories.GetCategory)
	categories.PUT("/:id", h.Categories.UpdateCategory)
	categories.DELETE("/:id", h.Categories.DeleteCategory)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", h.Budgets.CreateBudget)
	budgets.GET("/current", h.Budgets.GetCurrent)
	budgets.GET("/lookup", h.Budgets.Lookup)
	budgets.GET("/:year/:month", h.Budgets.GetByYearMonth)
	budgets.GET("/:id", h.Budgets.GetBudget)
	budgets.PUT("/:id", h.Budgets.UpdateBudget)
	budgets.DELETE("/:id", h.Budgets.DeleteBudget)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", h.Dashboard.GetSummary)
}

// Health handles GET /health
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
