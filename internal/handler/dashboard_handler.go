package handler

import (
	"net/http"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	transactions     *TransactionHandler
}

// NewDashboardHandler creates a new DashboardHandler. Recent transactions are
// rendered the way transactionHandler renders them.
func NewDashboardHandler(dashboardService *service.DashboardService, transactionHandler *TransactionHandler) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		transactions:     transactionHandler,
	}
}

// CategoryTotalResponse represents one category's total in API responses
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	Month             int                     `json:"month"`
	Year              int                     `json:"year"`
	Total             SummaryResponse         `json:"total"`
	CurrentMonth      SummaryResponse         `json:"currentMonth"`
	PreviousMonth     SummaryResponse         `json:"previousMonth"`
	ExpenseByCategory []CategoryTotalResponse `json:"expenseByCategory"`
	Recent            []TransactionResponse   `json:"recent"`
}

// GetSummary handles GET /api/v1/dashboard/summary
// Accepts optional year and month query params for historical navigation
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := parseIntParam(c, "year")
	if err != nil {
		return invalidParam(c, "year", "Must be a valid integer")
	}
	month, err := parseIntParam(c, "month")
	if err != nil {
		return invalidParam(c, "month", "Must be a valid integer")
	}

	var summary *service.DashboardSummary
	if year == 0 && month == 0 {
		summary, err = h.dashboardService.GetSummary(c.Request().Context(), ownerID)
	} else {
		summary, err = h.dashboardService.GetSummaryForMonth(c.Request().Context(), ownerID, month, year)
	}
	if err != nil {
		return handleServiceError(c, err, "get dashboard summary")
	}

	return c.JSON(http.StatusOK, DashboardSummaryResponse{
		Month:             summary.Month,
		Year:              summary.Year,
		Total:             toSummaryResponse(summary.Total),
		CurrentMonth:      toSummaryResponse(summary.CurrentMonth),
		PreviousMonth:     toSummaryResponse(summary.PreviousMonth),
		ExpenseByCategory: toCategoryTotalResponses(summary.ExpenseByCategory),
		Recent:            h.transactions.toResponses(summary.Recent),
	})
}

func toCategoryTotalResponses(totals []calc.CategoryTotal) []CategoryTotalResponse {
	responses := make([]CategoryTotalResponse, len(totals))
	for i, t := range totals {
		responses[i] = CategoryTotalResponse{
			Category: t.Category,
			Total:    t.Total.StringFixed(2),
			Count:    t.Count,
		}
	}
	return responses
}
