package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create/update budget request body.
// Month and year default to the current month when omitted.
type BudgetRequest struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	SpentAmount string `json:"spentAmount"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

// BudgetProgressResponse is a budget with its spend breakdown
type BudgetProgressResponse struct {
	BudgetResponse
	Remaining  string `json:"remaining"`
	Percentage string `json:"percentage"`
	Status     string `json:"status"`
}

// MonthlyBudgetResponse represents the budgets of one month
type MonthlyBudgetResponse struct {
	Month          int                      `json:"month"`
	Year           int                      `json:"year"`
	TotalAllocated string                   `json:"totalAllocated"`
	TotalSpent     string                   `json:"totalSpent"`
	TotalRemaining string                   `json:"totalRemaining"`
	Budgets        []BudgetProgressResponse `json:"budgets"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, ok, err := bindBudgetInput(c)
	if !ok {
		return err
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), ownerID, input)
	if err != nil {
		return handleServiceError(c, err, "create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, ok, err := bindBudgetInput(c)
	if !ok {
		return err
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), ownerID, c.Param("id"), input)
	if err != nil {
		return handleServiceError(c, err, "update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return handleServiceError(c, err, "delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budget, err := h.budgetService.GetBudget(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "get budget")
	}

	return c.JSON(http.StatusOK, toBudgetProgressResponse(*budget))
}

// GetCurrent handles GET /api/v1/budgets/current
func (h *BudgetHandler) GetCurrent(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.budgetService.GetCurrentMonth(c.Request().Context(), ownerID)
	if err != nil {
		return handleServiceError(c, err, "get current budgets")
	}

	return c.JSON(http.StatusOK, toMonthlyBudgetResponse(summary))
}

// GetByYearMonth handles GET /api/v1/budgets/:year/:month
func (h *BudgetHandler) GetByYearMonth(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return invalidParam(c, "year", "Must be a valid integer")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return invalidParam(c, "month", "Must be a valid integer")
	}

	summary, err := h.budgetService.GetForMonth(c.Request().Context(), ownerID, month, year)
	if err != nil {
		return handleServiceError(c, err, "get budgets")
	}

	return c.JSON(http.StatusOK, toMonthlyBudgetResponse(summary))
}

// Lookup handles GET /api/v1/budgets/lookup?category=&year=&month=
func (h *BudgetHandler) Lookup(c echo.Context) error {
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

	budget, err := h.budgetService.GetForCategory(c.Request().Context(), ownerID, c.QueryParam("category"), month, year)
	if err != nil {
		return handleServiceError(c, err, "look up budget")
	}

	return c.JSON(http.StatusOK, toBudgetProgressResponse(*budget))
}

// bindBudgetInput decodes the request body. When ok is false the error response
// has been written and err is what the handler must return.
func bindBudgetInput(c echo.Context) (input service.BudgetInput, ok bool, err error) {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return input, false, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return input, false, invalidParam(c, "amount", "Must be a valid decimal number")
	}

	return service.BudgetInput{
		Category: req.Category,
		Amount:   amount,
		Month:    req.Month,
		Year:     req.Year,
	}, true, nil
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID,
		Category:    b.Category,
		Amount:      b.Amount.StringFixed(2),
		SpentAmount: b.SpentAmount.StringFixed(2),
		Month:       b.Month,
		Year:        b.Year,
	}
}

func toBudgetProgressResponse(b service.BudgetWithProgress) BudgetProgressResponse {
	return BudgetProgressResponse{
		BudgetResponse: toBudgetResponse(&b.Budget),
		Remaining:      b.Progress.Remaining.StringFixed(2),
		Percentage:     b.Progress.Percentage.StringFixed(1),
		Status:         string(b.Progress.Status),
	}
}

func toMonthlyBudgetResponse(s *service.MonthlyBudgetSummary) MonthlyBudgetResponse {
	resp := MonthlyBudgetResponse{
		Month:          s.Month,
		Year:           s.Year,
		TotalAllocated: s.TotalAllocated.StringFixed(2),
		TotalSpent:     s.TotalSpent.StringFixed(2),
		TotalRemaining: s.TotalRemaining.StringFixed(2),
		Budgets:        make([]BudgetProgressResponse, len(s.Budgets)),
	}
	for i, b := range s.Budgets {
		resp.Budgets[i] = toBudgetProgressResponse(b)
	}
	return resp
}
