package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/middleware"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	loc                *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Dates without a time are
// read in loc.
func NewTransactionHandler(transactionService *service.TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{
		transactionService: transactionService,
		loc:                loc,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        *string `json:"date,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
}

// SummaryResponse represents income/expense totals in API responses
type SummaryResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, err := h.bindInput(c)
	if err != nil {
		return err
	}
	if input == nil {
		return nil
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), ownerID, *input)
	if err != nil {
		return handleServiceError(c, err, "create transaction")
	}

	return c.JSON(http.StatusCreated, h.toResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, err := h.bindInput(c)
	if err != nil {
		return err
	}
	if input == nil {
		return nil
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), ownerID, c.Param("id"), *input)
	if err != nil {
		return handleServiceError(c, err, "update transaction")
	}

	return c.JSON(http.StatusOK, h.toResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return handleServiceError(c, err, "delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "get transaction")
	}

	return c.JSON(http.StatusOK, h.toResponse(transaction))
}

// GetTransactions handles GET /api/v1/transactions
// Optional query params: kind, year, month, limit
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	q, ok, err := h.parseQuery(c)
	if !ok {
		return err
	}

	transactions, err := h.transactionService.ListTransactions(c.Request().Context(), ownerID, q)
	if err != nil {
		return handleServiceError(c, err, "list transactions")
	}

	return c.JSON(http.StatusOK, h.toResponses(transactions))
}

// GetRecentTransactions handles GET /api/v1/transactions/recent
func (h *TransactionHandler) GetRecentTransactions(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	limit, err := parseIntParam(c, "limit")
	if err != nil {
		return invalidParam(c, "limit", "Must be a valid integer")
	}

	transactions, err := h.transactionService.GetRecentTransactions(c.Request().Context(), ownerID, limit)
	if err != nil {
		return handleServiceError(c, err, "get recent transactions")
	}

	return c.JSON(http.StatusOK, h.toResponses(transactions))
}

// GetSummary handles GET /api/v1/transactions/summary
// Optional query params: kind, year, month
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	q, ok, err := h.parseQuery(c)
	if !ok {
		return err
	}

	summary, err := h.transactionService.GetSummary(c.Request().Context(), ownerID, q)
	if err != nil {
		return handleServiceError(c, err, "get transaction summary")
	}

	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// parseQuery reads the list filters. When ok is false the error response has
// been written and err is what the handler must return.
func (h *TransactionHandler) parseQuery(c echo.Context) (q domain.TransactionQuery, ok bool, err error) {
	kind, err := parseKindParam(c)
	if err != nil {
		return q, false, handleServiceError(c, err, "parse kind")
	}
	q.Kind = kind

	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &q.Year}, {"month", &q.Month}, {"limit", &q.Limit}} {
		value, err := parseIntParam(c, p.name)
		if err != nil {
			return q, false, invalidParam(c, p.name, "Must be a valid integer")
		}
		*p.dst = value
	}
	return q, true, nil
}

// bindInput decodes the request body. A nil input with a nil error means the
// validation response has already been written.
func (h *TransactionHandler) bindInput(c echo.Context) (*service.TransactionInput, error) {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, invalidParam(c, "amount", "Must be a valid decimal number")
	}

	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		return nil, handleServiceError(c, err, "parse kind")
	}

	input := &service.TransactionInput{
		Amount:      amount,
		Kind:        kind,
		Category:    req.Category,
		Description: req.Description,
	}

	if req.Date != nil && *req.Date != "" {
		date, err := h.parseDate(*req.Date)
		if err != nil {
			return nil, invalidParam(c, "date", "Must be in YYYY-MM-DD or RFC 3339 format")
		}
		input.Date = &date
	}
	return input, nil
}

func (h *TransactionHandler) parseDate(raw string) (time.Time, error) {
	if date, err := time.ParseInLocation(dateLayout, raw, h.loc); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (h *TransactionHandler) toResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.StringFixed(2),
		Kind:        string(t.Kind),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.In(h.loc).Format(dateLayout),
	}
}

func (h *TransactionHandler) toResponses(transactions []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = h.toResponse(&transactions[i])
	}
	return responses
}

func toSummaryResponse(s calc.Summary) SummaryResponse {
	return SummaryResponse{
		Income:  s.Income.StringFixed(2),
		Expense: s.Expense.StringFixed(2),
		Balance: s.Balance.StringFixed(2),
	}
}
