package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudgetHandler() (*BudgetHandler, *testutil.MockBudgetStore, *testutil.MockTransactionStore) {
	budgets := testutil.NewMockBudgetStore()
	transactions := testutil.NewMockTransactionStore()
	return NewBudgetHandler(service.NewBudgetService(budgets, transactions, time.UTC)), budgets, transactions
}

func TestCreateBudget(t *testing.T) {
	h, budgets, _ := newBudgetHandler()
	c, rec := newContext(http.MethodPost, "/api/v1/budgets", `{"category": "Food", "amount": "200", "month": 3, "year": 2025}`, testOwner)

	require.NoError(t, h.CreateBudget(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	response := decodeBody[BudgetResponse](t, rec)
	assert.Equal(t, "Food", response.Category)
	assert.Equal(t, "200.00", response.Amount)
	assert.Equal(t, "0.00", response.SpentAmount)
	assert.Equal(t, 3, response.Month)
	assert.Len(t, budgets.Budgets, 1)
}

func TestCreateBudget_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed amount", `{"category": "Food", "amount": "lots"}`, "amount"},
		{"negative amount", `{"category": "Food", "amount": "-1"}`, "amount"},
		{"missing category", `{"amount": "10"}`, "category"},
		{"month out of range", `{"category": "Food", "amount": "10", "month": 13, "year": 2025}`, "month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, budgets, _ := newBudgetHandler()
			c, rec := newContext(http.MethodPost, "/api/v1/budgets", tt.body, testOwner)

			require.NoError(t, h.CreateBudget(c))
			requireProblem(t, rec, http.StatusBadRequest, tt.field)
			assert.Empty(t, budgets.Budgets)
		})
	}
}

func TestGetByYearMonth_SpentFromExpenses(t *testing.T) {
	h, budgets, transactions := newBudgetHandler()
	budgets.AddBudget(&domain.Budget{OwnerID: testOwner, Category: "Food", Amount: mustDecimal("100"), Month: 3, Year: 2025})
	seedTransaction(transactions, 50, domain.KindExpense, "Food", time.Now())
	seedTransaction(transactions, 30, domain.KindExpense, "Food", time.Now())

	c, rec := newContext(http.MethodGet, "/api/v1/budgets/2025/3", "", testOwner)
	require.NoError(t, h.GetByYearMonth(withParams(c, "year", "2025", "month", "3")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := decodeBody[MonthlyBudgetResponse](t, rec)
	require.Len(t, response.Budgets, 1)
	assert.Equal(t, "80.00", response.Budgets[0].SpentAmount)
	assert.Equal(t, "20.00", response.Budgets[0].Remaining)
	assert.Equal(t, "80.0", response.Budgets[0].Percentage)
	assert.Equal(t, "warning", response.Budgets[0].Status)
	assert.Equal(t, "100.00", response.TotalAllocated)
	assert.Equal(t, "80.00", response.TotalSpent)
}

func TestGetByYearMonth_InvalidParams(t *testing.T) {
	h, _, _ := newBudgetHandler()

	c, rec := newContext(http.MethodGet, "/api/v1/budgets/2025/march", "", testOwner)
	require.NoError(t, h.GetByYearMonth(withParams(c, "year", "2025", "month", "march")))
	requireProblem(t, rec, http.StatusBadRequest, "month")

	c, rec = newContext(http.MethodGet, "/api/v1/budgets/2025/0", "", testOwner)
	require.NoError(t, h.GetByYearMonth(withParams(c, "year", "2025", "month", "0")))
	requireProblem(t, rec, http.StatusBadRequest, "month")
}

func TestGetCurrentBudgets(t *testing.T) {
	h, budgets, _ := newBudgetHandler()
	now := time.Now()
	budgets.AddBudget(&domain.Budget{OwnerID: testOwner, Category: "Food", Amount: mustDecimal("100"), Month: int(now.Month()), Year: now.Year()})

	c, rec := newContext(http.MethodGet, "/api/v1/budgets/current", "", testOwner)
	require.NoError(t, h.GetCurrent(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody[MonthlyBudgetResponse](t, rec)
	assert.Equal(t, int(now.Month()), response.Month)
	assert.Len(t, response.Budgets, 1)
}

func TestLookupBudget(t *testing.T) {
	h, budgets, _ := newBudgetHandler()
	budgets.AddBudget(&domain.Budget{OwnerID: testOwner, Category: "Food", Amount: mustDecimal("100"), Month: 3, Year: 2025})

	c, rec := newContext(http.MethodGet, "/api/v1/budgets/lookup?category=Food&year=2025&month=3", "", testOwner)
	require.NoError(t, h.Lookup(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Food", decodeBody[BudgetProgressResponse](t, rec).Category)

	c, rec = newContext(http.MethodGet, "/api/v1/budgets/lookup?category=Food&year=2025&month=4", "", testOwner)
	require.NoError(t, h.Lookup(c))
	requireProblem(t, rec, http.StatusNotFound, "")
}

func TestUpdateAndDeleteBudget(t *testing.T) {
	h, budgets, _ := newBudgetHandler()
	existing := budgets.AddBudget(&domain.Budget{OwnerID: testOwner, Category: "Food", Amount: mustDecimal("100"), Month: 3, Year: 2025})

	c, rec := newContext(http.MethodPut, "/api/v1/budgets/"+existing.ID, `{"category": "Food", "amount": "150", "month": 3, "year": 2025}`, testOwner)
	require.NoError(t, h.UpdateBudget(withParams(c, "id", existing.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "150.00", decodeBody[BudgetResponse](t, rec).Amount)

	c, rec = newContext(http.MethodDelete, "/api/v1/budgets/"+existing.ID, "", testOwner)
	require.NoError(t, h.DeleteBudget(withParams(c, "id", existing.ID)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/v1/budgets/"+existing.ID, "", testOwner)
	require.NoError(t, h.GetBudget(withParams(c, "id", existing.ID)))
	requireProblem(t, rec, http.StatusNotFound, "")
}
