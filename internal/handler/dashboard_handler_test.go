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

func newDashboardHandler() (*DashboardHandler, *testutil.MockTransactionStore) {
	store := testutil.NewMockTransactionStore()
	transactionHandler := NewTransactionHandler(service.NewTransactionService(store), time.UTC)
	return NewDashboardHandler(service.NewDashboardService(store, time.UTC), transactionHandler), store
}

func TestDashboardGetSummary_ForMonth(t *testing.T) {
	h, store := newDashboardHandler()
	seedTransaction(store, 3000, domain.KindIncome, "Salary", time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC))
	seedTransaction(store, 50, domain.KindExpense, "Food", time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC))
	seedTransaction(store, 30, domain.KindExpense, "Food", time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	seedTransaction(store, 100, domain.KindExpense, "Rent", time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC))

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary?year=2025&month=3", "", testOwner)
	require.NoError(t, h.GetSummary(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := decodeBody[DashboardSummaryResponse](t, rec)
	assert.Equal(t, 3, response.Month)
	assert.Equal(t, 2025, response.Year)
	assert.Equal(t, "3000.00", response.CurrentMonth.Income)
	assert.Equal(t, "80.00", response.CurrentMonth.Expense)
	assert.Equal(t, "100.00", response.PreviousMonth.Expense)
	assert.Equal(t, "2820.00", response.Total.Balance)
	require.Len(t, response.ExpenseByCategory, 1)
	assert.Equal(t, CategoryTotalResponse{Category: "Food", Total: "80.00", Count: 2}, response.ExpenseByCategory[0])
	require.Len(t, response.Recent, 4)
	assert.Equal(t, "2025-03-03", response.Recent[0].Date)
}

func TestDashboardGetSummary_CurrentMonth(t *testing.T) {
	h, _ := newDashboardHandler()

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary", "", testOwner)
	require.NoError(t, h.GetSummary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody[DashboardSummaryResponse](t, rec)
	now := time.Now().UTC()
	assert.Equal(t, int(now.Month()), response.Month)
	assert.Equal(t, "0.00", response.Total.Balance)
	assert.Empty(t, response.Recent)
}

func TestDashboardGetSummary_InvalidMonth(t *testing.T) {
	h, _ := newDashboardHandler()

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard/summary?year=2025&month=13", "", testOwner)
	require.NoError(t, h.GetSummary(c))
	requireProblem(t, rec, http.StatusBadRequest, "month")

	c, rec = newContext(http.MethodGet, "/api/v1/dashboard/summary", "", "")
	require.NoError(t, h.GetSummary(c))
	requireProblem(t, rec, http.StatusUnauthorized, "")
}
