package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/service"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionHandler() (*TransactionHandler, *testutil.MockTransactionStore) {
	store := testutil.NewMockTransactionStore()
	return NewTransactionHandler(service.NewTransactionService(store), time.UTC), store
}

func seedTransaction(store *testutil.MockTransactionStore, amount int64, kind domain.Kind, category string, date time.Time) *domain.Transaction {
	return store.AddTransaction(&domain.Transaction{
		OwnerID:  testOwner,
		Amount:   decimal.NewFromInt(amount),
		Kind:     kind,
		Category: category,
		Date:     date,
	})
}

func TestCreateTransaction_Success(t *testing.T) {
	h, store := newTransactionHandler()
	c, rec := newContext(http.MethodPost, "/api/v1/transactions",
		`{"amount": "150", "kind": "expense", "category": "Food", "description": "Groceries", "date": "2025-01-15"}`, testOwner)

	require.NoError(t, h.CreateTransaction(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	response := decodeBody[TransactionResponse](t, rec)
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "150.00", response.Amount)
	assert.Equal(t, "expense", response.Kind)
	assert.Equal(t, "Food", response.Category)
	assert.Equal(t, "Groceries", response.Description)
	assert.Equal(t, "2025-01-15", response.Date)
	assert.Equal(t, testOwner, store.Transactions[response.ID].OwnerID)
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed amount", `{"amount": "abc", "kind": "expense"}`, "amount"},
		{"zero amount", `{"amount": "0", "kind": "expense"}`, "amount"},
		{"sub-cent amount", `{"amount": "0.004", "kind": "expense"}`, "amount"},
		{"amount beyond storage range", `{"amount": "1000000000000", "kind": "expense"}`, "amount"},
		{"unknown kind", `{"amount": "10", "kind": "transfer"}`, "kind"},
		{"bad date", `{"amount": "10", "kind": "income", "date": "15/01/2025"}`, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTransactionHandler()
			c, rec := newContext(http.MethodPost, "/api/v1/transactions", tt.body, testOwner)

			require.NoError(t, h.CreateTransaction(c))
			problem := requireProblem(t, rec, http.StatusBadRequest, tt.field)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
			assert.Empty(t, store.Transactions)
		})
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	h, _ := newTransactionHandler()
	c, rec := newContext(http.MethodPost, "/api/v1/transactions", `{"amount": "10", "kind": "expense"}`, "")

	require.NoError(t, h.CreateTransaction(c))
	requireProblem(t, rec, http.StatusUnauthorized, "")
}

func TestCreateTransaction_StoreFailure(t *testing.T) {
	h, store := newTransactionHandler()
	store.AddErr = domain.ErrTransport
	c, rec := newContext(http.MethodPost, "/api/v1/transactions", `{"amount": "10", "kind": "expense"}`, testOwner)

	require.NoError(t, h.CreateTransaction(c))
	problem := requireProblem(t, rec, http.StatusInternalServerError, "")
	assert.Equal(t, "Failed to create transaction", problem.Detail)
}

func TestUpdateTransaction(t *testing.T) {
	h, store := newTransactionHandler()
	existing := seedTransaction(store, 20, domain.KindExpense, "Food", time.Now())

	c, rec := newContext(http.MethodPut, "/api/v1/transactions/"+existing.ID,
		`{"amount": "35.5", "kind": "expense", "category": "Transport", "date": "2025-02-01"}`, testOwner)
	require.NoError(t, h.UpdateTransaction(withParams(c, "id", existing.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := decodeBody[TransactionResponse](t, rec)
	assert.Equal(t, existing.ID, response.ID)
	assert.Equal(t, "35.50", response.Amount)
	assert.Equal(t, "Transport", store.Transactions[existing.ID].Category)
}

func TestUpdateTransaction_EmptyID(t *testing.T) {
	h, store := newTransactionHandler()
	seedTransaction(store, 20, domain.KindExpense, "Food", time.Now())

	c, rec := newContext(http.MethodPut, "/api/v1/transactions/", `{"amount": "35", "kind": "expense"}`, testOwner)
	require.NoError(t, h.UpdateTransaction(withParams(c, "id", "")))
	requireProblem(t, rec, http.StatusBadRequest, "id")
	assert.Len(t, store.Transactions, 1)
}

func TestDeleteTransaction_MissingIDSucceeds(t *testing.T) {
	h, _ := newTransactionHandler()
	c, rec := newContext(http.MethodDelete, "/api/v1/transactions/missing", "", testOwner)

	require.NoError(t, h.DeleteTransaction(withParams(c, "id", "missing")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetTransaction_NotFound(t *testing.T) {
	h, _ := newTransactionHandler()
	c, rec := newContext(http.MethodGet, "/api/v1/transactions/missing", "", testOwner)

	require.NoError(t, h.GetTransaction(withParams(c, "id", "missing")))
	problem := requireProblem(t, rec, http.StatusNotFound, "")
	assert.Equal(t, ErrorTypeNotFound, problem.Type)
}

func TestGetTransactions_MonthFilter(t *testing.T) {
	h, store := newTransactionHandler()
	seedTransaction(store, 1, domain.KindExpense, "Food", time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	seedTransaction(store, 2, domain.KindExpense, "Food", time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
	seedTransaction(store, 3, domain.KindIncome, "Salary", time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC))

	c, rec := newContext(http.MethodGet, "/api/v1/transactions?year=2025&month=2", "", testOwner)
	require.NoError(t, h.GetTransactions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	response := decodeBody[[]TransactionResponse](t, rec)
	require.Len(t, response, 2)
	assert.Equal(t, "2025-02-20", response[0].Date)
	assert.Equal(t, "2025-02-10", response[1].Date)

	c, rec = newContext(http.MethodGet, "/api/v1/transactions?year=2025&month=2&kind=expense", "", testOwner)
	require.NoError(t, h.GetTransactions(c))
	assert.Len(t, decodeBody[[]TransactionResponse](t, rec), 1)
}

func TestGetTransactions_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric month", "?month=feb", "month"},
		{"month out of range", "?month=13&year=2025", "month"},
		{"unknown kind", "?kind=transfer", "kind"},
		{"non-numeric limit", "?limit=x", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTransactionHandler()
			c, rec := newContext(http.MethodGet, "/api/v1/transactions"+tt.query, "", testOwner)

			require.NoError(t, h.GetTransactions(c))
			requireProblem(t, rec, http.StatusBadRequest, tt.field)
		})
	}
}

func TestGetRecentTransactions(t *testing.T) {
	h, store := newTransactionHandler()
	for day := 1; day <= 7; day++ {
		seedTransaction(store, int64(day), domain.KindExpense, "Food", time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC))
	}

	c, rec := newContext(http.MethodGet, "/api/v1/transactions/recent", "", testOwner)
	require.NoError(t, h.GetRecentTransactions(c))

	response := decodeBody[[]TransactionResponse](t, rec)
	require.Len(t, response, domain.RecentTransactionsLimit)
	assert.Equal(t, "2025-03-07", response[0].Date)
}

func TestGetTransactionSummary(t *testing.T) {
	h, store := newTransactionHandler()
	seedTransaction(store, 1000, domain.KindIncome, "Salary", time.Now())
	seedTransaction(store, 50, domain.KindExpense, "Food", time.Now())
	seedTransaction(store, 30, domain.KindExpense, "Food", time.Now())

	c, rec := newContext(http.MethodGet, "/api/v1/transactions/summary", "", testOwner)
	require.NoError(t, h.GetSummary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody[SummaryResponse](t, rec)
	assert.Equal(t, "1000.00", summary.Income)
	assert.Equal(t, "80.00", summary.Expense)
	assert.Equal(t, "920.00", summary.Balance)
}
