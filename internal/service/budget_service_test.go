package service

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFixture struct {
	svc          *BudgetService
	budgets      *testutil.MockBudgetStore
	transactions *testutil.MockTransactionStore
	publisher    *testutil.MockEventPublisher
}

func newBudgetService() budgetFixture {
	f := budgetFixture{
		budgets:      testutil.NewMockBudgetStore(),
		transactions: testutil.NewMockTransactionStore(),
		publisher:    testutil.NewMockEventPublisher(),
	}
	f.svc = NewBudgetService(f.budgets, f.transactions, time.UTC)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f budgetFixture) seedBudget(category string, amount int64, month, year int) *domain.Budget {
	return f.budgets.AddBudget(&domain.Budget{
		OwnerID:  testOwner,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Month:    month,
		Year:     year,
	})
}

func TestBudgetService_CreateBudget_DefaultsToCurrentMonth(t *testing.T) {
	f := newBudgetService()

	created, err := f.svc.CreateBudget(context.Background(), testOwner, BudgetInput{
		Category: " Food ",
		Amount:   decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "Food", created.Category)
	assert.Equal(t, 3, created.Month)
	assert.Equal(t, 2025, created.Year)
	assert.True(t, created.SpentAmount.IsZero())
	assert.Equal(t, []string{"budget.created"}, f.publisher.Types())
}

func TestBudgetService_CreateBudget_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   BudgetInput
		wantErr error
	}{
		{"missing category", BudgetInput{Amount: decimal.NewFromInt(10)}, domain.ErrCategoryRequired},
		{"zero amount", BudgetInput{Category: "Food", Amount: decimal.Zero}, domain.ErrInvalidAmount},
		{"sub-cent amount", BudgetInput{Category: "Food", Amount: decimal.RequireFromString("0.004")}, domain.ErrAmountPrecision},
		{"amount beyond storage range", BudgetInput{Category: "Food", Amount: decimal.RequireFromString("1000000000000")}, domain.ErrAmountTooLarge},
		{"month out of range", BudgetInput{Category: "Food", Amount: decimal.NewFromInt(10), Month: 13}, domain.ErrInvalidMonth},
		{"year out of range", BudgetInput{Category: "Food", Amount: decimal.NewFromInt(10), Month: 1, Year: 1800}, domain.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBudgetService()
			_, err := f.svc.CreateBudget(context.Background(), testOwner, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Empty(t, f.budgets.Budgets)
		})
	}
}

func TestBudgetService_UpdateBudget_ClearsSpent(t *testing.T) {
	f := newBudgetService()
	existing := f.seedBudget("Food", 100, 3, 2025)

	updated, err := f.svc.UpdateBudget(context.Background(), testOwner, existing.ID, BudgetInput{
		Category: "Food",
		Amount:   decimal.NewFromInt(150),
		Month:    3,
		Year:     2025,
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, updated.SpentAmount.IsZero())

	_, err = f.svc.UpdateBudget(context.Background(), testOwner, "", BudgetInput{Category: "Food", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrEmptyID)
}

func TestBudgetService_DeleteBudget(t *testing.T) {
	f := newBudgetService()
	existing := f.seedBudget("Food", 100, 3, 2025)

	require.NoError(t, f.svc.DeleteBudget(context.Background(), testOwner, existing.ID))
	require.NoError(t, f.svc.DeleteBudget(context.Background(), testOwner, "missing"))
	assert.Empty(t, f.budgets.Budgets)
	assert.Equal(t, []string{"budget.deleted", "budget.deleted"}, f.publisher.Types())
}

func TestBudgetService_GetForMonth_SpentFromExpenses(t *testing.T) {
	f := newBudgetService()
	f.seedBudget("Food", 100, 3, 2025)
	f.seedBudget("Transport", 40, 3, 2025)
	f.seedBudget("Food", 500, 4, 2025)

	seedTransaction(f.transactions, testOwner, 50, domain.KindExpense, "Food", fixedNow)
	seedTransaction(f.transactions, testOwner, 30, domain.KindExpense, "Food", fixedNow)
	seedTransaction(f.transactions, testOwner, 70, domain.KindIncome, "Food", fixedNow)
	seedTransaction(f.transactions, testOwner, 45, domain.KindExpense, "Transport", fixedNow)
	seedTransaction(f.transactions, "auth0|someone-else", 999, domain.KindExpense, "Food", fixedNow)

	summary, err := f.svc.GetForMonth(context.Background(), testOwner, 3, 2025)
	require.NoError(t, err)
	require.Len(t, summary.Budgets, 2)

	food := summary.Budgets[0]
	assert.Equal(t, "Food", food.Category)
	assert.True(t, food.SpentAmount.Equal(decimal.NewFromInt(80)), "got %s", food.SpentAmount)
	assert.True(t, food.Progress.Remaining.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, calc.BudgetStatusWarning, food.Progress.Status)

	transport := summary.Budgets[1]
	assert.True(t, transport.SpentAmount.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, calc.BudgetStatusOver, transport.Progress.Status)

	assert.True(t, summary.TotalAllocated.Equal(decimal.NewFromInt(140)))
	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(125)))
	assert.True(t, summary.TotalRemaining.Equal(decimal.NewFromInt(15)))
}

func TestBudgetService_GetForMonth_LifetimeSpend(t *testing.T) {
	f := newBudgetService()
	f.seedBudget("Food", 100, 3, 2025)
	seedTransaction(f.transactions, testOwner, 60, domain.KindExpense, "Food", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))

	summary, err := f.svc.GetForMonth(context.Background(), testOwner, 3, 2025)
	require.NoError(t, err)
	require.Len(t, summary.Budgets, 1)
	assert.True(t, summary.Budgets[0].SpentAmount.Equal(decimal.NewFromInt(60)))
}

func TestBudgetService_GetCurrentMonth(t *testing.T) {
	f := newBudgetService()
	f.seedBudget("Food", 100, 3, 2025)
	f.seedBudget("Food", 100, 2, 2025)

	summary, err := f.svc.GetCurrentMonth(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Month)
	assert.Equal(t, 2025, summary.Year)
	assert.Len(t, summary.Budgets, 1)
}

func TestBudgetService_GetForMonth_Errors(t *testing.T) {
	f := newBudgetService()

	_, err := f.svc.GetForMonth(context.Background(), testOwner, 0, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	f.transactions.ListErr = domain.ErrTransport
	_, err = f.svc.GetForMonth(context.Background(), testOwner, 3, 2025)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestBudgetService_GetForCategory(t *testing.T) {
	f := newBudgetService()
	f.seedBudget("Food", 100, 3, 2025)
	seedTransaction(f.transactions, testOwner, 25, domain.KindExpense, "Food", fixedNow)

	found, err := f.svc.GetForCategory(context.Background(), testOwner, "Food", 3, 2025)
	require.NoError(t, err)
	assert.True(t, found.SpentAmount.Equal(decimal.NewFromInt(25)))
	assert.True(t, found.Progress.Percentage.Equal(decimal.NewFromInt(25)))

	_, err = f.svc.GetForCategory(context.Background(), testOwner, "Food", 4, 2025)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetForCategory(context.Background(), testOwner, "", 3, 2025)
	assert.ErrorIs(t, err, domain.ErrCategoryRequired)
}

func TestBudgetService_GetBudget(t *testing.T) {
	f := newBudgetService()
	existing := f.seedBudget("Food", 100, 3, 2025)
	seedTransaction(f.transactions, testOwner, 10, domain.KindExpense, "Food", fixedNow)

	found, err := f.svc.GetBudget(context.Background(), testOwner, existing.ID)
	require.NoError(t, err)
	assert.True(t, found.SpentAmount.Equal(decimal.NewFromInt(10)))

	_, err = f.svc.GetBudget(context.Background(), "auth0|someone-else", existing.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
