package query

import (
	"testing"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id string, kind domain.Kind, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:       id,
		OwnerID:  "owner-1",
		Amount:   decimal.NewFromInt(10),
		Kind:     kind,
		Category: "Food",
		Date:     date,
	}
}

func ids(records []domain.Transaction) []string {
	result := make([]string, len(records))
	for i, r := range records {
		result[i] = r.ID
	}
	return result
}

func TestFilterByKind(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []domain.Transaction{
		txn("a", domain.KindIncome, now),
		txn("b", domain.KindExpense, now),
		txn("c", domain.KindIncome, now),
	}

	assert.Equal(t, []string{"a", "c"}, ids(FilterByKind(records, domain.KindIncome)))
	assert.Equal(t, []string{"b"}, ids(FilterByKind(records, domain.KindExpense)))
	assert.Empty(t, FilterByKind([]domain.Transaction{}, domain.KindExpense))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2, 2024, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}

func TestMonthRange_December(t *testing.T) {
	start, end := MonthRange(12, 2024, time.UTC)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}

func TestFilterByMonth_InclusiveBoundaries(t *testing.T) {
	loc := time.UTC
	start, end := MonthRange(3, 2025, loc)

	records := []domain.Transaction{
		txn("start", domain.KindExpense, start),
		txn("end", domain.KindExpense, end),
		txn("before", domain.KindExpense, start.Add(-time.Millisecond)),
		txn("after", domain.KindExpense, end.Add(time.Millisecond)),
	}

	result := FilterByMonth(records, 3, 2025, loc)
	assert.Equal(t, []string{"start", "end"}, ids(result))
}

func TestFilterByMonth_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	// 23:30 UTC on Jan 31 is already Feb 1 at UTC+2
	records := []domain.Transaction{
		txn("edge", domain.KindExpense, time.Date(2025, 1, 31, 23, 30, 0, 0, time.UTC)),
	}

	assert.Len(t, FilterByMonth(records, 2, 2025, loc), 1)
	assert.Empty(t, FilterByMonth(records, 1, 2025, loc))
}

func TestSortByDateDescending_Stable(t *testing.T) {
	same := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	records := []domain.Transaction{
		txn("old", domain.KindExpense, same.Add(-time.Hour)),
		txn("first", domain.KindExpense, same),
		txn("second", domain.KindExpense, same),
		txn("new", domain.KindExpense, same.Add(time.Hour)),
	}

	sorted := SortByDateDescending(records)

	assert.Equal(t, []string{"new", "first", "second", "old"}, ids(sorted))
	// input is left untouched
	assert.Equal(t, "old", records[0].ID)
}

func TestTake(t *testing.T) {
	records := []int{1, 2, 3, 4, 5, 6}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, Take(records, 5))
	assert.Equal(t, records, Take(records, 0))
	assert.Equal(t, records, Take(records, 10))
}

func TestApplyTransactionQuery_MonthScenario(t *testing.T) {
	year := 2025
	records := []domain.Transaction{
		txn("jan5", domain.KindExpense, time.Date(year, 1, 5, 9, 0, 0, 0, time.UTC)),
		txn("feb10", domain.KindExpense, time.Date(year, 2, 10, 9, 0, 0, 0, time.UTC)),
		txn("feb20", domain.KindExpense, time.Date(year, 2, 20, 9, 0, 0, 0, time.UTC)),
	}

	result := ApplyTransactionQuery(records, domain.TransactionQuery{Month: 2, Year: year}, time.UTC)

	assert.Equal(t, []string{"feb20", "feb10"}, ids(result))
}

func TestApplyTransactionQuery_KindAndMonth(t *testing.T) {
	income := domain.KindIncome
	records := []domain.Transaction{
		txn("feb-expense", domain.KindExpense, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)),
		txn("feb-income", domain.KindIncome, time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)),
		txn("mar-income", domain.KindIncome, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)),
	}

	result := ApplyTransactionQuery(records, domain.TransactionQuery{Kind: &income, Month: 2, Year: 2025}, time.UTC)

	require.Len(t, result, 1)
	assert.Equal(t, "feb-income", result[0].ID)
}

func TestApplyTransactionQuery_Recent(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.Transaction
	for i := 0; i < 8; i++ {
		records = append(records, txn(string(rune('a'+i)), domain.KindExpense, base.AddDate(0, 0, i)))
	}

	result := ApplyTransactionQuery(records, domain.TransactionQuery{Limit: domain.RecentTransactionsLimit}, time.UTC)

	assert.Equal(t, []string{"h", "g", "f", "e", "d"}, ids(result))
}

func TestApplyCategoryQuery(t *testing.T) {
	expense := domain.KindExpense
	records := []domain.Category{
		{ID: "1", Name: "Salary", Kind: domain.KindIncome},
		{ID: "2", Name: "Food", Kind: domain.KindExpense},
	}

	assert.Len(t, ApplyCategoryQuery(records, domain.CategoryQuery{}), 2)

	filtered := ApplyCategoryQuery(records, domain.CategoryQuery{Kind: &expense})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Food", filtered[0].Name)
}

func TestApplyBudgetQuery_CompositeKey(t *testing.T) {
	food := "Food"
	records := []domain.Budget{
		{ID: "1", Category: "Food", Month: 2, Year: 2025},
		{ID: "2", Category: "Food", Month: 3, Year: 2025},
		{ID: "3", Category: "Rent", Month: 2, Year: 2025},
		{ID: "4", Category: "Food", Month: 2, Year: 2025},
	}

	result := ApplyBudgetQuery(records, domain.BudgetQuery{Category: &food, Month: 2, Year: 2025, Limit: 1})
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)

	month := ApplyBudgetQuery(records, domain.BudgetQuery{Month: 2, Year: 2025})
	assert.Len(t, month, 3)
}
