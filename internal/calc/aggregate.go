// Package calc derives totals and budget spend from transaction snapshots.
package calc

import (
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary holds the income/expense totals of a transaction list
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryTotal is the summed amount of one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// TotalByKind sums the amounts of the transactions of the given kind
func TotalByKind(transactions []domain.Transaction, kind domain.Kind) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Kind == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// NetBalance is total income minus total expense
func NetBalance(transactions []domain.Transaction) decimal.Decimal {
	return TotalByKind(transactions, domain.KindIncome).Sub(TotalByKind(transactions, domain.KindExpense))
}

// Summarize computes income, expense and balance in one pass
func Summarize(transactions []domain.Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range transactions {
		switch t.Kind {
		case domain.KindIncome:
			income = income.Add(t.Amount)
		case domain.KindExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// SpentForBudget sums the expense transactions whose category equals the budget's
// category. The transaction date is not considered: spend is lifetime per category,
// even though the budget itself belongs to one month.
func SpentForBudget(transactions []domain.Transaction, budget domain.Budget) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range transactions {
		if t.Kind == domain.KindExpense && t.Category == budget.Category {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

// ApplySpent returns copies of budgets with SpentAmount derived from transactions
func ApplySpent(budgets []domain.Budget, transactions []domain.Transaction) []domain.Budget {
	result := make([]domain.Budget, len(budgets))
	for i, b := range budgets {
		b.SpentAmount = SpentForBudget(transactions, b)
		result[i] = b
	}
	return result
}

// TotalsByCategory groups transactions of one kind by category name, in order of
// first appearance
func TotalsByCategory(transactions []domain.Transaction, kind domain.Kind) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, t := range transactions {
		if t.Kind != kind {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
		totals[i].Count++
	}
	return totals
}
