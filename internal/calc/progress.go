package calc

import (
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetStatus classifies how much of a budget has been used
type BudgetStatus string

const (
	BudgetStatusOnTrack BudgetStatus = "on_track"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusOver    BudgetStatus = "over"
)

// warningThreshold is the used percentage from which a budget is flagged
var warningThreshold = decimal.NewFromInt(80)

var hundred = decimal.NewFromInt(100)

// Progress describes a budget's spend against its amount
type Progress struct {
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Status     BudgetStatus    `json:"status"`
}

// BudgetProgress computes remaining amount, used percentage and status from the
// budget's derived SpentAmount
func BudgetProgress(b domain.Budget) Progress {
	p := Progress{
		Allocated:  b.Amount,
		Spent:      b.SpentAmount,
		Remaining:  b.Amount.Sub(b.SpentAmount),
		Percentage: decimal.Zero,
		Status:     BudgetStatusOnTrack,
	}

	if b.Amount.GreaterThan(decimal.Zero) {
		p.Percentage = b.SpentAmount.Div(b.Amount).Mul(hundred)
	} else if b.SpentAmount.GreaterThan(decimal.Zero) {
		p.Percentage = hundred
	}

	switch {
	case p.Remaining.LessThan(decimal.Zero):
		p.Status = BudgetStatusOver
	case p.Percentage.GreaterThanOrEqual(warningThreshold):
		p.Status = BudgetStatusWarning
	}
	return p
}

// Totals returns the summed allocated, spent and remaining amounts of budgets
func Totals(budgets []domain.Budget) (allocated, spent, remaining decimal.Decimal) {
	allocated, spent = decimal.Zero, decimal.Zero
	for _, b := range budgets {
		allocated = allocated.Add(b.Amount)
		spent = spent.Add(b.SpentAmount)
	}
	return allocated, spent, allocated.Sub(spent)
}
