package service

import (
	"context"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/query"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/util"
)

// DashboardSummary is the overview shown on the home screen
type DashboardSummary struct {
	Month             int                  `json:"month"`
	Year              int                  `json:"year"`
	Total             calc.Summary         `json:"total"`
	CurrentMonth      calc.Summary         `json:"currentMonth"`
	PreviousMonth     calc.Summary         `json:"previousMonth"`
	ExpenseByCategory []calc.CategoryTotal `json:"expenseByCategory"`
	Recent            []domain.Transaction `json:"recent"`
}

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	transactionRepo domain.TransactionStore
	loc             *time.Location
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService. Months are computed in loc.
func NewDashboardService(transactionRepo domain.TransactionStore, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		transactionRepo: transactionRepo,
		loc:             loc,
		now:             time.Now,
	}
}

// GetSummary returns the dashboard summary for the current month
func (s *DashboardService) GetSummary(ctx context.Context, ownerID string) (*DashboardSummary, error) {
	month, year := util.CurrentPeriod(s.now().In(s.loc))
	return s.GetSummaryForMonth(ctx, ownerID, month, year)
}

// GetSummaryForMonth returns the dashboard summary for a specific month. All figures
// are derived from a single snapshot of the owner's transactions.
func (s *DashboardService) GetSummaryForMonth(ctx context.Context, ownerID string, month, year int) (*DashboardSummary, error) {
	if err := domain.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}

	all, err := s.transactionRepo.List(ctx, ownerID, domain.TransactionQuery{})
	if err != nil {
		return nil, err
	}

	current := query.FilterByMonth(all, month, year, s.loc)
	prevYear, prevMonth := util.PreviousMonth(year, month)
	previous := query.FilterByMonth(all, prevMonth, prevYear, s.loc)

	return &DashboardSummary{
		Month:             month,
		Year:              year,
		Total:             calc.Summarize(all),
		CurrentMonth:      calc.Summarize(current),
		PreviousMonth:     calc.Summarize(previous),
		ExpenseByCategory: calc.TotalsByCategory(current, domain.KindExpense),
		Recent:            query.Take(query.SortByDateDescending(all), domain.RecentTransactionsLimit),
	}, nil
}
