package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/util"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo      domain.BudgetStore
	transactionRepo domain.TransactionStore
	eventPublisher  websocket.EventPublisher
	loc             *time.Location
	now             func() time.Time
}

// NewBudgetService creates a new BudgetService. The current month is taken in loc.
func NewBudgetService(budgetRepo domain.BudgetStore, transactionRepo domain.TransactionStore, loc *time.Location) *BudgetService {
	if loc == nil {
		loc = time.Local
	}
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		loc:             loc,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(ownerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// BudgetInput contains the caller-controlled fields of a budget. A zero month or
// year means the current one.
type BudgetInput struct {
	Category string
	Amount   decimal.Decimal
	Month    int
	Year     int
}

func (s *BudgetService) toDomain(in BudgetInput) domain.Budget {
	month, year := util.ResolvePeriod(in.Month, in.Year, s.now().In(s.loc))
	return domain.Budget{
		Category: in.Category,
		Amount:   in.Amount,
		Month:    month,
		Year:     year,
	}.Normalize()
}

// BudgetWithProgress is a budget with its spend breakdown
type BudgetWithProgress struct {
	domain.Budget
	Progress calc.Progress `json:"progress"`
}

// MonthlyBudgetSummary is the budget overview of one month
type MonthlyBudgetSummary struct {
	Month          int                  `json:"month"`
	Year           int                  `json:"year"`
	TotalAllocated decimal.Decimal      `json:"totalAllocated"`
	TotalSpent     decimal.Decimal      `json:"totalSpent"`
	TotalRemaining decimal.Decimal      `json:"totalRemaining"`
	Budgets        []BudgetWithProgress `json:"budgets"`
}

// CreateBudget validates and stores a new budget
func (s *BudgetService) CreateBudget(ctx context.Context, ownerID string, input BudgetInput) (*domain.Budget, error) {
	b := s.toDomain(input)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	created, err := s.budgetRepo.Add(ctx, ownerID, b)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.BudgetCreated(created))
	return created, nil
}

// UpdateBudget replaces the budget at id with input
func (s *BudgetService) UpdateBudget(ctx context.Context, ownerID, id string, input BudgetInput) (*domain.Budget, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}
	b := s.toDomain(input)
	b.ID = id
	if err := b.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.Update(ctx, ownerID, b)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes a budget; unknown ids are not an error
func (s *BudgetService) DeleteBudget(ctx context.Context, ownerID, id string) error {
	if err := s.budgetRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.BudgetDeleted(websocket.DeletedPayload{ID: id}))
	return nil
}

// GetBudget retrieves a budget with its spent amount applied
func (s *BudgetService) GetBudget(ctx context.Context, ownerID, id string) (*BudgetWithProgress, error) {
	b, err := s.budgetRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, ownerID, *b)
}

// GetForCategory returns the budget for category in month/year, or ErrNotFound
func (s *BudgetService) GetForCategory(ctx context.Context, ownerID, category string, month, year int) (*BudgetWithProgress, error) {
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if err := domain.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}

	b, err := s.budgetRepo.GetOne(ctx, ownerID, category, month, year)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("budget for %s %d-%02d: %w", category, year, month, domain.ErrNotFound)
	}
	return s.withProgress(ctx, ownerID, *b)
}

func (s *BudgetService) withProgress(ctx context.Context, ownerID string, b domain.Budget) (*BudgetWithProgress, error) {
	transactions, err := s.allTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	b.SpentAmount = calc.SpentForBudget(transactions, b)
	return &BudgetWithProgress{Budget: b, Progress: calc.BudgetProgress(b)}, nil
}

// GetCurrentMonth returns the budget overview for the current month
func (s *BudgetService) GetCurrentMonth(ctx context.Context, ownerID string) (*MonthlyBudgetSummary, error) {
	month, year := util.CurrentPeriod(s.now().In(s.loc))
	return s.GetForMonth(ctx, ownerID, month, year)
}

// GetForMonth loads the month's budgets and all transactions concurrently and
// returns the budgets with spent amounts and totals
func (s *BudgetService) GetForMonth(ctx context.Context, ownerID string, month, year int) (*MonthlyBudgetSummary, error) {
	if err := domain.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}

	var (
		budgets      []domain.Budget
		transactions []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.budgetRepo.List(gctx, ownerID, domain.BudgetQuery{Month: month, Year: year})
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.allTransactions(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	budgets = calc.ApplySpent(budgets, transactions)
	allocated, spent, remaining := calc.Totals(budgets)

	summary := &MonthlyBudgetSummary{
		Month:          month,
		Year:           year,
		TotalAllocated: allocated,
		TotalSpent:     spent,
		TotalRemaining: remaining,
		Budgets:        make([]BudgetWithProgress, 0, len(budgets)),
	}
	for _, b := range budgets {
		summary.Budgets = append(summary.Budgets, BudgetWithProgress{Budget: b, Progress: calc.BudgetProgress(b)})
	}
	return summary, nil
}

func (s *BudgetService) allTransactions(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	return s.transactionRepo.List(ctx, ownerID, domain.TransactionQuery{})
}
