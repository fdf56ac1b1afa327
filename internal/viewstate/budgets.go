package viewstate

import (
	"context"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BudgetController shows one owner's budgets for the current month, each carrying
// its spent amount
type BudgetController struct {
	*Controller[domain.Budget]

	budgets      domain.BudgetStore
	transactions domain.TransactionStore
	ownerID      string
	loc          *time.Location
	now          func() time.Time
}

// NewBudgetController creates a controller whose current month is taken in loc
func NewBudgetController(budgets domain.BudgetStore, transactions domain.TransactionStore, ownerID string, loc *time.Location, logger zerolog.Logger) *BudgetController {
	if loc == nil {
		loc = time.Local
	}
	return &BudgetController{
		Controller:   NewController[domain.Budget]("budgets", logger),
		budgets:      budgets,
		transactions: transactions,
		ownerID:      ownerID,
		loc:          loc,
		now:          time.Now,
	}
}

func (c *BudgetController) currentPeriod() (month, year int) {
	return util.CurrentPeriod(c.now().In(c.loc))
}

// LoadCurrentMonth fetches this month's budgets and all transactions concurrently
// and publishes the budgets with SpentAmount applied. The result is a one-shot
// snapshot; commands reload it.
func (c *BudgetController) LoadCurrentMonth() {
	month, year := c.currentPeriod()
	c.Load(func(ctx context.Context) (*domain.Subscription[domain.Budget], error) {
		return domain.Once(ctx, func(ctx context.Context) ([]domain.Budget, error) {
			return c.fetchWithSpent(ctx, month, year)
		}), nil
	})
}

func (c *BudgetController) fetchWithSpent(ctx context.Context, month, year int) ([]domain.Budget, error) {
	var (
		budgets      []domain.Budget
		transactions []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = c.budgets.List(gctx, c.ownerID, domain.BudgetQuery{Month: month, Year: year})
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = c.transactions.List(gctx, c.ownerID, domain.TransactionQuery{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return calc.ApplySpent(budgets, transactions), nil
}

// Add creates a budget for the current month and year
func (c *BudgetController) Add(ctx context.Context, b domain.Budget) (*domain.Budget, error) {
	b.Month, b.Year = c.currentPeriod()
	b = b.Normalize()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	var created *domain.Budget
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.budgets.Add(ctx, c.ownerID, b)
		return err
	})
	return created, err
}

func (c *BudgetController) Update(ctx context.Context, b domain.Budget) (*domain.Budget, error) {
	if b.ID == "" {
		return nil, domain.ErrEmptyID
	}
	b = b.Normalize()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Budget
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.budgets.Update(ctx, c.ownerID, b)
		return err
	})
	return updated, err
}

func (c *BudgetController) Delete(ctx context.Context, id string) error {
	return c.Do(ctx, func(ctx context.Context) error {
		return c.budgets.Delete(ctx, c.ownerID, id)
	})
}
