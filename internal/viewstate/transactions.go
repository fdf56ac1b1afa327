package viewstate

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/rs/zerolog"
)

// TransactionController shows one owner's transaction list
type TransactionController struct {
	*Controller[domain.Transaction]

	store    domain.TransactionStore
	ownerID  string
	now      func() time.Time
	selected atomic.Pointer[domain.Transaction]
}

func NewTransactionController(store domain.TransactionStore, ownerID string, logger zerolog.Logger) *TransactionController {
	return &TransactionController{
		Controller: NewController[domain.Transaction]("transactions", logger),
		store:      store,
		ownerID:    ownerID,
		now:        time.Now,
	}
}

// LoadQuery subscribes to the transactions matching q
func (c *TransactionController) LoadQuery(q domain.TransactionQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	c.Load(func(ctx context.Context) (*domain.Subscription[domain.Transaction], error) {
		return c.store.Subscribe(ctx, c.ownerID, q)
	})
	return nil
}

func (c *TransactionController) LoadAll() error {
	return c.LoadQuery(domain.TransactionQuery{})
}

func (c *TransactionController) LoadByKind(kind domain.Kind) error {
	return c.LoadQuery(domain.TransactionQuery{Kind: &kind})
}

// LoadByMonth loads the transactions dated inside a 1-based month
func (c *TransactionController) LoadByMonth(month, year int) error {
	return c.LoadQuery(domain.TransactionQuery{Month: month, Year: year})
}

func (c *TransactionController) LoadByKindAndMonth(kind domain.Kind, month, year int) error {
	return c.LoadQuery(domain.TransactionQuery{Kind: &kind, Month: month, Year: year})
}

// LoadRecent loads the n newest transactions; n <= 0 uses the default size
func (c *TransactionController) LoadRecent(n int) error {
	if n <= 0 {
		n = domain.RecentTransactionsLimit
	}
	return c.LoadQuery(domain.TransactionQuery{Limit: n})
}

// Get fetches one transaction and remembers it as the selected one
func (c *TransactionController) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := c.store.GetByID(ctx, c.ownerID, id)
	if err != nil {
		return nil, err
	}
	c.selected.Store(t)
	return t, nil
}

// Selected returns the transaction most recently fetched with Get
func (c *TransactionController) Selected() *domain.Transaction {
	return c.selected.Load()
}

func (c *TransactionController) Add(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	t = t.Normalize(c.now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var created *domain.Transaction
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.store.Add(ctx, c.ownerID, t)
		return err
	})
	return created, err
}

func (c *TransactionController) Update(ctx context.Context, t domain.Transaction) (*domain.Transaction, error) {
	if t.ID == "" {
		return nil, domain.ErrEmptyID
	}
	t = t.Normalize(c.now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Transaction
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.store.Update(ctx, c.ownerID, t)
		return err
	})
	return updated, err
}

func (c *TransactionController) Delete(ctx context.Context, id string) error {
	return c.Do(ctx, func(ctx context.Context) error {
		return c.store.Delete(ctx, c.ownerID, id)
	})
}
