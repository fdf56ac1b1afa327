package memory

import (
	"context"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/query"
)

// Store holds the three collections of the in-memory backend
type Store struct {
	transactions *collection[domain.Transaction]
	categories   *collection[domain.Category]
	budgets      *collection[domain.Budget]
	loc          *time.Location
}

// NewStore creates an empty store. Month windows are computed in loc.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		transactions: newCollection[domain.Transaction](domain.EntityTransaction),
		categories:   newCollection[domain.Category](domain.EntityCategory),
		budgets:      newCollection[domain.Budget](domain.EntityBudget),
		loc:          loc,
	}
}

// Transactions returns the transaction store view
func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{c: s.transactions, loc: s.loc}
}

// Categories returns the category store view
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{c: s.categories}
}

// Budgets returns the budget store view
func (s *Store) Budgets() *BudgetRepository {
	return &BudgetRepository{c: s.budgets}
}

// Close ends every live subscription with a transport error
func (s *Store) Close() {
	s.transactions.close()
	s.categories.close()
	s.budgets.close()
}

// TransactionRepository implements domain.TransactionStore
type TransactionRepository struct {
	c   *collection[domain.Transaction]
	loc *time.Location
}

var _ domain.TransactionStore = (*TransactionRepository)(nil)

func (r *TransactionRepository) Subscribe(ctx context.Context, ownerID string, q domain.TransactionQuery) (*domain.Subscription[domain.Transaction], error) {
	return r.c.subscribe(ctx, ownerID, func(records []domain.Transaction) []domain.Transaction {
		return query.ApplyTransactionQuery(records, q, r.loc)
	})
}

func (r *TransactionRepository) List(ctx context.Context, ownerID string, q domain.TransactionQuery) ([]domain.Transaction, error) {
	return r.c.list(ownerID, func(records []domain.Transaction) []domain.Transaction {
		return query.ApplyTransactionQuery(records, q, r.loc)
	})
}

func (r *TransactionRepository) Add(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	created, err := r.c.add(ownerID, t)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TransactionRepository) Update(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	updated, err := r.c.update(ownerID, t)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.c.remove(ownerID, id)
}

func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	t, err := r.c.get(ownerID, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CategoryRepository implements domain.CategoryStore
type CategoryRepository struct {
	c *collection[domain.Category]
}

var _ domain.CategoryStore = (*CategoryRepository)(nil)

func (r *CategoryRepository) Subscribe(ctx context.Context, ownerID string, q domain.CategoryQuery) (*domain.Subscription[domain.Category], error) {
	return r.c.subscribe(ctx, ownerID, func(records []domain.Category) []domain.Category {
		return query.ApplyCategoryQuery(records, q)
	})
}

func (r *CategoryRepository) List(ctx context.Context, ownerID string, q domain.CategoryQuery) ([]domain.Category, error) {
	return r.c.list(ownerID, func(records []domain.Category) []domain.Category {
		return query.ApplyCategoryQuery(records, q)
	})
}

func (r *CategoryRepository) Add(ctx context.Context, ownerID string, cat domain.Category) (*domain.Category, error) {
	created, err := r.c.add(ownerID, cat)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, ownerID string, cat domain.Category) (*domain.Category, error) {
	updated, err := r.c.update(ownerID, cat)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.c.remove(ownerID, id)
}

func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	cat, err := r.c.get(ownerID, id)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// BudgetRepository implements domain.BudgetStore
type BudgetRepository struct {
	c *collection[domain.Budget]
}

var _ domain.BudgetStore = (*BudgetRepository)(nil)

func (r *BudgetRepository) Subscribe(ctx context.Context, ownerID string, q domain.BudgetQuery) (*domain.Subscription[domain.Budget], error) {
	return r.c.subscribe(ctx, ownerID, func(records []domain.Budget) []domain.Budget {
		return query.ApplyBudgetQuery(records, q)
	})
}

func (r *BudgetRepository) List(ctx context.Context, ownerID string, q domain.BudgetQuery) ([]domain.Budget, error) {
	return r.c.list(ownerID, func(records []domain.Budget) []domain.Budget {
		return query.ApplyBudgetQuery(records, q)
	})
}

func (r *BudgetRepository) Add(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	created, err := r.c.add(ownerID, b)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *BudgetRepository) Update(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	updated, err := r.c.update(ownerID, b)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.c.remove(ownerID, id)
}

func (r *BudgetRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	b, err := r.c.get(ownerID, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOne returns the first budget for category in month/year, or nil when none exists
func (r *BudgetRepository) GetOne(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	matches := query.ApplyBudgetQuery(r.c.snapshot(ownerID), domain.BudgetQuery{
		Category: &category,
		Month:    month,
		Year:     year,
		Limit:    1,
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
