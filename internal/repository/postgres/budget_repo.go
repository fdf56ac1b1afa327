package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const budgetColumns = "id, owner_id, category, amount, month, year"

// BudgetRepository implements domain.BudgetStore using PostgreSQL
type BudgetRepository struct {
	pool     *pgxpool.Pool
	notifier *Notifier
	logger   zerolog.Logger
}

var _ domain.BudgetStore = (*BudgetRepository)(nil)

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool, notifier *Notifier, logger zerolog.Logger) *BudgetRepository {
	return &BudgetRepository{
		pool:     pool,
		notifier: notifier,
		logger:   logger.With().Str("component", "budget_store").Logger(),
	}
}

// Subscribe streams the owner's budgets matching q
func (r *BudgetRepository) Subscribe(ctx context.Context, ownerID string, q domain.BudgetQuery) (*domain.Subscription[domain.Budget], error) {
	return subscribe(ctx, r.notifier, r.logger, domain.EntityBudget, "budgets", ownerID,
		func(ctx context.Context) ([]domain.Budget, error) {
			return r.fetch(ctx, ownerID, q)
		})
}

// List returns the owner's budgets matching q without subscribing
func (r *BudgetRepository) List(ctx context.Context, ownerID string, q domain.BudgetQuery) ([]domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	records, err := r.fetch(ctx, ownerID, q)
	if err != nil {
		return nil, storeError(domain.EntityBudget, "", err)
	}
	return records, nil
}

func (r *BudgetRepository) fetch(ctx context.Context, ownerID string, q domain.BudgetQuery) ([]domain.Budget, error) {
	sql, args := buildBudgetQuery(ownerID, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectBudget)
}

// Add creates a new budget. SpentAmount is never stored.
func (r *BudgetRepository) Add(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	b = b.WithIdentity(uuid.New().String(), ownerID)

	amount, err := decimalToPgNumeric(b.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+budgetColumns,
		b.ID, b.OwnerID, b.Category, amount, b.Month, b.Year)

	created, err := scanBudget(row)
	if err != nil {
		return nil, storeError(domain.EntityBudget, b.ID, err)
	}
	return &created, nil
}

// Update replaces the budget stored at b.ID
func (r *BudgetRepository) Update(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if b.ID == "" {
		return nil, domain.ErrEmptyID
	}
	b = b.WithIdentity(b.ID, ownerID)

	amount, err := decimalToPgNumeric(b.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			month = EXCLUDED.month,
			year = EXCLUDED.year
		WHERE budgets.owner_id = EXCLUDED.owner_id
		RETURNING `+budgetColumns,
		b.ID, b.OwnerID, b.Category, amount, b.Month, b.Year)

	updated, err := scanBudget(row)
	if err != nil {
		return nil, storeError(domain.EntityBudget, b.ID, err)
	}
	return &updated, nil
}

// Delete removes a budget. Missing identifiers are not an error.
func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE owner_id = $1 AND id = $2`, ownerID, id); err != nil {
		return storeError(domain.EntityBudget, id, err)
	}
	return nil
}

// GetByID retrieves one of the owner's budgets
func (r *BudgetRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 AND id = $2`, ownerID, id)
	b, err := scanBudget(row)
	if err != nil {
		return nil, storeError(domain.EntityBudget, id, err)
	}
	return &b, nil
}

// GetOne returns the owner's first budget for category in month/year, or nil
func (r *BudgetRepository) GetOne(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sql, args := buildBudgetQuery(ownerID, domain.BudgetQuery{Category: &category, Month: month, Year: year, Limit: 1})
	b, err := scanBudget(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError(domain.EntityBudget, "", err)
	}
	return &b, nil
}

func buildBudgetQuery(ownerID string, q domain.BudgetQuery) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString("SELECT " + budgetColumns + " FROM budgets WHERE owner_id = $1")
	if q.Category != nil {
		args = append(args, *q.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if q.Month != 0 {
		args = append(args, q.Month)
		fmt.Fprintf(&sb, " AND month = $%d", len(args))
	}
	if q.Year != 0 {
		args = append(args, q.Year)
		fmt.Fprintf(&sb, " AND year = $%d", len(args))
	}
	sb.WriteString(" ORDER BY seq")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args
}

func scanBudget(row pgx.Row) (domain.Budget, error) {
	var (
		b      domain.Budget
		amount pgtype.Numeric
	)
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Category, &amount, &b.Month, &b.Year); err != nil {
		return domain.Budget{}, err
	}
	var err error
	if b.Amount, err = pgNumericToDecimal(amount); err != nil {
		return domain.Budget{}, err
	}
	return b, nil
}

func collectBudget(row pgx.CollectableRow) (domain.Budget, error) {
	return scanBudget(row)
}
