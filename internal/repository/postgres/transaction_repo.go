package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const transactionColumns = "id, owner_id, amount, kind, category, description, occurred_at"

// TransactionRepository implements domain.TransactionStore using PostgreSQL
type TransactionRepository struct {
	pool     *pgxpool.Pool
	notifier *Notifier
	loc      *time.Location
	logger   zerolog.Logger
}

var _ domain.TransactionStore = (*TransactionRepository)(nil)

// NewTransactionRepository creates a new TransactionRepository. Month windows are
// computed in loc.
func NewTransactionRepository(pool *pgxpool.Pool, notifier *Notifier, loc *time.Location, logger zerolog.Logger) *TransactionRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionRepository{
		pool:     pool,
		notifier: notifier,
		loc:      loc,
		logger:   logger.With().Str("component", "transaction_store").Logger(),
	}
}

// Subscribe streams the owner's transactions matching q
func (r *TransactionRepository) Subscribe(ctx context.Context, ownerID string, q domain.TransactionQuery) (*domain.Subscription[domain.Transaction], error) {
	return subscribe(ctx, r.notifier, r.logger, domain.EntityTransaction, "transactions", ownerID,
		func(ctx context.Context) ([]domain.Transaction, error) {
			return r.fetch(ctx, ownerID, q)
		})
}

// List returns the owner's transactions matching q without subscribing
func (r *TransactionRepository) List(ctx context.Context, ownerID string, q domain.TransactionQuery) ([]domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	records, err := r.fetch(ctx, ownerID, q)
	if err != nil {
		return nil, storeError(domain.EntityTransaction, "", err)
	}
	return records, nil
}

func (r *TransactionRepository) fetch(ctx context.Context, ownerID string, q domain.TransactionQuery) ([]domain.Transaction, error) {
	sql, args := buildTransactionQuery(ownerID, q, r.loc)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectTransaction)
}

// Add creates a new transaction
func (r *TransactionRepository) Add(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	t = t.WithIdentity(uuid.New().String(), ownerID)

	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		t.ID, t.OwnerID, amount, string(t.Kind), t.Category, t.Description, t.Date)

	created, err := scanTransaction(row)
	if err != nil {
		return nil, storeError(domain.EntityTransaction, t.ID, err)
	}
	return &created, nil
}

// Update replaces the transaction stored at t.ID
func (r *TransactionRepository) Update(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if t.ID == "" {
		return nil, domain.ErrEmptyID
	}
	t = t.WithIdentity(t.ID, ownerID)

	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			kind = EXCLUDED.kind,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			occurred_at = EXCLUDED.occurred_at
		WHERE transactions.owner_id = EXCLUDED.owner_id
		RETURNING `+transactionColumns,
		t.ID, t.OwnerID, amount, string(t.Kind), t.Category, t.Description, t.Date)

	updated, err := scanTransaction(row)
	if err != nil {
		return nil, storeError(domain.EntityTransaction, t.ID, err)
	}
	return &updated, nil
}

// Delete removes a transaction. Missing identifiers are not an error.
func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE owner_id = $1 AND id = $2`, ownerID, id); err != nil {
		return storeError(domain.EntityTransaction, id, err)
	}
	return nil
}

// GetByID retrieves one of the owner's transactions
func (r *TransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE owner_id = $1 AND id = $2`, ownerID, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, storeError(domain.EntityTransaction, id, err)
	}
	return &t, nil
}

// buildTransactionQuery renders q as SQL. Ties on date keep insertion order.
func buildTransactionQuery(ownerID string, q domain.TransactionQuery, loc *time.Location) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE owner_id = $1")
	if q.Kind != nil {
		args = append(args, string(*q.Kind))
		fmt.Fprintf(&sb, " AND kind = $%d", len(args))
	}
	if q.HasMonth() {
		start, _ := query.MonthRange(q.Month, q.Year, loc)
		args = append(args, start, start.AddDate(0, 1, 0))
		fmt.Fprintf(&sb, " AND occurred_at >= $%d AND occurred_at < $%d", len(args)-1, len(args))
	}
	sb.WriteString(" ORDER BY occurred_at DESC, seq ASC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		t      domain.Transaction
		amount pgtype.Numeric
		kind   string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &amount, &kind, &t.Category, &t.Description, &t.Date); err != nil {
		return domain.Transaction{}, err
	}

	var err error
	if t.Amount, err = pgNumericToDecimal(amount); err != nil {
		return domain.Transaction{}, err
	}
	if t.Kind, err = parseStoredKind(kind); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

func collectTransaction(row pgx.CollectableRow) (domain.Transaction, error) {
	return scanTransaction(row)
}
