package postgres

import (
	"context"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = "id, owner_id, name, kind, icon"

// CategoryRepository implements domain.CategoryStore using PostgreSQL
type CategoryRepository struct {
	pool     *pgxpool.Pool
	notifier *Notifier
	logger   zerolog.Logger
}

var _ domain.CategoryStore = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool, notifier *Notifier, logger zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{
		pool:     pool,
		notifier: notifier,
		logger:   logger.With().Str("component", "category_store").Logger(),
	}
}

// Subscribe streams the owner's categories, optionally of one kind
func (r *CategoryRepository) Subscribe(ctx context.Context, ownerID string, q domain.CategoryQuery) (*domain.Subscription[domain.Category], error) {
	return subscribe(ctx, r.notifier, r.logger, domain.EntityCategory, "categories", ownerID,
		func(ctx context.Context) ([]domain.Category, error) {
			return r.fetch(ctx, ownerID, q)
		})
}

// List returns the owner's categories matching q without subscribing
func (r *CategoryRepository) List(ctx context.Context, ownerID string, q domain.CategoryQuery) ([]domain.Category, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	records, err := r.fetch(ctx, ownerID, q)
	if err != nil {
		return nil, storeError(domain.EntityCategory, "", err)
	}
	return records, nil
}

func (r *CategoryRepository) fetch(ctx context.Context, ownerID string, q domain.CategoryQuery) ([]domain.Category, error) {
	sql, args := buildCategoryQuery(ownerID, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectCategory)
}

// Add creates a new category
func (r *CategoryRepository) Add(ctx context.Context, ownerID string, c domain.Category) (*domain.Category, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	c = c.WithIdentity(uuid.New().String(), ownerID)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.ID, c.OwnerID, c.Name, string(c.Kind), c.Icon)

	created, err := scanCategory(row)
	if err != nil {
		return nil, storeError(domain.EntityCategory, c.ID, err)
	}
	return &created, nil
}

// Update replaces the category stored at c.ID
func (r *CategoryRepository) Update(ctx context.Context, ownerID string, c domain.Category) (*domain.Category, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if c.ID == "" {
		return nil, domain.ErrEmptyID
	}
	c = c.WithIdentity(c.ID, ownerID)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			icon = EXCLUDED.icon
		WHERE categories.owner_id = EXCLUDED.owner_id
		RETURNING `+categoryColumns,
		c.ID, c.OwnerID, c.Name, string(c.Kind), c.Icon)

	updated, err := scanCategory(row)
	if err != nil {
		return nil, storeError(domain.EntityCategory, c.ID, err)
	}
	return &updated, nil
}

// Delete removes a category. Transactions and budgets naming it are left untouched.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE owner_id = $1 AND id = $2`, ownerID, id); err != nil {
		return storeError(domain.EntityCategory, id, err)
	}
	return nil
}

// GetByID retrieves one of the owner's categories
func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE owner_id = $1 AND id = $2`, ownerID, id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, storeError(domain.EntityCategory, id, err)
	}
	return &c, nil
}

func buildCategoryQuery(ownerID string, q domain.CategoryQuery) (string, []any) {
	if q.Kind != nil {
		return `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 AND kind = $2 ORDER BY seq`,
			[]any{ownerID, string(*q.Kind)}
	}
	return `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 ORDER BY seq`, []any{ownerID}
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var (
		c    domain.Category
		kind string
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &kind, &c.Icon); err != nil {
		return domain.Category{}, err
	}
	var err error
	if c.Kind, err = parseStoredKind(kind); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func collectCategory(row pgx.CollectableRow) (domain.Category, error) {
	return scanCategory(row)
}
