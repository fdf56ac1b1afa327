package viewstate

import (
	"context"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/rs/zerolog"
)

// CategoryController shows one owner's category list
type CategoryController struct {
	*Controller[domain.Category]

	store   domain.CategoryStore
	ownerID string
}

func NewCategoryController(store domain.CategoryStore, ownerID string, logger zerolog.Logger) *CategoryController {
	return &CategoryController{
		Controller: NewController[domain.Category]("categories", logger),
		store:      store,
		ownerID:    ownerID,
	}
}

func (c *CategoryController) LoadQuery(q domain.CategoryQuery) error {
	if q.Kind != nil && !q.Kind.Valid() {
		return domain.ErrInvalidKind
	}
	c.Load(func(ctx context.Context) (*domain.Subscription[domain.Category], error) {
		return c.store.Subscribe(ctx, c.ownerID, q)
	})
	return nil
}

func (c *CategoryController) LoadAll() error {
	return c.LoadQuery(domain.CategoryQuery{})
}

func (c *CategoryController) LoadByKind(kind domain.Kind) error {
	return c.LoadQuery(domain.CategoryQuery{Kind: &kind})
}

func (c *CategoryController) Add(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	cat = cat.Normalize()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	var created *domain.Category
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.store.Add(ctx, c.ownerID, cat)
		return err
	})
	return created, err
}

func (c *CategoryController) Update(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	if cat.ID == "" {
		return nil, domain.ErrEmptyID
	}
	cat = cat.Normalize()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Category
	err := c.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.store.Update(ctx, c.ownerID, cat)
		return err
	})
	return updated, err
}

// Delete removes a category. Records that name it keep their category text.
func (c *CategoryController) Delete(ctx context.Context, id string) error {
	return c.Do(ctx, func(ctx context.Context) error {
		return c.store.Delete(ctx, c.ownerID, id)
	})
}

// CreateDefaults adds the starter categories. The first failure stops the
// command; categories already added are kept.
func (c *CategoryController) CreateDefaults(ctx context.Context) ([]domain.Category, error) {
	created := make([]domain.Category, 0, len(domain.DefaultCategories))
	err := c.Do(ctx, func(ctx context.Context) error {
		for _, def := range domain.DefaultCategories {
			cat, err := c.store.Add(ctx, c.ownerID, def.Normalize())
			if err != nil {
				return err
			}
			created = append(created, *cat)
		}
		return nil
	})
	return created, err
}
