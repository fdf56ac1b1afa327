package service

import (
	"context"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo   domain.CategoryStore
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryStore) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(ownerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// CategoryInput contains the caller-controlled fields of a category
type CategoryInput struct {
	Name string
	Kind domain.Kind
	Icon string
}

func (in CategoryInput) toDomain() domain.Category {
	return domain.Category{Name: in.Name, Kind: in.Kind, Icon: in.Icon}.Normalize()
}

// CreateCategory validates and stores a new category. Names need not be unique.
func (s *CategoryService) CreateCategory(ctx context.Context, ownerID string, input CategoryInput) (*domain.Category, error) {
	c := input.toDomain()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := s.categoryRepo.Add(ctx, ownerID, c)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.CategoryCreated(created))
	return created, nil
}

// UpdateCategory replaces the category at id with input. Transactions and budgets
// keep the category name they were saved with.
func (s *CategoryService) UpdateCategory(ctx context.Context, ownerID, id string, input CategoryInput) (*domain.Category, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}
	c := input.toDomain()
	c.ID = id
	if err := c.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.categoryRepo.Update(ctx, ownerID, c)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory removes a category without touching records that name it
func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := s.categoryRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.CategoryDeleted(websocket.DeletedPayload{ID: id}))
	return nil
}

func (s *CategoryService) GetCategory(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, ownerID, id)
}

// ListCategories returns the owner's categories, optionally of one kind
func (s *CategoryService) ListCategories(ctx context.Context, ownerID string, kind *domain.Kind) ([]domain.Category, error) {
	if kind != nil && !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	return s.categoryRepo.List(ctx, ownerID, domain.CategoryQuery{Kind: kind})
}

// CreateDefaultCategories adds each starter category the owner does not already
// have (matched by name and kind) and returns the ones added
func (s *CategoryService) CreateDefaultCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	existing, err := s.ListCategories(ctx, ownerID, nil)
	if err != nil {
		return nil, err
	}

	type key struct {
		name string
		kind domain.Kind
	}
	have := make(map[key]bool, len(existing))
	for _, c := range existing {
		have[key{c.Name, c.Kind}] = true
	}

	created := make([]domain.Category, 0, len(domain.DefaultCategories))
	for _, def := range domain.DefaultCategories {
		if have[key{def.Name, def.Kind}] {
			continue
		}
		c, err := s.categoryRepo.Add(ctx, ownerID, def.Normalize())
		if err != nil {
			return created, err
		}
		created = append(created, *c)
	}

	if len(created) > 0 {
		s.publishEvent(ownerID, websocket.CategoriesSeeded(created))
	}
	return created, nil
}

// Icons returns the icon tags a category may use
func (s *CategoryService) Icons() []string {
	return append([]string(nil), domain.CategoryIcons...)
}
