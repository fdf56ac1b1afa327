package domain

import (
	"context"
	"strings"
)

type Category struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Icon    string `json:"icon"`
}

func (c Category) RecordID() string    { return c.ID }
func (c Category) RecordOwner() string { return c.OwnerID }
func (c Category) RecordKind() Kind    { return c.Kind }

func (c Category) WithIdentity(id, ownerID string) Category {
	c.ID = id
	c.OwnerID = ownerID
	return c
}

// Normalize trims the name and resolves the icon tag
func (c Category) Normalize() Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = ResolveIcon(c.Icon)
	return c
}

func (c Category) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if len(c.Name) > MaxCategoryNameLength {
		return ErrNameTooLong
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// CategoryQuery selects an owner's categories, optionally by kind
type CategoryQuery struct {
	Kind *Kind
}

type CategoryStore interface {
	Subscribe(ctx context.Context, ownerID string, q CategoryQuery) (*Subscription[Category], error)
	// List returns one snapshot of the owner's records matching q
	List(ctx context.Context, ownerID string, q CategoryQuery) ([]Category, error)
	Add(ctx context.Context, ownerID string, c Category) (*Category, error)
	Update(ctx context.Context, ownerID string, c Category) (*Category, error)
	Delete(ctx context.Context, ownerID string, id string) error
	GetByID(ctx context.Context, ownerID string, id string) (*Category, error)
}

// DefaultCategories is the starter set offered to new owners
var DefaultCategories = []Category{
	{Name: "Food & Drinks", Kind: KindExpense, Icon: "food"},
	{Name: "Transportation", Kind: KindExpense, Icon: "transport"},
	{Name: "Shopping", Kind: KindExpense, Icon: "shopping"},
	{Name: "Bills & Utilities", Kind: KindExpense, Icon: "bills"},
	{Name: "Entertainment", Kind: KindExpense, Icon: "entertainment"},
	{Name: "Healthcare", Kind: KindExpense, Icon: "healthcare"},
	{Name: "Salary", Kind: KindIncome, Icon: "salary"},
	{Name: "Freelance", Kind: KindIncome, Icon: "freelance"},
	{Name: "Investment", Kind: KindIncome, Icon: "investment"},
	{Name: "Other Income", Kind: KindIncome, Icon: "other"},
}
