package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Budget caps spending in a category for one calendar month.
// SpentAmount is derived on every load and is never the source of truth.
type Budget struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	SpentAmount decimal.Decimal `json:"spentAmount"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
}

func (b Budget) RecordID() string    { return b.ID }
func (b Budget) RecordOwner() string { return b.OwnerID }

func (b Budget) WithIdentity(id, ownerID string) Budget {
	b.ID = id
	b.OwnerID = ownerID
	return b
}

// Normalize trims the category and clears the derived spent amount
func (b Budget) Normalize() Budget {
	b.Category = strings.TrimSpace(b.Category)
	b.SpentAmount = decimal.Zero
	return b
}

func (b Budget) Validate() error {
	if b.Category == "" {
		return ErrCategoryRequired
	}
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	return ValidateMonthYear(b.Month, b.Year)
}

// BudgetQuery selects an owner's budgets. Zero fields are not filtered on.
type BudgetQuery struct {
	Category *string
	Month    int
	Year     int
	Limit    int
}

type BudgetStore interface {
	Subscribe(ctx context.Context, ownerID string, q BudgetQuery) (*Subscription[Budget], error)
	// List returns one snapshot of the owner's records matching q
	List(ctx context.Context, ownerID string, q BudgetQuery) ([]Budget, error)
	Add(ctx context.Context, ownerID string, b Budget) (*Budget, error)
	Update(ctx context.Context, ownerID string, b Budget) (*Budget, error)
	Delete(ctx context.Context, ownerID string, id string) error
	GetByID(ctx context.Context, ownerID string, id string) (*Budget, error)
	// GetOne returns the owner's budget for a category and month, or nil when none exists
	GetOne(ctx context.Context, ownerID string, category string, month, year int) (*Budget, error)
}
