package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
}

func (t Transaction) RecordID() string    { return t.ID }
func (t Transaction) RecordOwner() string { return t.OwnerID }
func (t Transaction) RecordKind() Kind    { return t.Kind }
func (t Transaction) Timestamp() time.Time {
	return t.Date
}

func (t Transaction) WithIdentity(id, ownerID string) Transaction {
	t.ID = id
	t.OwnerID = ownerID
	return t
}

// Normalize trims free text and defaults a missing date to now
func (t Transaction) Normalize(now time.Time) Transaction {
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	if t.Date.IsZero() {
		t.Date = now
	}
	return t
}

// Validate checks the fields a caller controls
func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// TransactionQuery selects an owner's transactions. Results are always ordered by
// date descending. Month is 1-based; zero Month means no date window.
type TransactionQuery struct {
	Kind  *Kind
	Month int
	Year  int
	Limit int
}

// HasMonth reports whether the query carries a month window
func (q TransactionQuery) HasMonth() bool {
	return q.Month != 0 || q.Year != 0
}

// Validate checks the query's kind and month window
func (q TransactionQuery) Validate() error {
	if q.Kind != nil && !q.Kind.Valid() {
		return ErrInvalidKind
	}
	if q.HasMonth() {
		return ValidateMonthYear(q.Month, q.Year)
	}
	return nil
}

// RecentTransactionsLimit is the size of the "recent transactions" view
const RecentTransactionsLimit = 5

type TransactionStore interface {
	Subscribe(ctx context.Context, ownerID string, q TransactionQuery) (*Subscription[Transaction], error)
	// List returns one snapshot of the owner's records matching q
	List(ctx context.Context, ownerID string, q TransactionQuery) ([]Transaction, error)
	Add(ctx context.Context, ownerID string, t Transaction) (*Transaction, error)
	Update(ctx context.Context, ownerID string, t Transaction) (*Transaction, error)
	Delete(ctx context.Context, ownerID string, id string) error
	GetByID(ctx context.Context, ownerID string, id string) (*Transaction, error)
}
