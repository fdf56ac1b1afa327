package service

import (
	"context"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/calc"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionStore
	eventPublisher  websocket.EventPublisher
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionStore) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(ownerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// TransactionInput contains the caller-controlled fields of a transaction
type TransactionInput struct {
	Amount      decimal.Decimal
	Kind        domain.Kind
	Category    string
	Description string
	Date        *time.Time
}

func (in TransactionInput) toDomain(now time.Time) domain.Transaction {
	t := domain.Transaction{
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    in.Category,
		Description: in.Description,
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	return t.Normalize(now)
}

// CreateTransaction validates and stores a new transaction
func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID string, input TransactionInput) (*domain.Transaction, error) {
	t := input.toDomain(s.now())
	if err := t.Validate(); err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Add(ctx, ownerID, t)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.TransactionCreated(created))
	return created, nil
}

// UpdateTransaction replaces the transaction at id with input
func (s *TransactionService) UpdateTransaction(ctx context.Context, ownerID, id string, input TransactionInput) (*domain.Transaction, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}
	t := input.toDomain(s.now())
	t.ID = id
	if err := t.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(ctx, ownerID, t)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction removes a transaction; unknown ids are not an error
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.transactionRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.TransactionDeleted(websocket.DeletedPayload{ID: id}))
	return nil
}

// GetTransaction retrieves a single transaction
func (s *TransactionService) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, ownerID, id)
}

// ListTransactions returns the owner's transactions matching q, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, ownerID string, q domain.TransactionQuery) ([]domain.Transaction, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.transactionRepo.List(ctx, ownerID, q)
}

// GetRecentTransactions returns the n newest transactions; n <= 0 uses the default
func (s *TransactionService) GetRecentTransactions(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error) {
	if n <= 0 {
		n = domain.RecentTransactionsLimit
	}
	return s.ListTransactions(ctx, ownerID, domain.TransactionQuery{Limit: n})
}

// GetSummary totals the transactions matching q. The limit is ignored.
func (s *TransactionService) GetSummary(ctx context.Context, ownerID string, q domain.TransactionQuery) (calc.Summary, error) {
	q.Limit = 0
	transactions, err := s.ListTransactions(ctx, ownerID, q)
	if err != nil {
		return calc.Summary{}, err
	}
	return calc.Summarize(transactions), nil
}
