package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/query"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockTransactionStore is a mock implementation of domain.TransactionStore.
// Subscriptions emit one snapshot and end.
type MockTransactionStore struct {
	mu           sync.Mutex
	Transactions map[string]*domain.Transaction
	order        []string
	Loc          *time.Location

	SubscribeErr error
	ListErr      error
	AddErr       error
	UpdateErr    error
	DeleteErr    error
	GetErr       error
}

// NewMockTransactionStore creates a new MockTransactionStore
func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{
		Transactions: make(map[string]*domain.Transaction),
		Loc:          time.UTC,
	}
}

// AddTransaction seeds a transaction, assigning an ID when missing
func (m *MockTransactionStore) AddTransaction(t *domain.Transaction) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if _, ok := m.Transactions[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.Transactions[t.ID] = t
	return t
}

func (m *MockTransactionStore) owned(ownerID string) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Transaction
	for _, id := range m.order {
		if t, ok := m.Transactions[id]; ok && t.OwnerID == ownerID {
			result = append(result, *t)
		}
	}
	return result
}

func (m *MockTransactionStore) Subscribe(ctx context.Context, ownerID string, q domain.TransactionQuery) (*domain.Subscription[domain.Transaction], error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return domain.Once(ctx, func(ctx context.Context) ([]domain.Transaction, error) {
		return query.ApplyTransactionQuery(m.owned(ownerID), q, m.Loc), nil
	}), nil
}

func (m *MockTransactionStore) List(ctx context.Context, ownerID string, q domain.TransactionQuery) ([]domain.Transaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return query.ApplyTransactionQuery(m.owned(ownerID), q, m.Loc), nil
}

func (m *MockTransactionStore) Add(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	created := t.WithIdentity(uuid.New().String(), ownerID)
	return m.AddTransaction(&created), nil
}

func (m *MockTransactionStore) Update(ctx context.Context, ownerID string, t domain.Transaction) (*domain.Transaction, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if t.ID == "" {
		return nil, domain.ErrEmptyID
	}
	m.mu.Lock()
	existing, ok := m.Transactions[t.ID]
	m.mu.Unlock()
	if ok && existing.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	updated := t.WithIdentity(t.ID, ownerID)
	return m.AddTransaction(&updated), nil
}

func (m *MockTransactionStore) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Transactions[id]; ok && t.OwnerID == ownerID {
		delete(m.Transactions, id)
	}
	return nil
}

func (m *MockTransactionStore) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Transactions[id]; ok && t.OwnerID == ownerID {
		copied := *t
		return &copied, nil
	}
	return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
}

// MockCategoryStore is a mock implementation of domain.CategoryStore
type MockCategoryStore struct {
	mu         sync.Mutex
	Categories map[string]*domain.Category
	order      []string

	SubscribeErr error
	ListErr      error
	AddErr       error
	// FailAfter makes Add fail once this many categories have been added; zero disables it
	FailAfter int
	added     int
}

// NewMockCategoryStore creates a new MockCategoryStore
func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{Categories: make(map[string]*domain.Category)}
}

// AddCategory seeds a category, assigning an ID when missing
func (m *MockCategoryStore) AddCategory(c *domain.Category) *domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, ok := m.Categories[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.Categories[c.ID] = c
	return c
}

func (m *MockCategoryStore) Subscribe(ctx context.Context, ownerID string, q domain.CategoryQuery) (*domain.Subscription[domain.Category], error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return domain.Once(ctx, func(ctx context.Context) ([]domain.Category, error) {
		return query.ApplyCategoryQuery(m.owned(ownerID), q), nil
	}), nil
}

func (m *MockCategoryStore) owned(ownerID string) []domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Category
	for _, id := range m.order {
		if c, ok := m.Categories[id]; ok && c.OwnerID == ownerID {
			result = append(result, *c)
		}
	}
	return result
}

func (m *MockCategoryStore) List(ctx context.Context, ownerID string, q domain.CategoryQuery) ([]domain.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return query.ApplyCategoryQuery(m.owned(ownerID), q), nil
}

func (m *MockCategoryStore) Add(ctx context.Context, ownerID string, c domain.Category) (*domain.Category, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.mu.Lock()
	if m.FailAfter > 0 && m.added >= m.FailAfter {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: write rejected", domain.ErrTransport)
	}
	m.added++
	m.mu.Unlock()

	created := c.WithIdentity(uuid.New().String(), ownerID)
	return m.AddCategory(&created), nil
}

func (m *MockCategoryStore) Update(ctx context.Context, ownerID string, c domain.Category) (*domain.Category, error) {
	if c.ID == "" {
		return nil, domain.ErrEmptyID
	}
	updated := c.WithIdentity(c.ID, ownerID)
	return m.AddCategory(&updated), nil
}

func (m *MockCategoryStore) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Categories[id]; ok && c.OwnerID == ownerID {
		delete(m.Categories, id)
	}
	return nil
}

func (m *MockCategoryStore) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Categories[id]; ok && c.OwnerID == ownerID {
		copied := *c
		return &copied, nil
	}
	return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
}

// MockBudgetStore is a mock implementation of domain.BudgetStore
type MockBudgetStore struct {
	mu      sync.Mutex
	Budgets map[string]*domain.Budget
	order   []string

	SubscribeErr error
	ListErr      error
	AddErr       error
	GetOneErr    error
}

// NewMockBudgetStore creates a new MockBudgetStore
func NewMockBudgetStore() *MockBudgetStore {
	return &MockBudgetStore{Budgets: make(map[string]*domain.Budget)}
}

// AddBudget seeds a budget, assigning an ID when missing
func (m *MockBudgetStore) AddBudget(b *domain.Budget) *domain.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if _, ok := m.Budgets[b.ID]; !ok {
		m.order = append(m.order, b.ID)
	}
	m.Budgets[b.ID] = b
	return b
}

func (m *MockBudgetStore) owned(ownerID string) []domain.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Budget
	for _, id := range m.order {
		if b, ok := m.Budgets[id]; ok && b.OwnerID == ownerID {
			result = append(result, *b)
		}
	}
	return result
}

func (m *MockBudgetStore) Subscribe(ctx context.Context, ownerID string, q domain.BudgetQuery) (*domain.Subscription[domain.Budget], error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return domain.Once(ctx, func(ctx context.Context) ([]domain.Budget, error) {
		return query.ApplyBudgetQuery(m.owned(ownerID), q), nil
	}), nil
}

func (m *MockBudgetStore) List(ctx context.Context, ownerID string, q domain.BudgetQuery) ([]domain.Budget, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return query.ApplyBudgetQuery(m.owned(ownerID), q), nil
}

func (m *MockBudgetStore) Add(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	created := b.WithIdentity(uuid.New().String(), ownerID)
	return m.AddBudget(&created), nil
}

func (m *MockBudgetStore) Update(ctx context.Context, ownerID string, b domain.Budget) (*domain.Budget, error) {
	if b.ID == "" {
		return nil, domain.ErrEmptyID
	}
	updated := b.WithIdentity(b.ID, ownerID)
	return m.AddBudget(&updated), nil
}

func (m *MockBudgetStore) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Budgets[id]; ok && b.OwnerID == ownerID {
		delete(m.Budgets, id)
	}
	return nil
}

func (m *MockBudgetStore) GetByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Budgets[id]; ok && b.OwnerID == ownerID {
		copied := *b
		return &copied, nil
	}
	return nil, fmt.Errorf("budget %s: %w", id, domain.ErrNotFound)
}

func (m *MockBudgetStore) GetOne(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error) {
	if m.GetOneErr != nil {
		return nil, m.GetOneErr
	}
	matches := query.ApplyBudgetQuery(m.owned(ownerID), domain.BudgetQuery{Category: &category, Month: month, Year: year, Limit: 1})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
	Owners []string
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ownerID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	m.Owners = append(m.Owners, ownerID)
}

// Types returns the types of the published events, in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}

var (
	_ domain.TransactionStore = (*MockTransactionStore)(nil)
	_ domain.CategoryStore    = (*MockCategoryStore)(nil)
	_ domain.BudgetStore      = (*MockBudgetStore)(nil)
	_ websocket.EventPublisher = (*MockEventPublisher)(nil)
)
