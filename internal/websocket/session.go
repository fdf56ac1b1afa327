package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/dafibh/moneymanager/moneymanager-backend/internal/viewstate"
	"github.com/rs/zerolog"
)

// Client command actions
const (
	ActionTransactionsLoad   = "transactions.load"
	ActionTransactionsRecent = "transactions.recent"
	ActionTransactionsGet    = "transactions.get"
	ActionTransactionsAdd    = "transactions.add"
	ActionTransactionsUpdate = "transactions.update"
	ActionTransactionsDelete = "transactions.delete"

	ActionCategoriesLoad     = "categories.load"
	ActionCategoriesAdd      = "categories.add"
	ActionCategoriesUpdate   = "categories.update"
	ActionCategoriesDelete   = "categories.delete"
	ActionCategoriesDefaults = "categories.defaults"

	ActionBudgetsLoad   = "budgets.load"
	ActionBudgetsAdd    = "budgets.add"
	ActionBudgetsUpdate = "budgets.update"
	ActionBudgetsDelete = "budgets.delete"
)

// EventTypeCommandFailed is sent to the issuing client when a command fails
const EventTypeCommandFailed = "command.failed"

// ErrUnknownAction is returned for commands with an unrecognized action
var ErrUnknownAction = fmt.Errorf("%w: unknown action", domain.ErrInvalidArgument)

// Command is a message sent by a client
// Format: { action, data }
type Command struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// CommandError is the payload of a command.failed event
type CommandError struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Stores groups the record stores a session reads and writes
type Stores struct {
	Transactions domain.TransactionStore
	Categories   domain.CategoryStore
	Budgets      domain.BudgetStore
}

// Sender delivers serialized events to one connection
type Sender interface {
	Send(data []byte) error
}

type listFilter struct {
	Kind  string `json:"kind"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Limit int    `json:"limit"`
}

type idData struct {
	ID string `json:"id"`
}

// Session is the server side of one connection: it owns a controller per list
// and pushes every state transition to the client.
type Session struct {
	ownerID   string
	client    Sender
	publisher EventPublisher
	logger    zerolog.Logger

	transactions *viewstate.TransactionController
	categories   *viewstate.CategoryController
	budgets      *viewstate.BudgetController
}

// NewSession creates a session for ownerID. Budgets follow the current month in loc.
// Start must be called to begin loading.
func NewSession(ownerID string, client Sender, stores Stores, loc *time.Location, publisher EventPublisher, logger zerolog.Logger) *Session {
	if publisher == nil {
		publisher = &NoOpPublisher{}
	}
	logger = logger.With().Str("owner_id", ownerID).Logger()
	return &Session{
		ownerID:      ownerID,
		client:       client,
		publisher:    publisher,
		logger:       logger,
		transactions: viewstate.NewTransactionController(stores.Transactions, ownerID, logger),
		categories:   viewstate.NewCategoryController(stores.Categories, ownerID, logger),
		budgets:      viewstate.NewBudgetController(stores.Budgets, stores.Transactions, ownerID, loc, logger),
	}
}

// Start subscribes the client to state pushes and issues the initial loads
func (s *Session) Start() {
	s.transactions.Observe(func(state viewstate.State[domain.Transaction]) {
		s.push(StateChanged(EntityTypeTransaction, state))
	})
	s.categories.Observe(func(state viewstate.State[domain.Category]) {
		s.push(StateChanged(EntityTypeCategory, state))
	})
	s.budgets.Observe(func(state viewstate.State[domain.Budget]) {
		s.push(StateChanged(EntityTypeBudget, state))
	})

	if err := s.transactions.LoadAll(); err != nil {
		s.logger.Error().Err(err).Msg("Initial transaction load failed")
	}
	if err := s.categories.LoadAll(); err != nil {
		s.logger.Error().Err(err).Msg("Initial category load failed")
	}
	s.budgets.LoadCurrentMonth()
}

// Close releases every controller and its subscription
func (s *Session) Close() {
	s.transactions.Close()
	s.categories.Close()
	s.budgets.Close()
	s.logger.Debug().Msg("Session closed")
}

// HandleMessage implements MessageHandler
func (s *Session) HandleMessage(ctx context.Context, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.reply("", fmt.Errorf("%w: malformed command", domain.ErrInvalidArgument))
		return
	}
	if err := s.dispatch(ctx, cmd); err != nil {
		s.reply(cmd.Action, err)
	}
}

func (s *Session) dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Action {
	case ActionTransactionsLoad:
		var f listFilter
		if err := decode(cmd.Data, &f); err != nil {
			return err
		}
		q, err := f.transactionQuery()
		if err != nil {
			return err
		}
		return s.transactions.LoadQuery(q)

	case ActionTransactionsRecent:
		var f listFilter
		if err := decode(cmd.Data, &f); err != nil {
			return err
		}
		return s.transactions.LoadRecent(f.Limit)

	case ActionTransactionsGet:
		var d idData
		if err := decode(cmd.Data, &d); err != nil {
			return err
		}
		t, err := s.transactions.Get(ctx, d.ID)
		if err != nil {
			return err
		}
		s.push(TransactionSelected(t))
		return nil

	case ActionTransactionsAdd:
		var t domain.Transaction
		if err := decode(cmd.Data, &t); err != nil {
			return err
		}
		created, err := s.transactions.Add(ctx, t)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, TransactionCreated(created))
		s.budgets.LoadCurrentMonth()
		return nil

	case ActionTransactionsUpdate:
		var t domain.Transaction
		if err := decode(cmd.Data, &t); err != nil {
			return err
		}
		updated, err := s.transactions.Update(ctx, t)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, TransactionUpdated(updated))
		s.budgets.LoadCurrentMonth()
		return nil

	case ActionTransactionsDelete:
		var d idData
		if err := decode(cmd.Data, &d); err != nil {
			return err
		}
		if err := s.transactions.Delete(ctx, d.ID); err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, TransactionDeleted(DeletedPayload{ID: d.ID}))
		s.budgets.LoadCurrentMonth()
		return nil

	case ActionCategoriesLoad:
		var f listFilter
		if err := decode(cmd.Data, &f); err != nil {
			return err
		}
		if f.Kind == "" {
			return s.categories.LoadAll()
		}
		kind, err := domain.ParseKind(f.Kind)
		if err != nil {
			return err
		}
		return s.categories.LoadByKind(kind)

	case ActionCategoriesAdd:
		var c domain.Category
		if err := decode(cmd.Data, &c); err != nil {
			return err
		}
		created, err := s.categories.Add(ctx, c)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, CategoryCreated(created))
		return nil

	case ActionCategoriesUpdate:
		var c domain.Category
		if err := decode(cmd.Data, &c); err != nil {
			return err
		}
		updated, err := s.categories.Update(ctx, c)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, CategoryUpdated(updated))
		return nil

	case ActionCategoriesDelete:
		var d idData
		if err := decode(cmd.Data, &d); err != nil {
			return err
		}
		if err := s.categories.Delete(ctx, d.ID); err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, CategoryDeleted(DeletedPayload{ID: d.ID}))
		return nil

	case ActionCategoriesDefaults:
		created, err := s.categories.CreateDefaults(ctx)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, CategoriesSeeded(created))
		return nil

	case ActionBudgetsLoad:
		s.budgets.LoadCurrentMonth()
		return nil

	case ActionBudgetsAdd:
		var b domain.Budget
		if err := decode(cmd.Data, &b); err != nil {
			return err
		}
		created, err := s.budgets.Add(ctx, b)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, BudgetCreated(created))
		return nil

	case ActionBudgetsUpdate:
		var b domain.Budget
		if err := decode(cmd.Data, &b); err != nil {
			return err
		}
		updated, err := s.budgets.Update(ctx, b)
		if err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, BudgetUpdated(updated))
		return nil

	case ActionBudgetsDelete:
		var d idData
		if err := decode(cmd.Data, &d); err != nil {
			return err
		}
		if err := s.budgets.Delete(ctx, d.ID); err != nil {
			return err
		}
		s.publisher.Publish(s.ownerID, BudgetDeleted(DeletedPayload{ID: d.ID}))
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
}

func (f listFilter) transactionQuery() (domain.TransactionQuery, error) {
	q := domain.TransactionQuery{Month: f.Month, Year: f.Year, Limit: f.Limit}
	if f.Kind != "" {
		kind, err := domain.ParseKind(f.Kind)
		if err != nil {
			return domain.TransactionQuery{}, err
		}
		q.Kind = &kind
	}
	return q, nil
}

// decode unmarshals optional command data into v
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed data: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Session) push(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}
	if err := s.client.Send(data); err != nil && !errors.Is(err, ErrClientClosed) {
		s.logger.Warn().Err(err).Str("event_type", event.Type).Msg("Failed to push event")
	}
}

func (s *Session) reply(action string, err error) {
	s.push(Event{
		Type:      EventTypeCommandFailed,
		Payload:   CommandError{Action: action, Message: err.Error()},
		Timestamp: time.Now().UTC(),
	})
}
