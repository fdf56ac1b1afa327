package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/repository/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ownerID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type pushed struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pushedState struct {
	Status  string            `json:"status"`
	Records []json.RawMessage `json:"records"`
	Message string            `json:"message"`
}

func decodePushed(t *testing.T, client *mockClient) []pushed {
	t.Helper()
	var out []pushed
	for _, raw := range client.GetMessages() {
		var p pushed
		require.NoError(t, json.Unmarshal(raw, &p))
		out = append(out, p)
	}
	return out
}

// lastState returns the latest pushed state of the given type, if any
func lastState(t *testing.T, client *mockClient, eventType string) (pushedState, bool) {
	t.Helper()
	var (
		state pushedState
		found bool
	)
	for _, p := range decodePushed(t, client) {
		if p.Type == eventType {
			require.NoError(t, json.Unmarshal(p.Payload, &state))
			found = true
		}
	}
	return state, found
}

func waitForPushedState(t *testing.T, client *mockClient, eventType, status string, records int) {
	t.Helper()
	require.Eventually(t, func() bool {
		state, ok := lastState(t, client, eventType)
		return ok && state.Status == status && len(state.Records) == records
	}, 2*time.Second, 5*time.Millisecond)
}

func lastFailure(t *testing.T, client *mockClient) (CommandError, bool) {
	t.Helper()
	var (
		failure CommandError
		found   bool
	)
	for _, p := range decodePushed(t, client) {
		if p.Type == EventTypeCommandFailed {
			require.NoError(t, json.Unmarshal(p.Payload, &failure))
			found = true
		}
	}
	return failure, found
}

func newTestSession(t *testing.T) (*Session, *mockClient, *recordingPublisher) {
	t.Helper()
	backend := memory.NewStore(time.UTC)
	client := newMockClient("client-1", "owner-1")
	publisher := &recordingPublisher{}
	session := NewSession("owner-1", client, Stores{
		Transactions: backend.Transactions(),
		Categories:   backend.Categories(),
		Budgets:      backend.Budgets(),
	}, time.UTC, publisher, zerolog.Nop())
	t.Cleanup(session.Close)
	return session, client, publisher
}

func TestSession_StartPushesInitialStates(t *testing.T) {
	session, client, _ := newTestSession(t)
	session.Start()

	waitForPushedState(t, client, "transaction.state", "success", 0)
	waitForPushedState(t, client, "category.state", "success", 0)
	waitForPushedState(t, client, "budget.state", "success", 0)
}

func TestSession_AddTransaction(t *testing.T) {
	session, client, publisher := newTestSession(t)
	session.Start()
	waitForPushedState(t, client, "transaction.state", "success", 0)

	session.HandleMessage(context.Background(), []byte(`{"action":"transactions.add","data":{"amount":"50","kind":"expense","category":"Food"}}`))

	waitForPushedState(t, client, "transaction.state", "success", 1)
	assert.Contains(t, publisher.types(), "transaction.created")
	_, failed := lastFailure(t, client)
	assert.False(t, failed)
}

func TestSession_BudgetSpentFollowsTransactions(t *testing.T) {
	session, client, _ := newTestSession(t)
	session.Start()
	waitForPushedState(t, client, "budget.state", "success", 0)

	ctx := context.Background()
	session.HandleMessage(ctx, []byte(`{"action":"budgets.add","data":{"category":"Food","amount":"200"}}`))
	waitForPushedState(t, client, "budget.state", "success", 1)

	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"50","kind":"expense","category":"Food"}}`))
	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"30","kind":"expense","category":"Food"}}`))

	require.Eventually(t, func() bool {
		state, ok := lastState(t, client, "budget.state")
		if !ok || state.Status != "success" || len(state.Records) != 1 {
			return false
		}
		var budget struct {
			SpentAmount string `json:"spentAmount"`
		}
		require.NoError(t, json.Unmarshal(state.Records[0], &budget))
		return budget.SpentAmount == "80"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSession_UpdateWithoutIDFails(t *testing.T) {
	session, client, publisher := newTestSession(t)
	session.Start()
	waitForPushedState(t, client, "transaction.state", "success", 0)

	session.HandleMessage(context.Background(), []byte(`{"action":"transactions.update","data":{"amount":"50","kind":"expense"}}`))

	failure, ok := lastFailure(t, client)
	require.True(t, ok)
	assert.Equal(t, ActionTransactionsUpdate, failure.Action)
	assert.Contains(t, failure.Message, "identifier is empty")
	assert.Empty(t, publisher.types())

	state, _ := lastState(t, client, "transaction.state")
	assert.Equal(t, "success", state.Status)
}

func TestSession_DeleteMissingSucceeds(t *testing.T) {
	session, client, publisher := newTestSession(t)
	session.Start()

	session.HandleMessage(context.Background(), []byte(`{"action":"categories.delete","data":{"id":"missing"}}`))

	_, failed := lastFailure(t, client)
	assert.False(t, failed)
	assert.Equal(t, []string{"category.deleted"}, publisher.types())
}

func TestSession_LoadFilteredTransactions(t *testing.T) {
	session, client, _ := newTestSession(t)
	session.Start()
	ctx := context.Background()

	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"10","kind":"expense","category":"Food","date":"2024-02-10T12:00:00Z"}}`))
	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"20","kind":"income","category":"Salary","date":"2024-02-20T12:00:00Z"}}`))
	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"30","kind":"expense","category":"Food","date":"2024-03-01T12:00:00Z"}}`))
	waitForPushedState(t, client, "transaction.state", "success", 3)

	session.HandleMessage(ctx, []byte(`{"action":"transactions.load","data":{"kind":"expense","month":2,"year":2024}}`))
	waitForPushedState(t, client, "transaction.state", "success", 1)
}

func TestSession_InvalidCommands(t *testing.T) {
	tests := []struct {
		name    string
		message string
		action  string
	}{
		{"malformed json", `{"action":`, ""},
		{"unknown action", `{"action":"accounts.load"}`, "accounts.load"},
		{"bad kind", `{"action":"transactions.load","data":{"kind":"transfer"}}`, ActionTransactionsLoad},
		{"bad month", `{"action":"transactions.load","data":{"month":13,"year":2024}}`, ActionTransactionsLoad},
		{"malformed data", `{"action":"budgets.add","data":"oops"}`, ActionBudgetsAdd},
		{"zero amount", `{"action":"transactions.add","data":{"amount":"0","kind":"expense"}}`, ActionTransactionsAdd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, client, _ := newTestSession(t)

			session.HandleMessage(context.Background(), []byte(tt.message))

			failure, ok := lastFailure(t, client)
			require.True(t, ok)
			assert.Equal(t, tt.action, failure.Action)
			assert.Contains(t, failure.Message, "invalid argument")
		})
	}
}

func TestSession_GetTransaction(t *testing.T) {
	session, client, _ := newTestSession(t)
	session.Start()
	ctx := context.Background()

	session.HandleMessage(ctx, []byte(`{"action":"transactions.add","data":{"amount":"10","kind":"expense","category":"Food"}}`))
	waitForPushedState(t, client, "transaction.state", "success", 1)

	state, _ := lastState(t, client, "transaction.state")
	var record struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(state.Records[0], &record))

	session.HandleMessage(ctx, []byte(`{"action":"transactions.get","data":{"id":"`+record.ID+`"}}`))

	var selected bool
	for _, p := range decodePushed(t, client) {
		if p.Type == "transaction.selected" {
			selected = true
		}
	}
	assert.True(t, selected)

	session.HandleMessage(ctx, []byte(`{"action":"transactions.get","data":{"id":"missing"}}`))
	failure, ok := lastFailure(t, client)
	require.True(t, ok)
	assert.Contains(t, failure.Message, "not found")
}
