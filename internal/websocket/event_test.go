package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":       "tx-1",
		"category": "Food",
		"amount":   "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	evt := Event{
		Type:      "budget.updated",
		Entity:    EntityTypeBudget,
		Payload:   map[string]interface{}{"id": "b-1"},
		Timestamp: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "budget.updated", decoded["type"])
	assert.Equal(t, "budget", decoded["entity"])
	assert.Equal(t, "2025-01-15T10:30:00Z", decoded["timestamp"])
	assert.Equal(t, map[string]interface{}{"id": "b-1"}, decoded["payload"])
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
		entity   EntityType
	}{
		{"transaction created", TransactionCreated(nil), "transaction.created", EntityTypeTransaction},
		{"transaction updated", TransactionUpdated(nil), "transaction.updated", EntityTypeTransaction},
		{"transaction deleted", TransactionDeleted(nil), "transaction.deleted", EntityTypeTransaction},
		{"transaction selected", TransactionSelected(nil), "transaction.selected", EntityTypeTransaction},
		{"category created", CategoryCreated(nil), "category.created", EntityTypeCategory},
		{"category updated", CategoryUpdated(nil), "category.updated", EntityTypeCategory},
		{"category deleted", CategoryDeleted(nil), "category.deleted", EntityTypeCategory},
		{"categories seeded", CategoriesSeeded(nil), "category.seeded", EntityTypeCategory},
		{"budget created", BudgetCreated(nil), "budget.created", EntityTypeBudget},
		{"budget updated", BudgetUpdated(nil), "budget.updated", EntityTypeBudget},
		{"budget deleted", BudgetDeleted(nil), "budget.deleted", EntityTypeBudget},
		{"state", StateChanged(EntityTypeBudget, nil), "budget.state", EntityTypeBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Type)
			assert.Equal(t, tt.entity, tt.event.Entity)
		})
	}
}
