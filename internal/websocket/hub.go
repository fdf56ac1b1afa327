package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// Connection is one live websocket connection as seen by the hub. Send must not
// block; a connection that cannot take a message reports an error instead.
type Connection interface {
	ID() string
	OwnerID() string
	Send(data []byte) error
	Close() error
}

// Hub fans record events out to every connection of the owner they concern.
// Each connection receives an owner's events in the order they were published.
// A connection that fails a send is dropped and closed; its client reloads its
// state on reconnect.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]Connection // owner ID -> connection ID -> connection

	// publish serializes broadcasts so concurrent publishers cannot interleave
	// one owner's events differently on two connections
	publish sync.Mutex
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[string]Connection)}
}

// Register starts delivering the owner's events to conn
func (h *Hub) Register(conn Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	owned := h.conns[conn.OwnerID()]
	if owned == nil {
		owned = make(map[string]Connection)
		h.conns[conn.OwnerID()] = owned
	}
	owned[conn.ID()] = conn

	log.Debug().Str("owner_id", conn.OwnerID()).Str("client_id", conn.ID()).Int("owner_connections", len(owned)).Msg("WebSocket client registered")
}

// Unregister stops delivery to conn. Unknown connections are ignored.
func (h *Hub) Unregister(conn Connection) {
	if h.remove(conn) {
		log.Debug().Str("owner_id", conn.OwnerID()).Str("client_id", conn.ID()).Msg("WebSocket client unregistered")
	}
}

func (h *Hub) remove(conn Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	owned, ok := h.conns[conn.OwnerID()]
	if !ok {
		return false
	}
	if _, ok := owned[conn.ID()]; !ok {
		return false
	}
	delete(owned, conn.ID())
	if len(owned) == 0 {
		delete(h.conns, conn.OwnerID())
	}
	return true
}

// Broadcast serializes event once and delivers it to each of the owner's connections
func (h *Hub) Broadcast(ownerID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	h.publish.Lock()
	defer h.publish.Unlock()

	targets := h.connections(ownerID)
	var dropped int
	for _, conn := range targets {
		if err := conn.Send(data); err != nil {
			dropped++
			h.remove(conn)
			conn.Close()
			log.Warn().Err(err).Str("owner_id", ownerID).Str("client_id", conn.ID()).Msg("Dropped WebSocket client that could not keep up")
		}
	}

	if len(targets) > 0 {
		log.Debug().Str("owner_id", ownerID).Str("event_type", event.Type).Int("delivered", len(targets)-dropped).Int("dropped", dropped).Msg("Broadcast event")
	}
}

// connections snapshots the owner's connections so sends happen without the lock
func (h *Hub) connections(ownerID string) []Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	owned := h.conns[ownerID]
	result := make([]Connection, 0, len(owned))
	for _, conn := range owned {
		result = append(result, conn)
	}
	return result
}

// ClientCount returns the number of connections an owner has open
func (h *Hub) ClientCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[ownerID])
}

// TotalClientCount returns the number of open connections across all owners
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, owned := range h.conns {
		total += len(owned)
	}
	return total
}
