package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	reconnectDelay    = time.Second
	maxReconnectDelay = 30 * time.Second
)

// ErrNotifierClosed terminates the subscriptions of a closed notifier
var ErrNotifierClosed = errors.New("notifier closed")

// ErrNotListening is returned by Subscribe while the LISTEN connection is down
var ErrNotListening = errors.New("change notifications unavailable")

type topic struct {
	ownerID string
	table   string
}

// listener is one live subscription's wake-up channel
type listener struct {
	changed chan struct{}
	failed  chan error
}

// Notifier holds the single LISTEN connection shared by every store subscription.
// The connection is taken out of the pool, so live subscriptions never hold pool
// connections; snapshots are re-queried through the pool.
type Notifier struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	mu        sync.Mutex
	listeners map[topic]map[*listener]struct{}
	listening bool
	closed    bool

	stop context.CancelFunc
	done chan struct{}
}

// NewNotifier creates a notifier. Start must be called before subscribing.
func NewNotifier(pool *pgxpool.Pool, logger zerolog.Logger) *Notifier {
	return &Notifier{
		pool:      pool,
		logger:    logger.With().Str("component", "change_notifier").Logger(),
		listeners: make(map[topic]map[*listener]struct{}),
	}
}

// Start opens the LISTEN connection and dispatches notifications until Close.
// A lost connection fails the live subscriptions and is re-established in the
// background.
func (n *Notifier) Start(ctx context.Context) error {
	conn, err := n.connect(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(context.Background())
	n.stop = stop
	n.done = make(chan struct{})
	go n.run(runCtx, conn)
	return nil
}

// Close stops listening and ends every live subscription with a transport error
func (n *Notifier) Close() {
	if n.stop != nil {
		n.stop()
		<-n.done
	}

	n.mu.Lock()
	n.closed = true
	n.listening = false
	n.mu.Unlock()
	n.failAll(fmt.Errorf("%w: %w", domain.ErrTransport, ErrNotifierClosed))
}

func (n *Notifier) connect(ctx context.Context) (*pgx.Conn, error) {
	pooled, err := n.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire listener connection: %w", domain.ErrTransport, err)
	}
	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangeChannel}.Sanitize()); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("%w: listen: %w", domain.ErrTransport, err)
	}

	n.mu.Lock()
	n.listening = !n.closed
	n.mu.Unlock()
	n.logger.Info().Str("channel", ChangeChannel).Msg("Listening for record changes")
	return conn, nil
}

func (n *Notifier) run(ctx context.Context, conn *pgx.Conn) {
	defer close(n.done)

	for {
		err := n.receive(ctx, conn)
		conn.Close(context.Background())
		if ctx.Err() != nil {
			return
		}

		n.mu.Lock()
		n.listening = false
		n.mu.Unlock()
		n.logger.Error().Err(err).Msg("Change listener lost its connection")
		n.failAll(fmt.Errorf("%w: change listener: %w", domain.ErrTransport, err))

		if conn = n.reconnect(ctx); conn == nil {
			return
		}
	}
}

// receive dispatches notifications until the connection fails or ctx is done
func (n *Notifier) receive(ctx context.Context, conn *pgx.Conn) error {
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		n.dispatch(notification.Payload)
	}
}

// reconnect retries with exponential delay; nil means ctx ended first
func (n *Notifier) reconnect(ctx context.Context) *pgx.Conn {
	delay := reconnectDelay
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		conn, err := n.connect(ctx)
		if err == nil {
			return conn
		}
		n.logger.Warn().Err(err).Dur("retry_in", delay).Msg("Change listener reconnect failed")
		delay = min(delay*2, maxReconnectDelay)
	}
}

func (n *Notifier) register(ownerID, table string) (*listener, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, ErrNotifierClosed)
	}
	if !n.listening {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, ErrNotListening)
	}

	l := &listener{
		changed: make(chan struct{}, 1),
		failed:  make(chan error, 1),
	}
	key := topic{ownerID: ownerID, table: table}
	if n.listeners[key] == nil {
		n.listeners[key] = make(map[*listener]struct{})
	}
	n.listeners[key][l] = struct{}{}
	return l, nil
}

func (n *Notifier) unregister(ownerID, table string, l *listener) {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := topic{ownerID: ownerID, table: table}
	if set, ok := n.listeners[key]; ok {
		delete(set, l)
		if len(set) == 0 {
			delete(n.listeners, key)
		}
	}
}

// dispatch wakes the listeners of the payload's owner and table. Pending
// wake-ups coalesce.
func (n *Notifier) dispatch(payload string) {
	ownerID, table, ok := parseNotification(payload)
	if !ok {
		n.logger.Warn().Str("payload", payload).Msg("Ignoring malformed change notification")
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for l := range n.listeners[topic{ownerID: ownerID, table: table}] {
		select {
		case l.changed <- struct{}{}:
		default:
		}
	}
}

func (n *Notifier) failAll(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, set := range n.listeners {
		for l := range set {
			select {
			case l.failed <- err:
			default:
			}
		}
	}
}

func (n *Notifier) listenerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, set := range n.listeners {
		count += len(set)
	}
	return count
}
