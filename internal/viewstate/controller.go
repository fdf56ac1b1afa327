package viewstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/rs/zerolog"
)

// Source opens the subscription a controller displays
type Source[T any] func(ctx context.Context) (*domain.Subscription[T], error)

// Observer receives every state transition, in order, on the controller's loop
type Observer[T any] func(State[T])

// ErrClosed is returned by commands issued to a closed controller
var ErrClosed = errors.New("controller closed")

// Controller owns the state of one record list.
//
// All transitions run on a single loop goroutine. Loads open a subscription and
// publish each snapshot as Success. Mutating commands are not serialized: two
// overlapping commands each trigger a reload and the later one wins.
type Controller[T any] struct {
	name   string
	logger zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	actions chan func()
	wg      sync.WaitGroup
	state   atomic.Pointer[State[T]]

	// loop-owned
	observers  []Observer[T]
	source     Source[T]
	current    *domain.Subscription[T]
	generation uint64
}

// NewController starts a controller in the Loading state
func NewController[T any](name string, logger zerolog.Logger) *Controller[T] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller[T]{
		name:    name,
		logger:  logger.With().Str("component", "viewstate").Str("list", name).Logger(),
		ctx:     ctx,
		cancel:  cancel,
		actions: make(chan func()),
	}
	initial := Loading[T]()
	c.state.Store(&initial)

	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *Controller[T]) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			if c.current != nil {
				c.current.Close()
				c.current = nil
			}
			return
		case fn := <-c.actions:
			fn()
		}
	}
}

// post runs fn on the loop. It reports false when the controller is closed.
func (c *Controller[T]) post(fn func()) bool {
	select {
	case c.actions <- fn:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// spawn runs fn in a goroutine that Close waits for
func (c *Controller[T]) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Controller[T]) set(s State[T]) {
	c.state.Store(&s)
	for _, observe := range c.observers {
		observe(s)
	}
}

// State returns the latest published state. Safe from any goroutine.
func (c *Controller[T]) State() State[T] {
	return *c.state.Load()
}

// Observe registers fn and immediately delivers the current state to it
func (c *Controller[T]) Observe(fn Observer[T]) {
	c.post(func() {
		c.observers = append(c.observers, fn)
		fn(c.State())
	})
}

// Load switches the controller to source: Loading now, Success on each snapshot,
// Error if the subscription fails. The previous subscription is released.
func (c *Controller[T]) Load(source Source[T]) {
	c.post(func() { c.load(source) })
}

// Reload re-opens the current source, if any
func (c *Controller[T]) Reload() {
	c.post(func() {
		if c.source != nil {
			c.load(c.source)
		}
	})
}

// Fail publishes an Error state for err
func (c *Controller[T]) Fail(err error) {
	c.post(func() { c.fail(err) })
}

func (c *Controller[T]) load(source Source[T]) {
	c.generation++
	gen := c.generation
	c.source = source

	if old := c.current; old != nil {
		c.current = nil
		c.spawn(old.Close)
	}
	c.set(Loading[T]())

	c.spawn(func() {
		sub, err := source(c.ctx)
		delivered := c.post(func() {
			if gen != c.generation {
				if sub != nil {
					c.spawn(sub.Close)
				}
				return
			}
			if err != nil {
				c.fail(err)
				return
			}
			c.current = sub
			c.spawn(func() { c.pump(gen, sub) })
		})
		if !delivered && sub != nil {
			sub.Close()
		}
	})
}

// pump forwards snapshots of sub to the loop until it ends
func (c *Controller[T]) pump(gen uint64, sub *domain.Subscription[T]) {
	for snapshot := range sub.Snapshots() {
		c.post(func() {
			if gen == c.generation {
				c.set(Success(snapshot))
			}
		})
	}
	if err := sub.Err(); err != nil {
		c.post(func() {
			if gen == c.generation {
				c.fail(err)
			}
		})
	}
}

func (c *Controller[T]) fail(err error) {
	c.logger.Warn().Err(err).Msg("List entered error state")
	c.set(Failure[T](err.Error()))
}

// Do performs a mutating command. Invalid arguments are returned without touching
// the state; any other failure publishes Error. Success reloads the current source.
func (c *Controller[T]) Do(ctx context.Context, command func(ctx context.Context) error) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	if err := command(ctx); err != nil {
		if !errors.Is(err, domain.ErrInvalidArgument) {
			c.Fail(err)
		}
		return err
	}
	c.Reload()
	return nil
}

// Close cancels the controller's scope, releases its subscription and waits for
// all of its tasks to finish
func (c *Controller[T]) Close() {
	c.cancel()
	c.wg.Wait()
}
