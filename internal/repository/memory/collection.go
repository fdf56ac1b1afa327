// Package memory implements the record stores in process memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrStoreClosed terminates the subscriptions of a closed store
var ErrStoreClosed = errors.New("store closed")

type subscriber struct {
	ownerID string
	notify  chan struct{}
	fail    chan error
}

// collection is an ordered, owner-scoped set of records of one kind
type collection[T domain.Record[T]] struct {
	kind domain.EntityKind

	mu     sync.RWMutex
	order  []string
	items  map[string]T
	subs   map[*subscriber]struct{}
	closed bool
}

func newCollection[T domain.Record[T]](kind domain.EntityKind) *collection[T] {
	return &collection[T]{
		kind:  kind,
		items: make(map[string]T),
		subs:  make(map[*subscriber]struct{}),
	}
}

func (c *collection[T]) add(ownerID string, rec T) (T, error) {
	var zero T
	if ownerID == "" {
		return zero, domain.ErrUnauthenticated
	}

	rec = rec.WithIdentity(uuid.New().String(), ownerID)

	c.mu.Lock()
	c.items[rec.RecordID()] = rec
	c.order = append(c.order, rec.RecordID())
	c.mu.Unlock()

	c.notify(ownerID)
	return rec, nil
}

// update replaces the whole record at its identifier. A missing identifier is
// created, matching document-store set semantics.
func (c *collection[T]) update(ownerID string, rec T) (T, error) {
	var zero T
	if ownerID == "" {
		return zero, domain.ErrUnauthenticated
	}
	id := rec.RecordID()
	if id == "" {
		return zero, domain.ErrEmptyID
	}

	rec = rec.WithIdentity(id, ownerID)

	c.mu.Lock()
	existing, ok := c.items[id]
	if ok && existing.RecordOwner() != ownerID {
		c.mu.Unlock()
		return zero, fmt.Errorf("%s %s: %w", c.kind, id, domain.ErrNotFound)
	}
	if !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = rec
	c.mu.Unlock()

	c.notify(ownerID)
	return rec, nil
}

// remove hard-deletes a record. Unknown identifiers are not an error.
func (c *collection[T]) remove(ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}

	c.mu.Lock()
	existing, ok := c.items[id]
	if !ok || existing.RecordOwner() != ownerID {
		c.mu.Unlock()
		return nil
	}
	delete(c.items, id)
	for i, candidate := range c.order {
		if candidate == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notify(ownerID)
	return nil
}

func (c *collection[T]) get(ownerID, id string) (T, error) {
	var zero T
	if ownerID == "" {
		return zero, domain.ErrUnauthenticated
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.items[id]
	if !ok || rec.RecordOwner() != ownerID {
		return zero, fmt.Errorf("%s %s: %w", c.kind, id, domain.ErrNotFound)
	}
	return rec, nil
}

// snapshot returns the owner's records in insertion order
func (c *collection[T]) snapshot(ownerID string) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if rec := c.items[id]; rec.RecordOwner() == ownerID {
			result = append(result, rec)
		}
	}
	return result
}

// list returns project(snapshot) once
func (c *collection[T]) list(ownerID string, project func([]T) []T) ([]T, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, ErrStoreClosed)
	}
	return project(c.snapshot(ownerID)), nil
}

// subscribe streams project(snapshot) to the caller on subscribe and after each
// change to the owner's records
func (c *collection[T]) subscribe(ctx context.Context, ownerID string, project func([]T) []T) (*domain.Subscription[T], error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	s := &subscriber{
		ownerID: ownerID,
		notify:  make(chan struct{}, 1),
		fail:    make(chan error, 1),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, ErrStoreClosed)
	}
	c.subs[s] = struct{}{}
	c.mu.Unlock()

	sub, producerCtx := domain.NewSubscription[T](ctx)

	go func() {
		defer c.unsubscribe(s)

		sub.Publish(project(c.snapshot(ownerID)))
		for {
			select {
			case <-producerCtx.Done():
				sub.Finish(nil)
				return
			case err := <-s.fail:
				sub.Finish(err)
				return
			case <-s.notify:
				sub.Publish(project(c.snapshot(ownerID)))
			}
		}
	}()

	log.Debug().Str("entity", string(c.kind)).Str("owner_id", ownerID).Msg("Memory subscription started")
	return sub, nil
}

func (c *collection[T]) unsubscribe(s *subscriber) {
	c.mu.Lock()
	delete(c.subs, s)
	c.mu.Unlock()
}

// notify wakes the owner's subscribers. Pending wake-ups coalesce.
func (c *collection[T]) notify(ownerID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for s := range c.subs {
		if s.ownerID != ownerID {
			continue
		}
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// close terminates every live subscription with a transport error
func (c *collection[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	err := fmt.Errorf("%w: %w", domain.ErrTransport, ErrStoreClosed)
	for s := range c.subs {
		select {
		case s.fail <- err:
		default:
		}
	}
}

func (c *collection[T]) subscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
