package domain

import (
	"context"
	"fmt"
	"sync"
)

// Subscription is a live sequence of full snapshots produced by a record store.
//
// The producer side calls Publish for each snapshot and Finish exactly once when it
// stops. The consumer side reads Snapshots until the channel closes, then checks Err.
// Only the most recent unread snapshot is kept: a slow consumer skips stale ones.
type Subscription[T any] struct {
	snapshots  chan []T
	done       chan struct{}
	stop       context.CancelFunc
	finishOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewSubscription creates a subscription bound to ctx. The returned context is
// cancelled when the subscription is closed and must drive the producer.
func NewSubscription[T any](ctx context.Context) (*Subscription[T], context.Context) {
	producerCtx, stop := context.WithCancel(ctx)
	return &Subscription[T]{
		snapshots: make(chan []T, 1),
		done:      make(chan struct{}),
		stop:      stop,
	}, producerCtx
}

// Snapshots returns the channel of snapshots. It is closed when the subscription ends.
func (s *Subscription[T]) Snapshots() <-chan []T {
	return s.snapshots
}

// Done is closed once the producer has finished and released its resources
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Publish hands a snapshot to the consumer, replacing any snapshot not yet read.
// It must only be called by the producer, before Finish.
func (s *Subscription[T]) Publish(snapshot []T) {
	select {
	case s.snapshots <- snapshot:
		return
	default:
	}
	// Buffer holds a stale snapshot; drop it. Only the producer sends, so the
	// second send always finds room.
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- snapshot
}

// Finish terminates the subscription with err (nil for a normal end)
func (s *Subscription[T]) Finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.stop()
		close(s.snapshots)
		close(s.done)
	})
}

// Err returns the error that terminated the subscription, if any
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the subscription and waits for the producer to release its listener.
// Safe to call multiple times.
func (s *Subscription[T]) Close() {
	s.stop()
	<-s.done
}

// First takes the first snapshot of sub and closes it
func First[T any](ctx context.Context, sub *Subscription[T]) ([]T, error) {
	defer sub.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case snapshot, ok := <-sub.Snapshots():
		if !ok {
			if err := sub.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: subscription ended before first snapshot", ErrTransport)
		}
		return snapshot, nil
	}
}

// Once wraps a one-shot fetch as a subscription that emits a single snapshot
func Once[T any](ctx context.Context, fetch func(ctx context.Context) ([]T, error)) *Subscription[T] {
	sub, producerCtx := NewSubscription[T](ctx)
	go func() {
		snapshot, err := fetch(producerCtx)
		if err != nil {
			if producerCtx.Err() != nil {
				sub.Finish(nil)
				return
			}
			sub.Finish(err)
			return
		}
		sub.Publish(snapshot)
		sub.Finish(nil)
	}()
	return sub
}
