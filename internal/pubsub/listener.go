package pubsub

import (
	"context"
)

// ContinuousListener wraps a broker subscription behind a blocking
// receive, for consumers that drain events from their own loop.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener creates a new listener that subscribes to the broker.
// The subscription is automatically cleaned up when the context is cancelled.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next blocks until the next event arrives. Returns false when the
// context is cancelled or the broker is closed.
func (l *ContinuousListener[T]) Next() (Event[T], bool) {
	var zero Event[T]
	select {
	case <-l.ctx.Done():
		return zero, false
	case event, ok := <-l.ch:
		if !ok {
			return zero, false
		}
		return event, true
	}
}

// Events exposes the underlying subscription channel for select loops.
func (l *ContinuousListener[T]) Events() <-chan Event[T] {
	return l.ch
}
