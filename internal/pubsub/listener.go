package pubsub

import "context"

// Listener is a broker subscription that is read one event at a time.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to broker. The subscription ends when ctx is
// cancelled or the broker closes.
func NewListener[T any](ctx context.Context, broker Subscriber[T]) *Listener[T] {
	return &Listener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next blocks until an event arrives. It returns false once the context is
// cancelled or the subscription channel is closed.
func (l *Listener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}

// Drain returns the events already buffered without blocking.
func (l *Listener[T]) Drain() []Event[T] {
	var events []Event[T]
	for {
		select {
		case event, ok := <-l.ch:
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}
