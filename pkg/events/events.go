// Package events provides a minimal synchronous publish/subscribe channel.
package events

import "sync"

// Handler consumes values emitted on an Emitter.
type Handler[T any] func(T)

// Emitter dispatches values to subscribers inline, in subscription order.
// Emit returns once every handler has run; handlers must not block.
type Emitter[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Subscribe registers a handler and returns a function that removes it.
// The returned function may be called more than once.
func (e *Emitter[T]) Subscribe(fn Handler[T]) (unsubscribe func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit dispatches v to every subscriber present when Emit was called.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	subs := make([]subscription[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
