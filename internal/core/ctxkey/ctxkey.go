// Package ctxkey provides the mutable context-key service that view
// predicates are evaluated against.
package ctxkey

import (
	"reflect"

	"github.com/colonyops/dock/internal/core/when"
	"github.com/colonyops/dock/pkg/events"
)

// KeySet is the membership test a ChangeEvent is checked against.
type KeySet interface {
	Has(key string) bool
}

// ChangeEvent carries the set of keys whose values changed. One event is
// emitted per mutation call, however many keys it touched.
type ChangeEvent struct {
	keys map[string]struct{}
}

// AffectsSome reports whether any changed key is a member of keys.
func (e ChangeEvent) AffectsSome(keys KeySet) bool {
	for k := range e.keys {
		if keys.Has(k) {
			return true
		}
	}
	return false
}

// Keys returns the changed keys in unspecified order.
func (e ChangeEvent) Keys() []string {
	out := make([]string, 0, len(e.keys))
	for k := range e.keys {
		out = append(out, k)
	}
	return out
}

// Service holds the current context snapshot and notifies subscribers of
// changes. It is single-threaded by design: mutations and event dispatch
// run synchronously in the caller's turn.
type Service struct {
	values  map[string]any
	changed *events.Emitter[ChangeEvent]
}

// New creates a service with an empty context.
func New() *Service {
	return &Service{
		values:  make(map[string]any),
		changed: events.NewEmitter[ChangeEvent](),
	}
}

// NewFromMap creates a service seeded with the given keys. No change
// event is emitted for the seed.
func NewFromMap(seed map[string]any) *Service {
	s := New()
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Value returns the current value for a key. Implements when.Context.
func (s *Service) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set assigns a key and emits a change event unless the value is unchanged.
// DeepEqual handles values that arrive from config as maps or slices.
func (s *Service) Set(key string, value any) {
	if cur, ok := s.values[key]; ok && reflect.DeepEqual(cur, value) {
		return
	}
	s.values[key] = value
	s.emit(key)
}

// Delete removes a key and emits a change event if it was present.
func (s *Service) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.emit(key)
}

// Apply assigns a batch of keys and emits a single coalesced change event
// covering every key whose value actually changed.
func (s *Service) Apply(values map[string]any) {
	changed := make(map[string]struct{})
	for k, v := range values {
		if cur, ok := s.values[k]; ok && reflect.DeepEqual(cur, v) {
			continue
		}
		s.values[k] = v
		changed[k] = struct{}{}
	}
	if len(changed) == 0 {
		return
	}
	s.changed.Emit(ChangeEvent{keys: changed})
}

// Matches evaluates a predicate against the current snapshot.
// A nil expression always matches.
func (s *Service) Matches(expr *when.Expr) bool {
	return expr.Eval(s)
}

// OnDidChangeContext subscribes to context changes and returns an
// unsubscribe function.
func (s *Service) OnDidChangeContext(fn func(ChangeEvent)) func() {
	return s.changed.Subscribe(fn)
}

func (s *Service) emit(key string) {
	s.changed.Emit(ChangeEvent{keys: map[string]struct{}{key: {}}})
}
