package views

import (
	"fmt"

	"github.com/colonyops/dock/pkg/events"
)

// Registry holds every contributed view descriptor and notifies observers
// of registration batches. It is the owner of descriptors: deregistration
// removes them, user state does not live here.
type Registry struct {
	descriptors  []Descriptor
	index        map[string]int
	registered   *events.Emitter[[]Descriptor]
	deregistered *events.Emitter[[]Descriptor]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index:        make(map[string]int),
		registered:   events.NewEmitter[[]Descriptor](),
		deregistered: events.NewEmitter[[]Descriptor](),
	}
}

// Register validates and adds a batch of descriptors, then emits a single
// registered event for the whole batch. Duplicate ids are rejected and the
// batch is not applied.
func (r *Registry) Register(descs ...Descriptor) error {
	if len(descs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("register view %q: %w", d.ID, err)
		}
		if _, ok := r.index[d.ID]; ok {
			return fmt.Errorf("register view %q: already registered", d.ID)
		}
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("register view %q: duplicated in batch", d.ID)
		}
		seen[d.ID] = struct{}{}
	}

	for _, d := range descs {
		r.index[d.ID] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}

	r.registered.Emit(descs)
	return nil
}

// Deregister removes descriptors by id and emits a single deregistered
// event carrying the removed descriptors. Unknown ids are skipped.
func (r *Registry) Deregister(ids ...string) {
	var removed []Descriptor
	for _, id := range ids {
		if _, ok := r.index[id]; ok {
			removed = append(removed, r.descriptors[r.index[id]])
		}
	}
	if len(removed) == 0 {
		return
	}

	gone := make(map[string]struct{}, len(removed))
	for _, d := range removed {
		gone[d.ID] = struct{}{}
	}

	kept := r.descriptors[:0]
	for _, d := range r.descriptors {
		if _, ok := gone[d.ID]; !ok {
			kept = append(kept, d)
		}
	}
	r.descriptors = kept

	r.index = make(map[string]int, len(r.descriptors))
	for i, d := range r.descriptors {
		r.index[d.ID] = i
	}

	r.deregistered.Emit(removed)
}

// Views returns the descriptors registered for a location, in
// registration order.
func (r *Registry) Views(loc Location) []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if d.Location == loc {
			out = append(out, d)
		}
	}
	return out
}

// View returns a descriptor by id.
func (r *Registry) View(id string) (Descriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// OnRegistered subscribes to registration batches.
func (r *Registry) OnRegistered(fn func([]Descriptor)) func() {
	return r.registered.Subscribe(fn)
}

// OnDeregistered subscribes to deregistration batches.
func (r *Registry) OnDeregistered(fn func([]Descriptor)) func() {
	return r.deregistered.Subscribe(fn)
}
