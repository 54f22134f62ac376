package views

import (
	"github.com/colonyops/dock/internal/core/ctxkey"
	"github.com/colonyops/dock/internal/core/when"
	"github.com/colonyops/dock/pkg/countset"
	"github.com/colonyops/dock/pkg/events"
)

// ViewRegistry is the registry capability the collection consumes.
type ViewRegistry interface {
	Views(Location) []Descriptor
	OnRegistered(func([]Descriptor)) func()
	OnDeregistered(func([]Descriptor)) func()
}

// ContextKeys is the context-evaluator capability the collection consumes.
type ContextKeys interface {
	Matches(*when.Expr) bool
	OnDidChangeContext(func(ctxkey.ChangeEvent)) func()
}

type viewItem struct {
	descriptor Descriptor
	active     bool
}

// Collection tracks the descriptors of one location and which of them are
// active under the current context. It emits one coalesced change signal
// per registry batch or relevant context change.
type Collection struct {
	location Location
	context  ContextKeys

	items   []viewItem
	keys    *countset.Set[string]
	changed *events.Emitter[struct{}]
	unsubs  []func()
}

// NewCollection seeds the collection from the registry's current contents
// for the location and subscribes to registry and context changes.
func NewCollection(loc Location, reg ViewRegistry, ctx ContextKeys) *Collection {
	c := &Collection{
		location: loc,
		context:  ctx,
		keys:     countset.New[string](),
		changed:  events.NewEmitter[struct{}](),
	}

	for _, d := range reg.Views(loc) {
		c.append(d)
	}

	c.unsubs = append(c.unsubs,
		reg.OnRegistered(c.onRegistered),
		reg.OnDeregistered(c.onDeregistered),
		ctx.OnDidChangeContext(c.onContextChanged),
	)

	return c
}

// ActiveDescriptors returns the descriptors whose predicate currently
// holds, in insertion order.
func (c *Collection) ActiveDescriptors() []Descriptor {
	var out []Descriptor
	for _, it := range c.items {
		if it.active {
			out = append(out, it.descriptor)
		}
	}
	return out
}

// OnDidChange subscribes to the coalesced change signal and returns an
// unsubscribe function.
func (c *Collection) OnDidChange(fn func()) func() {
	return c.changed.Subscribe(func(struct{}) { fn() })
}

// Close releases the collection's subscriptions.
func (c *Collection) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

func (c *Collection) append(d Descriptor) bool {
	active := c.context.Matches(d.When)
	c.items = append(c.items, viewItem{descriptor: d, active: active})
	for _, k := range d.When.Keys() {
		c.keys.Add(k)
	}
	return active
}

func (c *Collection) onRegistered(batch []Descriptor) {
	anyActive := false
	for _, d := range batch {
		if d.Location != c.location {
			continue
		}
		if c.append(d) {
			anyActive = true
		}
	}
	if anyActive {
		c.changed.Emit(struct{}{})
	}
}

func (c *Collection) onDeregistered(batch []Descriptor) {
	gone := make(map[string]struct{})
	for _, d := range batch {
		if d.Location == c.location {
			gone[d.ID] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return
	}

	anyActive := false
	kept := c.items[:0]
	for _, it := range c.items {
		if _, ok := gone[it.descriptor.ID]; !ok {
			kept = append(kept, it)
			continue
		}
		if it.active {
			anyActive = true
		}
		for _, k := range it.descriptor.When.Keys() {
			c.keys.Delete(k)
		}
	}
	c.items = kept

	if anyActive {
		c.changed.Emit(struct{}{})
	}
}

func (c *Collection) onContextChanged(e ctxkey.ChangeEvent) {
	if !e.AffectsSome(c.keys) {
		return
	}

	flipped := false
	for i := range c.items {
		active := c.context.Matches(c.items[i].descriptor.When)
		if active != c.items[i].active {
			c.items[i].active = active
			flipped = true
		}
	}
	if flipped {
		c.changed.Emit(struct{}{})
	}
}
