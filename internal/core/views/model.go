package views

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/colonyops/dock/pkg/events"
	"github.com/colonyops/dock/pkg/sequence"
)

// ErrNotToggleable is returned by SetVisible for views whose descriptor
// forbids user toggling.
var ErrNotToggleable = errors.New("can't toggle this view's visibility")

// AddEvent announces a view entering the visible projection. Index is the
// insertion point among visible views at emission time.
type AddEvent struct {
	Index      int
	Descriptor Descriptor
	Collapsed  bool
	Size       *int
}

// RemoveEvent announces a view leaving the visible projection. Index is
// the view's position among visible views at emission time.
type RemoveEvent struct {
	Index      int
	Descriptor Descriptor
}

// MoveTarget is one endpoint of a move: a raw index into the canonical
// (not visible-only) order.
type MoveTarget struct {
	Index      int
	Descriptor Descriptor
}

// MoveEvent announces a user-initiated reorder.
type MoveEvent struct {
	From MoveTarget
	To   MoveTarget
}

// Position is the result of Find: where a view sits in the canonical
// order and in the visible projection.
type Position struct {
	Index        int
	VisibleIndex int
	Descriptor   Descriptor
	State        *State
}

// Model maintains the canonical ordered list of a location's active views
// and the per-view user state, emitting minimal add/remove/move events as
// the active set and user choices evolve.
type Model struct {
	descriptors []Descriptor
	states      map[string]*State

	added   *events.Emitter[AddEvent]
	removed *events.Emitter[RemoveEvent]
	moved   *events.Emitter[MoveEvent]

	unsub func()
}

// NewModel builds a model over a collection, seeding per-view state from
// states (which may be nil). The initial reconcile pass emits add events
// for the views visible at construction.
func NewModel(c *Collection, states map[string]*State) *Model {
	if states == nil {
		states = make(map[string]*State)
	}
	m := &Model{
		states:  states,
		added:   events.NewEmitter[AddEvent](),
		removed: events.NewEmitter[RemoveEvent](),
		moved:   events.NewEmitter[MoveEvent](),
	}

	m.unsub = c.OnDidChange(func() {
		m.reconcile(c.ActiveDescriptors())
	})
	m.reconcile(c.ActiveDescriptors())

	return m
}

// Descriptors returns the canonical ordered list of active views.
func (m *Model) Descriptors() []Descriptor {
	return slices.Clone(m.descriptors)
}

// VisibleDescriptors returns the visible subsequence of the canonical order.
func (m *Model) VisibleDescriptors() []Descriptor {
	var out []Descriptor
	for _, d := range m.descriptors {
		if m.states[d.ID].Visible {
			out = append(out, d)
		}
	}
	return out
}

// OnDidAdd subscribes to add events.
func (m *Model) OnDidAdd(fn func(AddEvent)) func() { return m.added.Subscribe(fn) }

// OnDidRemove subscribes to remove events.
func (m *Model) OnDidRemove(fn func(RemoveEvent)) func() { return m.removed.Subscribe(fn) }

// OnDidMove subscribes to move events.
func (m *Model) OnDidMove(fn func(MoveEvent)) func() { return m.moved.Subscribe(fn) }

// IsVisible reports whether the view is visible.
func (m *Model) IsVisible(id string) (bool, error) {
	st, err := m.state(id)
	if err != nil {
		return false, err
	}
	return st.Visible, nil
}

// SetVisible shows or hides a view, emitting exactly one add or remove
// event. Setting the current value is a no-op.
func (m *Model) SetVisible(id string, visible bool) error {
	pos, err := m.Find(id)
	if err != nil {
		return err
	}
	if !pos.Descriptor.CanToggleVisibility {
		return ErrNotToggleable
	}
	if pos.State.Visible == visible {
		return nil
	}

	pos.State.Visible = visible
	if visible {
		m.added.Emit(AddEvent{
			Index:      pos.VisibleIndex,
			Descriptor: pos.Descriptor,
			Collapsed:  pos.State.Collapsed,
			Size:       pos.State.Size,
		})
	} else {
		m.removed.Emit(RemoveEvent{Index: pos.VisibleIndex, Descriptor: pos.Descriptor})
	}
	return nil
}

// IsCollapsed reports whether the view is collapsed.
func (m *Model) IsCollapsed(id string) (bool, error) {
	st, err := m.state(id)
	if err != nil {
		return false, err
	}
	return st.Collapsed, nil
}

// SetCollapsed records the collapsed state. Pure state mutation, no events.
func (m *Model) SetCollapsed(id string, collapsed bool) error {
	st, err := m.state(id)
	if err != nil {
		return err
	}
	st.Collapsed = collapsed
	return nil
}

// Size returns the recorded size, or nil if none was ever set.
func (m *Model) Size(id string) (*int, error) {
	st, err := m.state(id)
	if err != nil {
		return nil, err
	}
	return st.Size, nil
}

// SetSize records the view's size. Pure state mutation, no events.
func (m *Model) SetSize(id string, size int) error {
	st, err := m.state(id)
	if err != nil {
		return err
	}
	st.Size = &size
	return nil
}

// Move relocates fromID to toID's position in the canonical order,
// renumbers every view's order to its new raw index, and emits one move
// event. Visibility is unaffected.
func (m *Model) Move(fromID, toID string) error {
	fromIndex := m.indexOf(fromID)
	if fromIndex < 0 {
		return fmt.Errorf("view descriptor %s not found", fromID)
	}
	toIndex := m.indexOf(toID)
	if toIndex < 0 {
		return fmt.Errorf("view descriptor %s not found", toID)
	}
	if fromIndex == toIndex {
		return nil
	}

	from := m.descriptors[fromIndex]
	to := m.descriptors[toIndex]

	m.descriptors = slices.Delete(m.descriptors, fromIndex, fromIndex+1)
	m.descriptors = slices.Insert(m.descriptors, toIndex, from)

	// Full renumber: the canonical order is now authoritative.
	for i, d := range m.descriptors {
		order := i
		m.states[d.ID].Order = &order
	}

	m.moved.Emit(MoveEvent{
		From: MoveTarget{Index: fromIndex, Descriptor: from},
		To:   MoveTarget{Index: toIndex, Descriptor: to},
	})
	return nil
}

// Find locates a view in the canonical order, reporting both its raw
// index and its index within the visible projection.
func (m *Model) Find(id string) (Position, error) {
	visibleIndex := 0
	for i, d := range m.descriptors {
		st := m.states[d.ID]
		if d.ID == id {
			return Position{
				Index:        i,
				VisibleIndex: visibleIndex,
				Descriptor:   d,
				State:        st,
			}, nil
		}
		if st.Visible {
			visibleIndex++
		}
	}
	return Position{}, fmt.Errorf("view descriptor %s not found", id)
}

// Close detaches the model from its collection. Events stop after Close.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

func (m *Model) state(id string) (*State, error) {
	st, ok := m.states[id]
	if !ok {
		return nil, fmt.Errorf("unknown view %s", id)
	}
	return st, nil
}

func (m *Model) indexOf(id string) int {
	return slices.IndexFunc(m.descriptors, func(d Descriptor) bool { return d.ID == id })
}

// order resolves a view's effective sort key: user state order wins over
// the declared order; views with neither sort last.
func (m *Model) order(d Descriptor) int {
	if st, ok := m.states[d.ID]; ok && st.Order != nil {
		return *st.Order
	}
	if d.Order != nil {
		return *d.Order
	}
	return math.MaxInt
}

// compare is the strict total order over descriptors: by effective order,
// ties broken by ascending id. Ids are unique, so no two distinct
// descriptors compare equal.
func (m *Model) compare(a, b Descriptor) int {
	if a.ID == b.ID {
		return 0
	}
	ao, bo := m.order(a), m.order(b)
	switch {
	case ao < bo:
		return -1
	case ao > bo:
		return 1
	case a.ID < b.ID:
		return -1
	default:
		return 1
	}
}

// reconcile replaces the canonical order with the sorted active set,
// emitting add/remove events for visible views that entered or left.
// Splices are applied in reverse so indices of earlier splices stay valid.
func (m *Model) reconcile(active []Descriptor) {
	incoming := slices.Clone(active)
	for _, d := range incoming {
		if _, ok := m.states[d.ID]; !ok {
			m.states[d.ID] = &State{Visible: true, Collapsed: d.Collapsed}
		}
	}

	slices.SortFunc(incoming, m.compare)

	splices := sequence.Diff(m.descriptors, incoming, func(a, b Descriptor) bool {
		return m.compare(a, b) == 0
	})

	for i := len(splices) - 1; i >= 0; i-- {
		sp := splices[i]

		// Translate the splice start into an index in the visible projection.
		index := 0
		for _, d := range m.descriptors[:sp.Start] {
			if m.states[d.ID].Visible {
				index++
			}
		}

		for _, d := range sp.Deleted {
			if m.states[d.ID].Visible {
				m.removed.Emit(RemoveEvent{Index: index, Descriptor: d})
			}
		}
		for _, d := range sp.Inserted {
			st := m.states[d.ID]
			if st.Visible {
				m.added.Emit(AddEvent{Index: index, Descriptor: d, Collapsed: st.Collapsed, Size: st.Size})
				index++
			}
		}
	}

	m.descriptors = incoming
}
