// Package comments groups comment threads by resource and applies
// incremental added/removed/changed deltas to the grouping.
package comments

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrEmptyThread is returned when a thread carries no comments. A thread
// is represented by its first comment, so zero comments is unrepresentable.
var ErrEmptyThread = errors.New("comment thread has no comments")

// Range locates a thread within its resource. Lines and columns are 1-based.
type Range struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Comment is a single authored message.
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is the flat wire form of a comment thread: a resource anchor and
// one or more comments, the first of which is the thread root.
type Thread struct {
	ID       string    `json:"id"`
	Resource string    `json:"resource"`
	Range    Range     `json:"range"`
	Comments []Comment `json:"comments"`
}

// Node is a grouped thread: the root comment plus its replies. Replies
// are a flat list on the root, never nested deeper.
type Node struct {
	ThreadID string
	Resource string
	Range    Range
	Comment  Comment
	Replies  []Comment
}

// ResourceThreads owns the top-level thread nodes of one resource.
type ResourceThreads struct {
	// ID is the resource identity string; entries are keyed by it.
	ID       string
	Resource string
	Threads  []*Node
}

// ChangeEvent is an incremental delta against the current grouping.
// Application order is fixed: removed, then changed, then added.
type ChangeEvent struct {
	Added   []Thread `json:"added,omitempty"`
	Removed []Thread `json:"removed,omitempty"`
	Changed []Thread `json:"changed,omitempty"`
}

// Model is the ordered per-resource grouping of comment threads.
type Model struct {
	resources []*ResourceThreads
}

// NewModel creates an empty comments model.
func NewModel() *Model {
	return &Model{}
}

// Resources returns the resource groups in model order.
func (m *Model) Resources() []*ResourceThreads {
	return m.resources
}

// HasThreads reports whether any resource group exists.
func (m *Model) HasThreads() bool {
	return len(m.resources) > 0
}

// Message returns the empty-state text when no threads exist, else "".
func (m *Model) Message() string {
	if m.HasThreads() {
		return ""
	}
	return "There are no comments in this workspace yet."
}

// SetThreads discards the current grouping and rebuilds it from a flat
// batch of threads.
func (m *Model) SetThreads(threads []Thread) error {
	grouped, err := group(threads)
	if err != nil {
		return err
	}
	m.resources = grouped
	return nil
}

// UpdateThreads applies a delta in three phases: removed, changed, added.
//
// Removed and changed entries must reference threads present in the
// model; a missing reference is skipped and reported in the returned
// error (all errors are joined), never a panic. Added threads merge into
// an existing resource group when one exists.
func (m *Model) UpdateThreads(event ChangeEvent) error {
	var errs []error

	for _, t := range event.Removed {
		ri, ti := m.locate(t)
		if ti < 0 {
			errs = append(errs, fmt.Errorf("remove thread %s: not found for resource %s", t.ID, t.Resource))
			continue
		}
		group := m.resources[ri]
		group.Threads = append(group.Threads[:ti], group.Threads[ti+1:]...)
		if len(group.Threads) == 0 {
			m.resources = append(m.resources[:ri], m.resources[ri+1:]...)
		}
	}

	for _, t := range event.Changed {
		ri, ti := m.locate(t)
		if ti < 0 {
			errs = append(errs, fmt.Errorf("change thread %s: not found for resource %s", t.ID, t.Resource))
			continue
		}
		node, err := newNode(t)
		if err != nil {
			errs = append(errs, fmt.Errorf("change thread %s: %w", t.ID, err))
			continue
		}
		m.resources[ri].Threads[ti] = node
	}

	if len(event.Added) > 0 {
		grouped, err := group(event.Added)
		if err != nil {
			errs = append(errs, err)
		}
		for _, add := range grouped {
			if existing := m.resource(add.ID); existing != nil {
				existing.Threads = append(existing.Threads, add.Threads...)
				continue
			}
			m.resources = append(m.resources, add)
		}
	}

	return errors.Join(errs...)
}

// MatchResources returns the resource groups whose resource identity
// matches the doublestar pattern.
func (m *Model) MatchResources(pattern string) ([]*ResourceThreads, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid resource pattern %q", pattern)
	}

	var out []*ResourceThreads
	for _, r := range m.resources {
		ok, err := doublestar.Match(pattern, r.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Model) resource(id string) *ResourceThreads {
	for _, r := range m.resources {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// locate finds a thread by resource id and thread id, returning the
// resource index and thread index, or (-1, -1).
func (m *Model) locate(t Thread) (int, int) {
	for ri, r := range m.resources {
		if r.ID != t.Resource {
			continue
		}
		for ti, node := range r.Threads {
			if node.ThreadID == t.ID {
				return ri, ti
			}
		}
		return ri, -1
	}
	return -1, -1
}

// group buckets a flat thread batch by resource identity (ascending
// string order across groups, input order within a group) and converts
// each thread to a node.
func group(threads []Thread) ([]*ResourceThreads, error) {
	byResource := make(map[string][]Thread)
	for _, t := range threads {
		byResource[t.Resource] = append(byResource[t.Resource], t)
	}

	ids := make([]string, 0, len(byResource))
	for id := range byResource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	out := make([]*ResourceThreads, 0, len(ids))
	for _, id := range ids {
		r := &ResourceThreads{ID: id, Resource: id}
		for _, t := range byResource[id] {
			node, err := newNode(t)
			if err != nil {
				errs = append(errs, fmt.Errorf("thread %s: %w", t.ID, err))
				continue
			}
			r.Threads = append(r.Threads, node)
		}
		if len(r.Threads) > 0 {
			out = append(out, r)
		}
	}

	return out, errors.Join(errs...)
}

// newNode converts a thread to its grouped form: first comment is the
// root, the rest become replies.
func newNode(t Thread) (*Node, error) {
	if len(t.Comments) == 0 {
		return nil, ErrEmptyThread
	}
	return &Node{
		ThreadID: t.ID,
		Resource: t.Resource,
		Range:    t.Range,
		Comment:  t.Comments[0],
		Replies:  append([]Comment(nil), t.Comments[1:]...),
	}, nil
}
