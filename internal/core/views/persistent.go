package views

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/colonyops/dock/internal/core/storage"
	"github.com/rs/zerolog/log"
)

// storedViewState is the wire form of one persisted view state.
type storedViewState struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}

// PersistentModel is a Model whose per-view states load from and save to
// a scoped store. Workspace scope is used while a workspace is open,
// global scope otherwise.
//
// Close is the guaranteed persistence path: it saves, then releases the
// model's subscriptions. Callers must Close on shutdown or call
// SaveViewsStates explicitly.
type PersistentModel struct {
	*Model

	store  storage.Scoped
	key    string
	scope  storage.Scope
	closed bool
}

// NewPersistentModel loads the state map stored under key and builds a
// model over the collection with it.
func NewPersistentModel(c *Collection, store storage.Scoped, key string, workspaceOpen bool) *PersistentModel {
	scope := storage.ScopeGlobal
	if workspaceOpen {
		scope = storage.ScopeWorkspace
	}

	m := &PersistentModel{
		store: store,
		key:   key,
		scope: scope,
	}
	m.Model = NewModel(c, m.loadViewsStates())
	return m
}

// SaveViewsStates serializes the full state map back to the store.
func (m *PersistentModel) SaveViewsStates() error {
	stored := make([]storedViewState, 0, len(m.states))
	for id, st := range m.states {
		stored = append(stored, storedViewState{ID: id, State: *st})
	}
	// Deterministic output keeps the persisted file diff-friendly.
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal view states: %w", err)
	}
	if err := m.store.Store(m.key, string(data), m.scope); err != nil {
		return fmt.Errorf("store view states: %w", err)
	}
	return nil
}

// Close saves the state map, then detaches from the collection. It is
// idempotent; only the first call saves.
func (m *PersistentModel) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	err := m.SaveViewsStates()
	m.Model.Close()
	return err
}

// loadViewsStates parses the persisted state array. Unparseable data is
// logged and discarded so a damaged layout never blocks startup.
func (m *PersistentModel) loadViewsStates() map[string]*State {
	states := make(map[string]*State)

	raw := m.store.Get(m.key, m.scope, "[]")
	var stored []storedViewState
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Warn().Err(err).Str("key", m.key).Str("scope", m.scope.String()).
			Msg("discarding unparseable view states")
		return states
	}

	for _, s := range stored {
		st := s.State
		states[s.ID] = &st
	}
	return states
}
