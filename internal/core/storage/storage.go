// Package storage provides the scoped key-value store used to persist
// user-customized UI state.
package storage

// Scope selects which persistence bucket a key lives in. Workspace-scoped
// state follows the open workspace; global state follows the user.
type Scope int

// Available scopes.
const (
	ScopeGlobal Scope = iota
	ScopeWorkspace
)

// String returns the scope's bucket name.
func (s Scope) String() string {
	switch s {
	case ScopeWorkspace:
		return "workspace"
	default:
		return "global"
	}
}

// Scoped is a string key-value store partitioned by scope. Get returns
// def when the key is absent or the backing data cannot be read; Store
// overwrites unconditionally.
type Scoped interface {
	Get(key string, scope Scope, def string) string
	Store(key, value string, scope Scope) error
}
