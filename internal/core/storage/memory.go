package storage

// Memory is an in-memory Scoped store. It backs tests and ephemeral
// sessions that opt out of persistence.
type Memory struct {
	buckets map[Scope]map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[Scope]map[string]string)}
}

// Get returns the stored value or def if the key is absent.
func (m *Memory) Get(key string, scope Scope, def string) string {
	if v, ok := m.buckets[scope][key]; ok {
		return v
	}
	return def
}

// Store writes a value into the scope's bucket.
func (m *Memory) Store(key, value string, scope Scope) error {
	b, ok := m.buckets[scope]
	if !ok {
		b = make(map[string]string)
		m.buckets[scope] = b
	}
	b[key] = value
	return nil
}
