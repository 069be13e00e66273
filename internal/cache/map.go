package cache

import "sync"

// Map is a reader/writer locked map from Key to V. Reads run concurrently;
// writes are exclusive. Each Map has its own lock, so two maps never need
// to be locked together.
type Map[V any] struct {
	mu      sync.RWMutex
	entries map[Key]V
}

// NewMap creates an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{entries: make(map[Key]V)}
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key Key) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Put stores value under key, replacing any previous value.
func (m *Map[V]) Put(key Key, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

// DeleteProject removes every entry belonging to project and returns how
// many were removed.
func (m *Map[V]) DeleteProject(project string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k := range m.entries {
		if k.Project == project {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// ProjectLen returns the number of entries belonging to project.
func (m *Map[V]) ProjectLen(project string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.entries {
		if k.Project == project {
			n++
		}
	}
	return n
}
