package arena

import "sync"

// RefMap is an insert-once map whose values live in an Arena. Once a key is
// registered its value reference never changes until the map is drained.
type RefMap[K comparable, V any] struct {
	mu    sync.RWMutex
	arena *Arena[V]
	index map[K]Handle
}

// NewRefMap creates an empty map over a fresh arena.
func NewRefMap[K comparable, V any]() *RefMap[K, V] {
	return &RefMap[K, V]{
		arena: New[V](),
		index: make(map[K]Handle),
	}
}

// Get returns the value registered for k.
func (m *RefMap[K, V]) Get(k K) (*V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return m.arena.At(h), true
}

// OrInsert returns the value registered for k, registering v first if k is
// absent. When k is already present v is discarded.
func (m *RefMap[K, V]) OrInsert(k K, v V) *V {
	if p, ok := m.Get(k); ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.index[k]; ok {
		return m.arena.At(h)
	}
	h, p := m.arena.AllocHandle(v)
	m.index[k] = h
	return p
}

// Len returns the number of registered keys.
func (m *RefMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

// Values returns every registered value in insertion order.
func (m *RefMap[K, V]) Values() []*V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.arena.All()
}

// Drain unregisters every key and returns the values in insertion order,
// handing ownership to the caller. The map is empty and usable afterwards.
func (m *RefMap[K, V]) Drain() []*V {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.arena.All()
	m.arena = New[V]()
	m.index = make(map[K]Handle)
	return out
}

// Release discards every value. Later inserts panic.
func (m *RefMap[K, V]) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arena.Release()
	m.index = make(map[K]Handle)
}
