package store

import "sync"

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	notifier
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	old, ok := m.values[key]
	m.values[key] = value
	m.mu.Unlock()

	if !ok || old != value {
		m.notify()
	}
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	_, ok := m.values[key]
	delete(m.values, key)
	m.mu.Unlock()

	if ok {
		m.notify()
	}
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	changed := len(m.values) > 0
	delete(m.values, AccessTokenKey)
	delete(m.values, RefreshTokenKey)
	m.mu.Unlock()

	if changed {
		m.notify()
	}
	return nil
}

func (m *Memory) Subscribe() (<-chan struct{}, func()) {
	return m.subscribe()
}
