package kvstore

import "sync"

// Memory is an in-process Store. FailSet, when non-nil, is consulted before
// every write and its error returned as-is, which lets tests simulate a
// runtime that rejects writes.
type Memory struct {
	mu      sync.Mutex
	quota   int64
	used    int64
	data    map[string]string
	FailSet func(key, value string) error
}

// NewMemory returns an empty store bounded by quota bytes. A quota of zero or
// less disables the bound.
func NewMemory(quota int64) *Memory {
	return &Memory{quota: quota, data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		if err := m.FailSet(key, value); err != nil {
			return err
		}
	}
	old := int64(len(m.data[key]))
	next := int64(len(value))
	if !fits(m.quota, m.used, old, next) {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.used += next - old
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used -= int64(len(m.data[key]))
	delete(m.data, key)
	return nil
}

// Used returns the number of bytes currently stored.
func (m *Memory) Used() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}
