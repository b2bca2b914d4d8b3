package configstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"valentine/content"
	"valentine/kvstore"
)

// StorageKey is the single slot the serialized bundle is kept under.
const StorageKey = "valentine-config"

// ErrStorageFull is returned by Save when the store has no room for the
// merged bundle. Neither the store nor the in-memory bundle changed.
var ErrStorageFull = errors.New("storage full")

// Manager owns the live content bundle and keeps it in step with the store.
type Manager struct {
	mu     sync.RWMutex
	kv     kvstore.Store
	bundle content.Bundle
}

// NewManager reads the persisted bundle from kv, merging it onto the
// defaults. A missing or corrupt slot yields the defaults.
func NewManager(kv kvstore.Store) *Manager {
	m := &Manager{kv: kv}
	m.bundle = m.Load()
	return m
}

// Load reads and merges the persisted bundle without touching the live one.
func (m *Manager) Load() content.Bundle {
	raw, err := m.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("configstore: read %s: %v", StorageKey, err)
		}
		return content.Default()
	}

	var p content.Partial
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// Corrupt state is treated as absent.
		log.Printf("configstore: ignoring corrupt %s: %v", StorageKey, err)
		return content.Default()
	}
	return content.Merge(content.Default(), p)
}

// Get returns a copy of the live bundle.
func (m *Manager) Get() content.Bundle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bundle.Clone()
}

// Save merges p onto the live bundle and persists the result. On
// ErrStorageFull or a validation error nothing changes; any other write
// failure is logged and the live bundle still advances.
func (m *Manager) Save(p content.Partial) (content.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := content.Merge(m.bundle, p)
	if err := next.Validate(); err != nil {
		return m.bundle.Clone(), err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return m.bundle.Clone(), fmt.Errorf("configstore: encode bundle: %w", err)
	}
	if err := m.kv.Set(StorageKey, string(data)); err != nil {
		if errors.Is(err, kvstore.ErrQuotaExceeded) {
			return m.bundle.Clone(), ErrStorageFull
		}
		log.Printf("configstore: write %s: %v", StorageKey, err)
	}

	m.bundle = next
	return next.Clone(), nil
}

// Reset clears the persisted slot and reverts the live bundle to defaults.
func (m *Manager) Reset() content.Bundle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.kv.Remove(StorageKey); err != nil {
		log.Printf("configstore: clear %s: %v", StorageKey, err)
	}
	m.bundle = content.Default()
	return m.bundle.Clone()
}
