package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"valentine/album"
	"valentine/configstore"
	"valentine/content"
	"valentine/editor"
	"valentine/flow"
)

var ErrNotFound = errors.New("session not found")

// OptionsFunc builds the flow collaborators for a new session. The default
// uses the wall clock and drives the client's audio element.
type OptionsFunc func(s *Session) flow.Options

// Manager tracks live sessions and the content they share.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	store     *configstore.Manager
	ingester  editor.Ingester
	assetBase string
	optsFn    OptionsFunc
}

// NewManager returns a Manager whose sessions render store's bundle and
// resolve media against assetBase.
func NewManager(store *configstore.Manager, ingester editor.Ingester, assetBase string) *Manager {
	return NewManagerWithOptions(store, ingester, assetBase, nil)
}

// NewManagerWithOptions is NewManager with custom flow collaborators, e.g. a
// manual clock for tests.
func NewManagerWithOptions(store *configstore.Manager, ingester editor.Ingester, assetBase string, fn OptionsFunc) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		store:     store,
		ingester:  ingester,
		assetBase: assetBase,
		optsFn:    fn,
	}
}

// Store returns the config store sessions commit edits to.
func (m *Manager) Store() *configstore.Manager { return m.store }

func (m *Manager) Create() *Session {
	bundle := m.store.Get()
	keys := album.NewKeys()
	s := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		lastActive: time.Now(),
		assetBase:  m.assetBase,
		keys:       keys,
		album:      album.New(len(bundle.Photos), keys),
		editor:     editor.New(m.store, m.ingester),
		latest:     &latestView{},
		done:       make(chan struct{}),
	}

	opts := flow.Options{Player: remotePlayer{s: s}}
	if m.optsFn != nil {
		opts = m.optsFn(s)
		if opts.Player == nil {
			opts.Player = remotePlayer{s: s}
		}
	}
	s.machine = flow.NewMachine(bundle, opts)
	s.machine.OnChange(s.Publish)
	s.album.OnClose(s.Publish)
	s.Publish()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list
}

// Summaries lists every session as a snapshot safe to encode while the
// sessions keep running.
func (m *Manager) Summaries() []Summary {
	list := m.List()
	out := make([]Summary, len(list))
	for i, s := range list {
		out[i] = s.Summary()
	}
	return out
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.close()
	return nil
}

// Broadcast pushes a newly committed bundle to every live session.
func (m *Manager) Broadcast(b content.Bundle) {
	for _, s := range m.List() {
		s.ApplyContent(b)
	}
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
