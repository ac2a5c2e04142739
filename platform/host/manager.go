package host

import (
	"errors"
	"sort"
	"sync"

	"github.com/contactoiut/bancomaton-backend/platform/ledger"
)

// Manager keeps the live coordinators of this process, keyed by session code.
// The code doubles as the publishable session identifier handed to joiners.
type Manager struct {
	ledger   *ledger.Ledger
	mu       sync.RWMutex
	sessions map[string]*Coordinator
}

func NewManager(l *ledger.Ledger) *Manager {
	return &Manager{ledger: l, sessions: make(map[string]*Coordinator)}
}

func (m *Manager) Create(code string, hostName string) (*Coordinator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[code]; exists {
		return nil, errors.New("session exists")
	}
	c := NewCoordinator(m.ledger, hostName)
	m.sessions[code] = c
	return c, nil
}

func (m *Manager) Get(code string) (*Coordinator, bool) {
	m.mu.RLock()
	c, ok := m.sessions[code]
	m.mu.RUnlock()
	return c, ok
}

func (m *Manager) Remove(code string) {
	m.mu.Lock()
	delete(m.sessions, code)
	m.mu.Unlock()
}

func (m *Manager) ListCodes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]string, 0, len(m.sessions))
	for code := range m.sessions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
