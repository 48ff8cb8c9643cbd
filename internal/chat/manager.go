// Package chat implements the websocket hub: a per-user connection registry,
// the read/write pumps for each socket, and the message pipeline that
// persists, enriches, and fans out chat traffic.
package chat

import (
	"sync"

	"github.com/tandemchat/backend/internal/logging"
)

// Conn is the writable side of a socket as the registry sees it. The gorilla
// client satisfies it; tests substitute recording fakes.
type Conn interface {
	SendJSON(v interface{}) error
}

// Manager maps each connected user to the set of their live sockets. A user
// with several tabs or devices holds several entries; a user with none holds
// no map entry at all.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

// NewManager creates an empty connection registry.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]map[Conn]struct{})}
}

// Connect registers conn under user, creating the user's entry if absent.
func (m *Manager) Connect(user string, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.conns[user]
	if !ok {
		set = make(map[Conn]struct{})
		m.conns[user] = set
	}
	set[conn] = struct{}{}

	logging.Info("websocket connected", map[string]interface{}{
		"user":    user,
		"sockets": len(set),
	})
}

// Disconnect removes conn from user's entry and deletes the entry once it
// holds no sockets, so broadcast lookups for offline users stay O(1) misses.
func (m *Manager) Disconnect(user string, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.conns[user]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(m.conns, user)
	}

	logging.Info("websocket disconnected", map[string]interface{}{
		"user":    user,
		"sockets": len(set),
	})
}

// BroadcastToParticipants sends payload to every socket of every participant
// except exclude. Pass an empty exclude to reach everyone. A send failure on
// one socket is logged and never aborts delivery to the rest.
func (m *Manager) BroadcastToParticipants(participants []string, payload interface{}, exclude string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range participants {
		if user == exclude {
			continue
		}
		for conn := range m.conns[user] {
			if err := conn.SendJSON(payload); err != nil {
				logging.Error("websocket send failed", err, map[string]interface{}{
					"user": user,
				})
			}
		}
	}
}

// ConnectedUsers reports how many users currently hold at least one socket.
func (m *Manager) ConnectedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}
