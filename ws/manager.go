package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Manager keeps track of active robot websocket connections.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn // robotID -> conn
}

func NewManager() *Manager {
	return &Manager{connections: make(map[string]*websocket.Conn)}
}

// Register registers a robot connection, replacing any existing one.
func (m *Manager) Register(robotID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.connections[robotID]; ok && old != conn {
		// close old connection to avoid leaks
		_ = old.Close()
	}
	m.connections[robotID] = conn
}

// Unregister removes a robot connection.
func (m *Manager) Unregister(robotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.connections[robotID]; ok {
		_ = conn.Close()
		delete(m.connections, robotID)
	}
}

// SendToRobot sends a text message to a robot if connected.
func (m *Manager) SendToRobot(robotID string, payload []byte) error {
	m.mu.RLock()
	conn, ok := m.connections[robotID]
	m.mu.RUnlock()
	if !ok || conn == nil {
		return errors.New("robot not connected")
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// IsConnected returns whether a robot is currently connected.
func (m *Manager) IsConnected(robotID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[robotID]
	return ok
}

// List returns a copy of current connected robot IDs.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	return ids
}
