package websocket

import (
	"sync"
)

// Registry tracks open connections per session
// ARCHITECTURAL DISCOVERY: Pure connection management without business logic
// maintains clean separation between connection tracking and connection operations
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[*Connection]struct{} // sessionID -> open connections
	total    int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[*Connection]struct{}),
	}
}

// RegisterConnection adds conn under its session. A session may have several
// connections (one per browser tab).
func (r *Registry) RegisterConnection(conn *Connection) error {
	if conn == nil {
		return ErrNilConnection
	}
	sessionID := conn.SessionID()
	if sessionID == "" {
		return ErrNoSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.sessions[sessionID]
	if !ok {
		conns = make(map[*Connection]struct{})
		r.sessions[sessionID] = conns
	}
	if _, dup := conns[conn]; !dup {
		conns[conn] = struct{}{}
		r.total++
	}
	return nil
}

// UnregisterConnection removes conn and reports how many connections its
// session still has. Idempotent.
func (r *Registry) UnregisterConnection(conn *Connection) int {
	if conn == nil {
		return 0
	}
	sessionID := conn.SessionID()

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.sessions[sessionID]
	if !ok {
		return 0
	}
	if _, present := conns[conn]; present {
		delete(conns, conn)
		r.total--
	}
	// TECHNICAL DISCOVERY: Clean up empty maps to prevent memory leaks
	if len(conns) == 0 {
		delete(r.sessions, sessionID)
	}
	return len(conns)
}

// GetSessionConnections returns a snapshot of the session's connections.
func (r *Registry) GetSessionConnections(sessionID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.sessions[sessionID]
	out := make([]*Connection, 0, len(conns))
	for c := range conns {
		out = append(out, c)
	}
	return out
}

// AllConnections returns a snapshot of every open connection.
func (r *Registry) AllConnections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Connection, 0, r.total)
	for _, conns := range r.sessions {
		for c := range conns {
			out = append(out, c)
		}
	}
	return out
}

// GetStats returns registry statistics for monitoring and debugging
func (r *Registry) GetStats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"total_connections": r.total,
		"active_sessions":   len(r.sessions),
	}
}
