package interfaces

import (
	"context"

	"roadmap/pkg/types"
)

// DatabaseManager handles all session persistence
// ARCHITECTURAL DISCOVERY: Single interface for session rows keeps the
// session manager testable against an in-memory fake
type DatabaseManager interface {
	// CreateSession inserts a new session row including its initial state.
	CreateSession(ctx context.Context, session *types.Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrSessionNotFound when no row exists.
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)

	// SaveState stores the committed state and last-seen time after a render.
	SaveState(ctx context.Context, session *types.Session) error

	// EndSession marks the session ended and drops its state.
	EndSession(ctx context.Context, session *types.Session) error

	// ListActiveSessions returns all sessions that have not ended.
	ListActiveSessions(ctx context.Context) ([]*types.Session, error)

	// HealthCheck verifies connectivity.
	HealthCheck(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
