package interfaces

import (
	"context"

	"roadmap/pkg/types"
)

// RenderFunc computes a new state and output from the current state.
// The session manager commits the returned state only when err is nil.
type RenderFunc func(state types.SessionState) (types.SessionState, *types.Output, error)

// SessionManager handles session lifecycle and serialized state access
type SessionManager interface {
	// CreateSession starts a new session with empty state.
	CreateSession(ctx context.Context) (*types.Session, error)

	// GetSession retrieves an active or ended session.
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)

	// EndSession ends an active session, discarding its state.
	EndSession(ctx context.Context, sessionID string) error

	// ListActiveSessions returns all active sessions.
	ListActiveSessions(ctx context.Context) ([]*types.Session, error)

	// Apply runs fn against the session's state with exclusive access and
	// commits the result. FUNCTIONAL DISCOVERY: exactly one render per event,
	// never two renders of the same session at once
	Apply(ctx context.Context, sessionID string, fn RenderFunc) (*types.Output, error)
}

// NoteLog is the append-only flat file behind the File Handling demo.
type NoteLog interface {
	// Append writes note followed by a newline.
	Append(note string) error

	// ReadAll returns the whole log. Returns ErrNoNotes before the first Append.
	ReadAll() (string, error)

	// Path names the backing file for display.
	Path() string
}

// Renderer turns one client event into a RenderFunc for SessionManager.Apply.
type Renderer interface {
	Bind(ev types.Event) RenderFunc
}
