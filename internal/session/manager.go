package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

// Manager implements the SessionManager interface
// ARCHITECTURAL DISCOVERY: In-memory cache of active sessions in front of the
// database; each entry carries its own lock so renders of one session are
// serialized while different sessions proceed independently
type Manager struct {
	dbManager      interfaces.DatabaseManager
	logger         zerolog.Logger
	idleTimeout    time.Duration
	activeSessions map[string]*entry // sessionID -> entry
	mu             sync.RWMutex
	now            func() time.Time
	scheduler      *cron.Cron
	onEnd          func(sessionID string)
}

type entry struct {
	mu      sync.Mutex // held for the whole render
	session *types.Session
}

// NewManager creates a new session manager
func NewManager(dbManager interfaces.DatabaseManager, logger zerolog.Logger, idleTimeout time.Duration) *Manager {
	return &Manager{
		dbManager:      dbManager,
		logger:         logger.With().Str("component", "session").Logger(),
		idleTimeout:    idleTimeout,
		activeSessions: make(map[string]*entry),
		now:            time.Now,
	}
}

// LoadActiveSessions loads all active sessions from database into memory
func (m *Manager) LoadActiveSessions(ctx context.Context) error {
	sessions, err := m.dbManager.ListActiveSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range sessions {
		m.activeSessions[session.ID] = &entry{session: session}
	}

	m.logger.Info().Int("sessions", len(sessions)).Msg("loaded active sessions")
	return nil
}

// CreateSession starts a session with empty state
func (m *Manager) CreateSession(ctx context.Context) (*types.Session, error) {
	now := m.now().UTC()
	session := &types.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		LastSeen:  now,
		Status:    types.SessionStatusActive,
	}

	if err := m.dbManager.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	m.activeSessions[session.ID] = &entry{session: session}
	m.mu.Unlock()

	m.logger.Info().Str("session_id", session.ID).Msg("created session")
	return snapshot(session), nil
}

// GetSession returns a copy of the session; callers never share the cached state
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	if e, ok := m.lookup(sessionID); ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return snapshot(e.session), nil
	}

	session, err := m.dbManager.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// EndSession ends an active session and discards its state
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	e, ok := m.lookup(sessionID)
	if !ok {
		dbSession, err := m.dbManager.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if dbSession.Status == types.SessionStatusEnded {
			return ErrSessionAlreadyEnded
		}
		e = &entry{session: dbSession}
	}

	// wait for an in-flight render to finish before tearing down
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status == types.SessionStatusEnded {
		return ErrSessionAlreadyEnded
	}

	ended := *e.session
	now := m.now().UTC()
	ended.EndedAt = &now
	ended.Status = types.SessionStatusEnded
	ended.State = types.SessionState{}

	if err := m.dbManager.EndSession(ctx, &ended); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	*e.session = ended

	m.mu.Lock()
	delete(m.activeSessions, sessionID)
	m.mu.Unlock()

	m.logger.Info().Str("session_id", sessionID).Msg("ended session")
	if m.onEnd != nil {
		m.onEnd(sessionID)
	}
	return nil
}

// OnSessionEnded registers fn to run after a session ends, whether through
// EndSession or the idle sweep. Call before serving traffic.
func (m *Manager) OnSessionEnded(fn func(sessionID string)) {
	m.onEnd = fn
}

// ListActiveSessions returns copies of all active sessions
func (m *Manager) ListActiveSessions(ctx context.Context) ([]*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	m.mu.RLock()
	entries := make([]*entry, 0, len(m.activeSessions))
	for _, e := range m.activeSessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	sessions := make([]*types.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		sessions = append(sessions, snapshot(e.session))
		e.mu.Unlock()
	}
	return sessions, nil
}

// Apply runs fn with exclusive access to the session's state. The state fn
// returns is persisted and committed only when fn succeeds; on failure the
// session keeps the state it had before the event.
func (m *Manager) Apply(ctx context.Context, sessionID string, fn interfaces.RenderFunc) (*types.Output, error) {
	e, err := m.activeEntry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != types.SessionStatusActive {
		return nil, ErrSessionEnded
	}

	newState, output, err := fn(e.session.State.Clone())
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, ErrNilRender
	}

	updated := *e.session
	updated.State = newState
	updated.LastSeen = m.now().UTC()

	if err := m.dbManager.SaveState(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to persist session state: %w", err)
	}

	*e.session = updated
	return output, nil
}

// SweepIdle ends every session not used within the idle timeout and returns
// how many were ended.
func (m *Manager) SweepIdle(ctx context.Context) int {
	cutoff := m.now().UTC().Add(-m.idleTimeout)

	sessions, err := m.ListActiveSessions(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to list sessions for idle sweep")
		return 0
	}

	var idle []string
	for _, s := range sessions {
		if s.LastSeen.Before(cutoff) {
			idle = append(idle, s.ID)
		}
	}

	ended := 0
	for _, id := range idle {
		if err := m.EndSession(ctx, id); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("failed to end idle session")
			continue
		}
		ended++
	}

	if ended > 0 {
		m.logger.Info().Int("ended", ended).Dur("idle_timeout", m.idleTimeout).Msg("swept idle sessions")
	}
	return ended
}

// StartSweeper runs SweepIdle on the given cron schedule (e.g. "@every 1m").
func (m *Manager) StartSweeper(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m.SweepIdle(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	m.mu.Lock()
	m.scheduler = c
	m.mu.Unlock()
	return nil
}

// StopSweeper stops the sweeper and waits for a running sweep to finish.
func (m *Manager) StopSweeper() {
	m.mu.Lock()
	c := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// ActiveCount returns the number of cached active sessions
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activeSessions)
}

// IsSessionActive checks if a session is active (cache-only check)
func (m *Manager) IsSessionActive(sessionID string) bool {
	_, ok := m.lookup(sessionID)
	return ok
}

func (m *Manager) lookup(sessionID string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.activeSessions[sessionID]
	return e, ok
}

// activeEntry returns the cached entry, falling back to the database for
// sessions created by another process sharing the same file.
func (m *Manager) activeEntry(ctx context.Context, sessionID string) (*entry, error) {
	if e, ok := m.lookup(sessionID); ok {
		return e, nil
	}

	session, err := m.dbManager.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != types.SessionStatusActive {
		return nil, ErrSessionEnded
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.activeSessions[sessionID]; ok {
		return e, nil
	}
	e := &entry{session: session}
	m.activeSessions[sessionID] = e
	return e, nil
}

func snapshot(s *types.Session) *types.Session {
	cp := *s
	cp.State = s.State.Clone()
	return &cp
}
