package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	dbconfig "roadmap/pkg/database"
	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

// ErrManagerClosed is returned by writes issued after Close.
var ErrManagerClosed = errors.New("database manager is closed")

// Manager implements the DatabaseManager interface
type Manager struct {
	db           *sql.DB
	config       *dbconfig.Config
	logger       zerolog.Logger
	writeChannel chan writeOperation // single-writer pattern for SQLite
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex // protects closed
	retryDelay   time.Duration
}

type writeOperation struct {
	operation func(*sql.DB) error
	result    chan error
}

// NewManager opens the database, applies pragmas and migrations and starts
// the write loop.
func NewManager(config *dbconfig.Config, logger zerolog.Logger) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	if dir := filepath.Dir(config.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := dbconfig.ApplyPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply SQLite pragmas: %w", err)
	}

	if err := dbconfig.NewMigrationManager(db).ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	manager := &Manager{
		db:           db,
		config:       config,
		logger:       logger.With().Str("component", "database").Logger(),
		writeChannel: make(chan writeOperation, 100),
		shutdown:     make(chan struct{}),
		retryDelay:   time.Second,
	}

	// ARCHITECTURAL DISCOVERY: Single-writer goroutine prevents SQLite write contention
	manager.wg.Add(1)
	go manager.writeLoop()

	manager.logger.Info().Str("path", config.DatabasePath).Msg("database ready")
	return manager, nil
}

// writeLoop processes all write operations in a single goroutine
func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			err := op.operation(m.db)
			if err != nil && !errors.Is(err, interfaces.ErrSessionNotFound) {
				// FUNCTIONAL DISCOVERY: one retry covers transient SQLITE_BUSY
				m.logger.Warn().Err(err).Dur("retry_in", m.retryDelay).Msg("database write failed, retrying")
				time.Sleep(m.retryDelay)
				err = op.operation(m.db)
				if err != nil {
					m.logger.Error().Err(err).Msg("database write failed after retry")
				}
			}
			op.result <- err

		case <-m.shutdown:
			m.logger.Debug().Msg("database write loop shutting down")
			return
		}
	}
}

// executeWrite queues a write operation and waits for completion
func (m *Manager) executeWrite(ctx context.Context, operation func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrManagerClosed
	}
	m.mu.RUnlock()

	result := make(chan error, 1)

	select {
	case m.writeChannel <- writeOperation{operation: operation, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.shutdown:
		return ErrManagerClosed
	}

	select {
	case err := <-result:
		return err
	case <-m.shutdown:
		return ErrManagerClosed
	case <-time.After(30 * time.Second):
		return fmt.Errorf("write operation timeout")
	}
}

// CreateSession inserts a new session row
func (m *Manager) CreateSession(ctx context.Context, session *types.Session) error {
	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	return m.executeWrite(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO sessions (id, created_at, last_seen, status, state)
			VALUES (?, ?, ?, ?, ?)
		`,
			session.ID,
			session.CreatedAt,
			session.LastSeen,
			session.Status,
			string(stateJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// GetSession retrieves a session by ID
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, created_at, last_seen, ended_at, status, state
		FROM sessions
		WHERE id = ?
	`, sessionID)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// SaveState stores the committed state after a render
func (m *Manager) SaveState(ctx context.Context, session *types.Session) error {
	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	return m.executeWrite(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			UPDATE sessions
			SET state = ?, last_seen = ?
			WHERE id = ? AND status = 'active'
		`, string(stateJSON), session.LastSeen, session.ID)
		if err != nil {
			return fmt.Errorf("failed to save session state: %w", err)
		}
		return requireOneRow(res)
	})
}

// EndSession marks the session ended and clears its state
func (m *Manager) EndSession(ctx context.Context, session *types.Session) error {
	return m.executeWrite(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			UPDATE sessions
			SET status = 'ended', ended_at = ?, state = '{}'
			WHERE id = ?
		`, session.EndedAt, session.ID)
		if err != nil {
			return fmt.Errorf("failed to end session: %w", err)
		}
		return requireOneRow(res)
	})
}

// ListActiveSessions returns all active sessions, most recently used first
func (m *Manager) ListActiveSessions(ctx context.Context) ([]*types.Session, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, created_at, last_seen, ended_at, status, state
		FROM sessions
		WHERE status = 'active'
		ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*types.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

// HealthCheck validates database connectivity
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var n int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}
	return nil
}

// GetDB returns the underlying database connection
func (m *Manager) GetDB() *sql.DB {
	return m.db
}

// Close shuts down the write loop and the connection pool
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*types.Session, error) {
	var session types.Session
	var endedAt sql.NullTime
	var stateJSON string

	err := row.Scan(
		&session.ID,
		&session.CreatedAt,
		&session.LastSeen,
		&endedAt,
		&session.Status,
		&stateJSON,
	)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}

	if err := json.Unmarshal([]byte(stateJSON), &session.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &session, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrSessionNotFound
	}
	return nil
}
