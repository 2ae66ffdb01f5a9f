package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbconfig "roadmap/pkg/database"
	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

var _ interfaces.DatabaseManager = (*Manager)(nil)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "roadmap.db")

	m, err := NewManager(cfg, zerolog.Nop())
	require.NoError(t, err)
	m.retryDelay = time.Millisecond
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func newSession(id string) *types.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &types.Session{
		ID:        id,
		CreatedAt: now,
		LastSeen:  now,
		Status:    types.SessionStatusActive,
	}
}

func TestManager_CreateAndGetSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateSession(ctx, newSession("s1")))

	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, types.SessionStatusActive, got.Status)
	assert.Nil(t, got.EndedAt)
	assert.Nil(t, got.State.Number)
}

func TestManager_GetSessionNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestManager_SaveStateRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := newSession("s1")
	require.NoError(t, m.CreateSession(ctx, s))

	n := 7
	s.State = types.SessionState{
		Number:   &n,
		Students: map[string]int{"Ali": 50, "Ayesha": 85},
		Library:  &types.Library{Books: []types.Book{{Title: "Python Basics", Author: "Imtiaz", Available: true}}},
	}
	s.LastSeen = s.LastSeen.Add(time.Minute)
	require.NoError(t, m.SaveState(ctx, s))

	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.State.Number)
	assert.Equal(t, 7, *got.State.Number)
	assert.Equal(t, map[string]int{"Ali": 50, "Ayesha": 85}, got.State.Students)
	assert.Equal(t, s.State.Library.Books, got.State.Library.Books)
}

func TestManager_SaveStateUnknownSession(t *testing.T) {
	m := newTestManager(t)

	err := m.SaveState(context.Background(), newSession("ghost"))
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestManager_EndSessionDropsState(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := newSession("s1")
	s.State.Students = map[string]int{"Ali": 90}
	require.NoError(t, m.CreateSession(ctx, s))

	ended := time.Now().UTC()
	s.EndedAt = &ended
	require.NoError(t, m.EndSession(ctx, s))

	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, types.SessionStatusEnded, got.Status)
	assert.NotNil(t, got.EndedAt)
	assert.Nil(t, got.State.Students)

	active, err := m.ListActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// ended sessions no longer accept state
	assert.ErrorIs(t, m.SaveState(ctx, s), interfaces.ErrSessionNotFound)
}

func TestManager_ListActiveSessions(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	older := newSession("older")
	newer := newSession("newer")
	newer.LastSeen = older.LastSeen.Add(time.Hour)
	require.NoError(t, m.CreateSession(ctx, older))
	require.NoError(t, m.CreateSession(ctx, newer))

	sessions, err := m.ListActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID)
	assert.Equal(t, "older", sessions[1].ID)
}

func TestManager_HealthCheck(t *testing.T) {
	m := newTestManager(t)
	assert.NoError(t, m.HealthCheck(context.Background()))
}

func TestManager_WriteAfterClose(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	err := m.CreateSession(context.Background(), newSession("late"))
	assert.ErrorIs(t, err, ErrManagerClosed)
}
