package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadmap/internal/database"
	"roadmap/internal/metrics"
	"roadmap/internal/notes"
	"roadmap/internal/session"
	"roadmap/internal/topics"
	"roadmap/internal/websocket"
	dbconfig "roadmap/pkg/database"
	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

type unhealthy struct{}

func (unhealthy) HealthCheck(context.Context) error { return errors.New("database is locked") }

type testServer struct {
	*Server
	sessions *session.Manager
	notePath string
}

// newTestServer wires the real storage, session and topic layers over a
// temporary sqlite file.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = filepath.Join(dir, "roadmap.db")
	db, err := database.NewManager(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions := session.NewManager(db, zerolog.Nop(), time.Hour)
	notePath := filepath.Join(dir, "notes.txt")
	dispatcher := topics.NewDispatcher(notes.NewFileLog(notePath), zerolog.Nop())
	m := metrics.New(sessions.ActiveCount)
	dispatcher.SetObserver(m)

	srv := NewServer(sessions, dispatcher, db, websocket.NewRegistry(), m.Handler(), zerolog.Nop())
	return &testServer{Server: srv, sessions: sessions, notePath: notePath}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func (ts *testServer) newSession(t *testing.T) *types.Session {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Session)
	return resp.Session
}

func (ts *testServer) renderEvent(t *testing.T, sessionID string, ev types.Event) (*types.Output, int) {
	t.Helper()
	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%s/render", sessionID), ev)
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var resp RenderResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Output, w.Code
}

func TestServer_ListTopics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/topics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp TopicsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, types.Menu, resp.Topics)
}

func TestServer_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	s := ts.newSession(t)
	assert.Equal(t, types.SessionStatusActive, s.Status)

	w := ts.do(t, http.MethodGet, "/api/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, s.ID, got.Session.ID)
	assert.Equal(t, 0, got.ConnectionCount)

	w = ts.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListSessionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, s.ID, list.Sessions[0].ID)

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	_, code := ts.renderEvent(t, s.ID, types.Event{Topic: types.TopicBasics})
	assert.Equal(t, http.StatusGone, code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, types.SessionStatusEnded, got.Session.Status)
}

func TestServer_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/sessions/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/sessions/missing", nil).Code)

	_, code := ts.renderEvent(t, "missing", types.Event{Topic: types.TopicBasics})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_RenderPersistsState(t *testing.T) {
	ts := newTestServer(t)
	s := ts.newSession(t)

	score := 77
	out, code := ts.renderEvent(t, s.ID, types.Event{
		Topic:  types.TopicDataStructures,
		Action: types.ActionAddStudent,
		Inputs: types.Inputs{StudentName: "Zara", Score: &score},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, out.Blocks[2].Text, "Added Zara with score 77")

	w := ts.do(t, http.MethodGet, "/api/sessions/"+s.ID, nil)
	var got SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 77, got.Session.State.Students["Zara"])
	assert.Equal(t, 90, got.Session.State.Students["Ali"])
}

func TestServer_RenderErrors(t *testing.T) {
	ts := newTestServer(t)
	s := ts.newSession(t)
	path := "/api/sessions/" + s.ID + "/render"

	tests := []struct {
		name string
		body any
		want int
	}{
		{"invalid json", "{oops", http.StatusBadRequest},
		{"unknown field", `{"topic":"Basics","colour":"red"}`, http.StatusBadRequest},
		{"unknown topic", types.Event{Topic: "COBOL"}, http.StatusBadRequest},
		{"unknown action", types.Event{Topic: types.TopicOOP, Action: "borrow"}, http.StatusBadRequest},
		{"unknown operation", types.Event{Topic: types.TopicFunctions, Inputs: types.Inputs{Operation: "Mod"}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestServer_NoteLogFailureIsServerError(t *testing.T) {
	ts := newTestServer(t)
	s := ts.newSession(t)

	// a directory where the note file should be makes every append fail
	require.NoError(t, os.Mkdir(ts.notePath, 0o755))

	_, code := ts.renderEvent(t, s.ID, types.Event{
		Topic:  types.TopicFileHandling,
		Action: types.ActionSaveNote,
		Inputs: types.Inputs{Note: "hello"},
	})
	assert.Equal(t, http.StatusInternalServerError, code)

	// the process keeps serving
	_, code = ts.renderEvent(t, s.ID, types.Event{Topic: types.TopicBasics})
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_HealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.newSession(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	assert.Contains(t, resp.Connections, "total_connections")
	assert.Contains(t, resp.System, "goroutines")
}

func TestServer_HealthCheckUnhealthy(t *testing.T) {
	ts := newTestServer(t)
	srv := NewServer(ts.sessions, topics.NewDispatcher(notes.NewFileLog(ts.notePath), zerolog.Nop()), unhealthy{}, websocket.NewRegistry(), nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Database, "database is locked")

	// no metrics handler configured
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)
	s := ts.newSession(t)
	_, code := ts.renderEvent(t, s.ID, types.Event{Topic: types.TopicOOP})
	require.Equal(t, http.StatusOK, code)

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `roadmap_renders_total{outcome="ok",topic="OOP"} 1`)
	assert.Contains(t, body, "roadmap_active_sessions 1")
}

func TestServer_CORSMiddleware(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	w = ts.do(t, http.MethodGet, "/api/topics", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("render: %w", types.ErrOutOfRange), http.StatusBadRequest},
		{types.ErrUnknownTopic, http.StatusBadRequest},
		{interfaces.ErrSessionNotFound, http.StatusNotFound},
		{interfaces.ErrSessionEnded, http.StatusGone},
		{interfaces.ErrAlreadyEnded, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
