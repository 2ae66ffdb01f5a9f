package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"roadmap/internal/websocket"
	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

// maxEventBytes bounds a render request body.
const maxEventBytes = 1 << 20

// Registry interface to avoid tight coupling to websocket.Registry implementation
type Registry interface {
	GetSessionConnections(sessionID string) []*websocket.Connection
	GetStats() map[string]int
}

// HealthChecker reports storage health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ARCHITECTURAL DISCOVERY: HTTP API layer serves as pure interface between external clients and internal components
// Clean separation - no business logic, only HTTP handling and JSON serialization
type Server struct {
	sessionManager interfaces.SessionManager
	renderer       interfaces.Renderer
	health         HealthChecker
	registry       Registry
	metrics        http.Handler
	logger         zerolog.Logger
	started        time.Time
	router         *http.ServeMux
}

// NewServer wires the routes. metrics may be nil, in which case /metrics is
// not served.
func NewServer(sessionManager interfaces.SessionManager, renderer interfaces.Renderer, health HealthChecker, registry Registry, metrics http.Handler, logger zerolog.Logger) *Server {
	s := &Server{
		sessionManager: sessionManager,
		renderer:       renderer,
		health:         health,
		registry:       registry,
		metrics:        metrics,
		logger:         logger.With().Str("component", "api").Logger(),
		started:        time.Now(),
		router:         http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

// ARCHITECTURAL DISCOVERY: Route setup follows REST conventions with proper middleware
// CORS and JSON middleware applied to all API routes for web client compatibility
func (s *Server) setupRoutes() {
	api := func(h http.HandlerFunc) http.Handler {
		return s.logMiddleware(s.corsMiddleware(s.jsonMiddleware(h)))
	}

	s.router.Handle("GET /api/topics", api(s.listTopics))
	s.router.Handle("POST /api/sessions", api(s.createSession))
	s.router.Handle("GET /api/sessions", api(s.listSessions))
	s.router.Handle("GET /api/sessions/{id}", api(s.getSession))
	s.router.Handle("DELETE /api/sessions/{id}", api(s.endSession))
	s.router.Handle("POST /api/sessions/{id}/render", api(s.render))
	s.router.Handle("OPTIONS /api/", api(func(w http.ResponseWriter, r *http.Request) {}))
	s.router.Handle("GET /health", api(s.healthCheck))
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}
}

// FUNCTIONAL DISCOVERY: Implement http.Handler interface for integration with standard HTTP server
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Request/Response types for JSON serialization
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

type SessionResponse struct {
	Session         *types.Session `json:"session"`
	ConnectionCount int            `json:"connection_count"`
}

type ListSessionsResponse struct {
	Sessions []SessionWithConnections `json:"sessions"`
}

type SessionWithConnections struct {
	*types.Session
	ConnectionCount int `json:"connection_count"`
}

type RenderResponse struct {
	Output *types.Output `json:"output"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Database    string         `json:"database"`
	Sessions    int            `json:"sessions"`
	Connections map[string]int `json:"connections"`
	System      map[string]any `json:"system"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GET /api/topics
func (s *Server) listTopics(w http.ResponseWriter, r *http.Request) {
	topics := make([]string, len(types.Menu))
	copy(topics, types.Menu)
	s.sendJSON(w, http.StatusOK, TopicsResponse{Topics: topics})
}

// POST /api/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionManager.CreateSession(r.Context())
	if err != nil {
		s.sendServiceError(w, err, "Failed to create session")
		return
	}
	s.sendJSON(w, http.StatusCreated, SessionResponse{Session: session})
}

// GET /api/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	session, err := s.sessionManager.GetSession(r.Context(), sessionID)
	if err != nil {
		s.sendServiceError(w, err, "Failed to get session")
		return
	}

	s.sendJSON(w, http.StatusOK, SessionResponse{
		Session:         session,
		ConnectionCount: len(s.registry.GetSessionConnections(sessionID)),
	})
}

// DELETE /api/sessions/{id}
// FUNCTIONAL DISCOVERY: Open websocket connections are closed by the
// session-ended hook, not here, so idle sweeps behave the same way
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := s.sessionManager.EndSession(r.Context(), sessionID); err != nil {
		s.sendServiceError(w, err, "Failed to end session")
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"message": "Session ended successfully"})
}

// GET /api/sessions
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessionManager.ListActiveSessions(r.Context())
	if err != nil {
		s.sendServiceError(w, err, "Failed to list sessions")
		return
	}

	out := make([]SessionWithConnections, len(sessions))
	for i, session := range sessions {
		out[i] = SessionWithConnections{
			Session:         session,
			ConnectionCount: len(s.registry.GetSessionConnections(session.ID)),
		}
	}
	s.sendJSON(w, http.StatusOK, ListSessionsResponse{Sessions: out})
}

// POST /api/sessions/{id}/render
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var ev types.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		s.sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.sessionManager.Apply(r.Context(), sessionID, s.renderer.Bind(ev))
	if err != nil {
		s.sendServiceError(w, err, "Render failed")
		return
	}
	s.sendJSON(w, http.StatusOK, RenderResponse{Output: out})
}

// FUNCTIONAL DISCOVERY: GET /health - System health check with component validation
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "healthy"
	if err := s.health.HealthCheck(ctx); err != nil {
		status = "unhealthy"
		dbStatus = "error: " + err.Error()
	}

	active, err := s.sessionManager.ListActiveSessions(ctx)
	if err != nil {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Database:    dbStatus,
		Sessions:    len(active),
		Connections: s.registry.GetStats(),
		System: map[string]any{
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": int(time.Since(s.started).Seconds()),
		},
	}

	// FUNCTIONAL DISCOVERY: Return 503 if any component is unhealthy
	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	s.sendJSON(w, code, response)
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnknownTopic),
		errors.Is(err, types.ErrUnknownAction),
		errors.Is(err, types.ErrOutOfRange),
		errors.Is(err, types.ErrUnknownOperation):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrAlreadyEnded):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrSessionEnded):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError reports err with its mapped status. Server errors get the
// generic fallback message; the detail only goes to the log.
func (s *Server) sendServiceError(w http.ResponseWriter, err error, fallback string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg(fallback)
		s.sendError(w, fallback, code)
		return
	}
	s.sendError(w, err.Error(), code)
}

// FUNCTIONAL DISCOVERY: Consistent error response format
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.sendJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
