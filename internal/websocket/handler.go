package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roadmap/internal/config"
	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

// WebSocket upgrader with production-ready settings
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// FUNCTIONAL DISCOVERY: Allow all origins; the tutorial is served
		// from arbitrary local hosts
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Observer is notified about connection lifecycle and throttling.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed()
	RateLimited()
}

// Handler upgrades /ws requests and turns event frames into renders
// ARCHITECTURAL DISCOVERY: Clean separation of WebSocket handling from business logic;
// the handler only decodes frames, throttles and forwards to SessionManager.Apply
type Handler struct {
	registry       *Registry
	sessionManager interfaces.SessionManager
	renderer       interfaces.Renderer
	limiter        *RateLimiter
	cfg            config.WebSocketConfig
	logger         zerolog.Logger
	observer       Observer
}

// NewHandler creates a new WebSocket handler with dependency injection
func NewHandler(registry *Registry, sessionManager interfaces.SessionManager, renderer interfaces.Renderer, cfg config.WebSocketConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:       registry,
		sessionManager: sessionManager,
		renderer:       renderer,
		limiter:        NewRateLimiter(cfg.EventsPerMinute),
		cfg:            cfg,
		logger:         logger.With().Str("component", "websocket").Logger(),
	}
}

// SetObserver installs a lifecycle observer. Call before serving traffic.
func (h *Handler) SetObserver(o Observer) {
	h.observer = o
}

// HandleWebSocket resumes the session named by ?session_id= or, when the
// parameter is empty, starts a new one, then upgrades the connection.
// FUNCTIONAL DISCOVERY: Session problems are reported as plain HTTP errors
// before the upgrade so no socket is spent on a dead session
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")

	var (
		session *types.Session
		err     error
	)
	if sessionID == "" {
		session, err = h.sessionManager.CreateSession(ctx)
	} else {
		session, err = h.sessionManager.GetSession(ctx, sessionID)
		if err == nil && session.Status != types.SessionStatusActive {
			err = interfaces.ErrSessionEnded
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrSessionNotFound):
			http.Error(w, "Session not found", http.StatusNotFound)
		case errors.Is(err, interfaces.ErrSessionEnded):
			http.Error(w, "Session has ended", http.StatusGone)
		default:
			h.logger.Error().Err(err).Str("session_id", sessionID).Msg("session lookup failed")
			http.Error(w, "Session lookup failed", http.StatusInternalServerError)
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", session.ID).Msg("websocket upgrade failed")
		return
	}

	wsConn := NewConnection(conn, session.ID, h.cfg.BufferSize, h.cfg.WriteTimeout)
	if err := h.registry.RegisterConnection(wsConn); err != nil {
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to register connection")
		_ = wsConn.Close()
		return
	}
	if h.observer != nil {
		h.observer.ConnectionOpened()
	}

	h.logger.Info().Str("session_id", session.ID).Msg("websocket connected")

	if err := wsConn.WriteJSON(ServerFrame{Type: FrameSession, Session: session, Timestamp: time.Now()}); err != nil {
		h.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to send session frame")
	}

	go h.handleConnection(wsConn)
}

// CloseSession tells every connection of sessionID that it has ended and
// closes them. Returns the number of connections closed.
func (h *Handler) CloseSession(sessionID string) int {
	conns := h.registry.GetSessionConnections(sessionID)
	for _, c := range conns {
		_ = c.WriteJSON(errorFrame(interfaces.ErrSessionEnded))
		_ = c.Close()
	}
	return len(conns)
}

// CloseAll closes every open connection. Used on shutdown, since
// http.Server.Shutdown does not track hijacked connections.
func (h *Handler) CloseAll() {
	for _, c := range h.registry.AllConnections() {
		_ = c.Close()
	}
}

// handleConnection manages the connection lifecycle with heartbeat monitoring
// ARCHITECTURAL DISCOVERY: Single goroutine per connection reads and renders,
// so events from one socket are processed strictly in order
func (h *Handler) handleConnection(conn *Connection) {
	sessionID := conn.SessionID()
	log := h.logger.With().Str("session_id", sessionID).Logger()

	defer func() {
		h.registry.UnregisterConnection(conn)
		h.limiter.Prune()
		_ = conn.Close()
		if h.observer != nil {
			h.observer.ConnectionClosed()
		}
		log.Info().Msg("websocket disconnected")
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		log.Warn().Err(err).Msg("failed to set read deadline")
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	go h.pingLoop(conn)

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		frame, err := h.processFrame(sessionID, data)
		if werr := conn.WriteJSON(frame); werr != nil {
			log.Warn().Err(werr).Msg("failed to write frame")
			return
		}
		if errors.Is(err, interfaces.ErrSessionNotFound) || errors.Is(err, interfaces.ErrSessionEnded) {
			return
		}
	}
}

// processFrame decodes one client frame and renders it. The returned frame
// is always sent back; err is non-nil when the frame is an error frame.
func (h *Handler) processFrame(sessionID string, data []byte) (ServerFrame, error) {
	var in ClientFrame
	if err := json.Unmarshal(data, &in); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		return errorFrame(err), err
	}
	if in.Type != FrameEvent {
		err := fmt.Errorf("%w: %q", ErrUnsupportedFrame, in.Type)
		return errorFrame(err), err
	}
	if in.Event == nil {
		return errorFrame(ErrMissingEvent), ErrMissingEvent
	}

	if !h.limiter.Allow(sessionID) {
		if h.observer != nil {
			h.observer.RateLimited()
		}
		h.logger.Warn().Str("session_id", sessionID).Msg("event rate limit exceeded")
		return errorFrame(ErrRateLimited), ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ReadTimeout)
	defer cancel()

	out, err := h.sessionManager.Apply(ctx, sessionID, h.renderer.Bind(*in.Event))
	if err != nil {
		h.logger.Debug().Err(err).
			Str("session_id", sessionID).
			Str("topic", in.Event.Topic).
			Str("action", in.Event.Action).
			Msg("render rejected")
		return errorFrame(err), err
	}
	return ServerFrame{Type: FrameRender, Output: out, Timestamp: time.Now()}, nil
}

func (h *Handler) pingLoop(conn *Connection) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// WriteControl is safe alongside the writer goroutine
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				return
			}
		case <-conn.Done():
			return
		}
	}
}

func errorFrame(err error) ServerFrame {
	code := errorCode(err)
	msg := err.Error()
	if code == "internal" {
		msg = "internal error"
	}
	return ServerFrame{Type: FrameError, Error: msg, Code: code, Timestamp: time.Now()}
}

// errorCode gives clients a stable identifier for each failure class.
func errorCode(err error) string {
	switch {
	case errors.Is(err, types.ErrUnknownTopic):
		return "unknown_topic"
	case errors.Is(err, types.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, types.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, types.ErrUnknownOperation):
		return "unknown_operation"
	case errors.Is(err, interfaces.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, interfaces.ErrSessionEnded):
		return "session_ended"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrUnsupportedFrame), errors.Is(err, ErrMissingEvent):
		return "bad_frame"
	default:
		return "internal"
	}
}
