package websocket

import (
	"time"

	"roadmap/pkg/types"
)

// Frame types
const (
	FrameEvent   = "event"   // client -> server
	FrameSession = "session" // server -> client, once after connecting
	FrameRender  = "render"  // server -> client, one per accepted event
	FrameError   = "error"   // server -> client
)

// ClientFrame is what the browser sends.
type ClientFrame struct {
	Type  string       `json:"type"`
	Event *types.Event `json:"event,omitempty"`
}

// ServerFrame is what the server sends. Exactly one of Session, Output or
// Error is set, matching Type.
type ServerFrame struct {
	Type      string         `json:"type"`
	Session   *types.Session `json:"session,omitempty"`
	Output    *types.Output  `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	Code      string         `json:"code,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
