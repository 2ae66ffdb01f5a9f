package websocket

import "errors"

// Connection-related errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrWriteTimeout     = errors.New("write timeout")
	ErrInvalidJSON      = errors.New("invalid JSON data")
)

// Registry-related errors
var (
	ErrNilConnection = errors.New("connection cannot be nil")
	ErrNoSession     = errors.New("connection has no session")
)

// Handler-related errors
var (
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrUnsupportedFrame = errors.New("unsupported frame type")
	ErrMissingEvent     = errors.New("event frame without event")
)
