package interfaces

import "errors"

// Common interface errors used across components
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session has ended")
	ErrAlreadyEnded    = errors.New("session is already ended")
	ErrNoNotes         = errors.New("no notes found")
)
