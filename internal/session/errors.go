package session

import (
	"errors"

	"roadmap/pkg/interfaces"
)

// Session management errors
var (
	ErrSessionNotFound     = interfaces.ErrSessionNotFound
	ErrSessionEnded        = interfaces.ErrSessionEnded
	ErrSessionAlreadyEnded = interfaces.ErrAlreadyEnded
	ErrNilRender           = errors.New("render produced no output")
)
