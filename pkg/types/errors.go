package types

import "errors"

// ARCHITECTURAL DISCOVERY: Specific error types let the transport layer pick
// a status code without string matching
var (
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrUnknownAction    = errors.New("unknown action for topic")
	ErrOutOfRange       = errors.New("input outside widget range")
	ErrUnknownOperation = errors.New("operation must be Add, Subtract, Multiply or Divide")
)
