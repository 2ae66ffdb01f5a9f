package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection wraps one websocket bound to one session
// ARCHITECTURAL DISCOVERY: WebSocket writes must be serialized to prevent race conditions
type Connection struct {
	conn         *websocket.Conn
	writeCh      chan []byte
	writerDone   chan struct{}
	sessionID    string
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// NewConnection starts the writer goroutine for conn. bufferSize frames may
// be queued before WriteJSON starts waiting.
func NewConnection(conn *websocket.Conn, sessionID string, bufferSize int, writeTimeout time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		writeCh:      make(chan []byte, bufferSize),
		writerDone:   make(chan struct{}),
		sessionID:    sessionID,
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()

	return c
}

// ARCHITECTURAL DISCOVERY: Single writer goroutine pattern eliminates races.
// writeCh is never closed; cancelling ctx stops the loop after it flushes
// whatever was already queued, so a final error frame still reaches the client
func (c *Connection) writeLoop() {
	defer close(c.writerDone)

	for {
		select {
		case data := <-c.writeCh:
			if err := c.write(data, time.Now().Add(c.writeTimeout)); err != nil {
				c.cancel()
				_ = c.conn.Close()
				return
			}
		case <-c.ctx.Done():
			deadline := time.Now().Add(c.writeTimeout)
			for {
				select {
				case data := <-c.writeCh:
					if err := c.write(data, deadline); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *Connection) write(data []byte, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WriteJSON queues v for the writer goroutine.
func (c *Connection) WriteJSON(v any) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	timer := time.NewTimer(c.writeTimeout)
	defer timer.Stop()

	select {
	case c.writeCh <- data:
		return nil
	case <-timer.C:
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close flushes queued frames, stops the writer and closes the socket.
// Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.writerDone
		err = c.conn.Close()
	})
	return err
}

// SessionID returns the session this connection renders for.
func (c *Connection) SessionID() string {
	return c.sessionID
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}
