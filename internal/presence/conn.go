package presence

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn binds one live websocket to one user identity. Outbound pushes go
// through a bounded queue; a full queue means the push is dropped, not
// blocked on.
type Conn struct {
	userID uuid.UUID
	ws     *websocket.Conn
	out    chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps an accepted websocket for the given user. ws may be nil in
// tests that only exercise the queue.
func NewConn(userID uuid.UUID, ws *websocket.Conn, queueSize int) *Conn {
	return &Conn{
		userID: userID,
		ws:     ws,
		out:    make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
}

// UserID returns the identity this connection belongs to.
func (c *Conn) UserID() uuid.UUID {
	return c.userID
}

// Enqueue offers a payload to the outbound queue without blocking. It
// reports false when the queue is full or the connection is closed.
func (c *Conn) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

// Outbound exposes the queue for transport pumps and tests.
func (c *Conn) Outbound() <-chan []byte {
	return c.out
}

// WritePump drains the outbound queue onto the websocket until the
// connection closes or a write fails. Runs in its own goroutine.
func (c *Conn) WritePump(writeTimeout time.Duration) {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes and discards inbound frames until the peer disconnects.
// Blocks the caller; returning means the connection is gone.
func (c *Conn) ReadPump() {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Close tears the connection down. Safe to call multiple times and
// concurrently with Enqueue.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}
