package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single delivery attempt. A subscriber that cannot drain
// its socket within this window fails the send and is dropped by the
// Registry instead of stalling the broadcast pass.
var writeWait = 10 * time.Second

// Connection is one subscriber's live channel to the server. The Registry
// exclusively owns membership for the connection's lifetime; sessions hold
// only a temporary reference for their own read loop.
type Connection interface {
	// Send delivers one serialized event payload to the subscriber.
	// Returns an error on transport failure, which the Registry treats as
	// the connection being dead.
	Send(payload []byte) error

	// Close tears down the underlying transport. Safe to call more than once.
	Close() error
}

// gorillaConnection adapts a *websocket.Conn to the Connection interface.
// Gorilla permits at most one concurrent writer per connection, so sends are
// serialized with a mutex: broadcasts from different mutations may otherwise
// interleave on the same socket.
type gorillaConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewGorillaConnection wraps an upgraded websocket connection for use with
// the Registry.
func NewGorillaConnection(conn *websocket.Conn) Connection {
	return &gorillaConnection{conn: conn}
}

func (c *gorillaConnection) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *gorillaConnection) Close() error {
	return c.conn.Close()
}
