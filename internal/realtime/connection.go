package realtime

import (
	"time"

	"github.com/synergysphere/realtime/internal/auth"
)

const sendBufferSize = 256

// Connection is the process-local handle for one live websocket session.
// The identity is bound at handshake time and never changes. The transport
// layer drains Send; anything pushed onto it must be JSON-serializable.
type Connection struct {
	Id         string
	Identity   auth.Identity
	CreateTime time.Time
	Send       chan any
}

func newConnection(id string, identity auth.Identity) *Connection {
	return &Connection{
		Id:         id,
		Identity:   identity,
		CreateTime: time.Now(),
		Send:       make(chan any, sendBufferSize),
	}
}
