package realtime

import (
	"github.com/google/uuid"
)

const defaultSendBuffer = 64

// Client is one authenticated socket connection as the hub sees it. The
// fields below the queue are guarded by the owning Hub's lock.
type Client struct {
	id     string
	userID uuid.UUID
	send   chan []byte

	rooms  map[string]struct{}
	closed bool
}

// NewClient creates a client whose outbound queue holds buffer frames.
func NewClient(id string, userID uuid.UUID, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{
		id:     id,
		userID: userID,
		send:   make(chan []byte, buffer),
		rooms:  make(map[string]struct{}),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// UserID returns the authenticated user.
func (c *Client) UserID() uuid.UUID { return c.userID }

// Outbound returns the queue drained by the connection writer. It is closed
// when the hub disconnects the client.
func (c *Client) Outbound() <-chan []byte { return c.send }
