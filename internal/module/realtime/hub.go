package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/flowspace/server/internal/shared/events"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is one room broadcast as it travels through a Backplane.
type Envelope struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Exclude string          `json:"exclude,omitempty"`
	Frame   json.RawMessage `json:"frame"`
}

// Backplane fans room broadcasts out across server instances. Publish must
// not block; Run delivers every envelope, including the instance's own, in
// the order the backplane accepted them. Publish returns false when it
// cannot accept env, and the hub then delivers env to local clients only.
type Backplane interface {
	Publish(env Envelope) bool
	Run(ctx context.Context, deliver func(Envelope)) error
}

// Hub is the room registry. Joins, leaves and broadcast enqueues all take
// the write lock, so a membership change and its presence event are atomic
// and every room sees broadcasts in one total order.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}

	backplane Backplane
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHub creates a hub. With a nil backplane, delivery is in-process.
func NewHub(backplane Backplane, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:     make(map[string]map[*Client]struct{}),
		clients:   make(map[*Client]struct{}),
		backplane: backplane,
		metrics:   m,
		logger:    logger,
	}
}

// Run drives the backplane until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	if h.backplane == nil {
		<-ctx.Done()
		return nil
	}
	return h.backplane.Run(ctx, h.deliver)
}

// Register tracks a new connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Join adds c to the board's room and tells the other members. It reports
// false when c was already in the room or is closed.
func (h *Hub) Join(c *Client, boardID uuid.UUID) bool {
	room := RoomName(boardID)

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return false
	}
	if _, ok := c.rooms[room]; ok {
		return false
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}

	h.presenceLocked(room, c, PresenceJoin)
	return true
}

// Leave removes c from the board's room. Leaving a room c is not in is a
// no-op and reports false.
func (h *Hub) Leave(c *Client, boardID uuid.UUID) bool {
	room := RoomName(boardID)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[room]; !ok {
		return false
	}
	h.leaveLocked(c, room)
	return true
}

// Disconnect leaves every room c joined and closes its outbound queue. It
// is safe to call more than once.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnectLocked(c)
}

// Broadcast sends event to every client in room except the connection
// exclude.
func (h *Hub) Broadcast(room, event string, payload any, exclude string) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcastLocked(Envelope{Room: room, Event: event, Exclude: exclude, Frame: frame})
	return nil
}

// Send queues event for c alone. Acknowledgments and errors use it.
func (h *Hub) Send(c *Client, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return errClientClosed
	}
	if !h.enqueueLocked(c, frame) {
		h.drop(c)
		return errClientClosed
	}
	return nil
}

// RoomSize returns the number of local clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handles implements events.Handler.
func (h *Hub) Handles() []string {
	return events.RoomTypes
}

// Handle fans a service event out to its board's room.
func (h *Hub) Handle(e events.Event) error {
	re, ok := e.(*events.RoomEvent)
	if !ok {
		return nil
	}
	return h.Broadcast(RoomName(re.BoardID), re.Type, re.Body, re.Origin)
}

// deliver applies an envelope that came back from the backplane.
func (h *Hub) deliver(env Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliverLocked(env)
}

func (h *Hub) broadcastLocked(env Envelope) {
	h.metrics.RecordBroadcast(env.Event)
	if h.backplane != nil && h.backplane.Publish(env) {
		return
	}
	h.deliverLocked(env)
}

func (h *Hub) deliverLocked(env Envelope) {
	var dropped []*Client
	for c := range h.rooms[env.Room] {
		if c.id == env.Exclude || c.closed {
			continue
		}
		if !h.enqueueLocked(c, env.Frame) {
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		h.drop(c)
	}
}

func (h *Hub) enqueueLocked(c *Client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	h.logger.Warn("outbound queue full, dropping client",
		zap.String("conn_id", c.id),
		zap.String("user_id", c.userID.String()),
	)
	h.disconnectLocked(c)
}

func (h *Hub) disconnectLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.presenceLocked(room, c, PresenceLeave)
}

func (h *Hub) presenceLocked(room string, c *Client, action string) {
	frame, err := encodeFrame(EventPresence, Presence{ID: c.id, UserID: c.userID, Event: action})
	if err != nil {
		h.logger.Error("encode presence", zap.Error(err))
		return
	}
	h.broadcastLocked(Envelope{Room: room, Event: EventPresence, Exclude: c.id, Frame: frame})
}

var _ events.Handler = (*Hub)(nil)
