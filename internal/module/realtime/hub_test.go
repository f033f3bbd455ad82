package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/flowspace/server/internal/shared/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestClient(id string, buffer int) *Client {
	return NewClient(id, uuid.New(), buffer)
}

// next waits briefly for the next frame queued for c.
func next(t *testing.T, c *Client) received {
	t.Helper()
	select {
	case b, ok := <-c.Outbound():
		require.True(t, ok, "outbound queue closed")
		var r received
		require.NoError(t, json.Unmarshal(b, &r))
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame for %s", c.ID())
		return received{}
	}
}

func assertQuiet(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b, ok := <-c.Outbound():
		if ok {
			t.Fatalf("unexpected frame for %s: %s", c.ID(), b)
		}
	default:
	}
}

func presenceOf(t *testing.T, r received) Presence {
	t.Helper()
	require.Equal(t, EventPresence, r.Event)
	var p Presence
	require.NoError(t, json.Unmarshal(r.Data, &p))
	return p
}

func TestHub_Join(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	boardID := uuid.New()
	alice, bob := newTestClient("alice", 8), newTestClient("bob", 8)
	hub.Register(alice)
	hub.Register(bob)

	require.True(t, hub.Join(alice, boardID))
	assertQuiet(t, alice)

	require.True(t, hub.Join(bob, boardID))
	p := presenceOf(t, next(t, alice))
	assert.Equal(t, Presence{ID: "bob", UserID: bob.UserID(), Event: PresenceJoin}, p)
	assertQuiet(t, bob)

	t.Run("second join is a no-op", func(t *testing.T) {
		assert.False(t, hub.Join(bob, boardID))
		assertQuiet(t, alice)
		assert.Equal(t, 2, hub.RoomSize(RoomName(boardID)))
	})
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	boardID := uuid.New()
	alice, bob := newTestClient("alice", 8), newTestClient("bob", 8)
	hub.Join(alice, boardID)
	hub.Join(bob, boardID)
	next(t, alice)

	assert.True(t, hub.Leave(bob, boardID))
	p := presenceOf(t, next(t, alice))
	assert.Equal(t, PresenceLeave, p.Event)
	assert.Equal(t, "bob", p.ID)

	assert.False(t, hub.Leave(bob, boardID))
	assertQuiet(t, alice)

	hub.Leave(alice, boardID)
	assert.Zero(t, hub.RoomSize(RoomName(boardID)))
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	boardID, otherBoard := uuid.New(), uuid.New()
	sender, peer, outsider := newTestClient("sender", 8), newTestClient("peer", 8), newTestClient("outsider", 8)
	hub.Join(peer, boardID)
	hub.Join(sender, boardID)
	hub.Join(outsider, otherBoard)
	next(t, peer)

	t.Run("excludes the sender", func(t *testing.T) {
		require.NoError(t, hub.Broadcast(RoomName(boardID), EventCardDelete, map[string]string{"id": "c1"}, "sender"))

		r := next(t, peer)
		assert.Equal(t, EventCardDelete, r.Event)
		assert.JSONEq(t, `{"id":"c1"}`, string(r.Data))
		assertQuiet(t, sender)
		assertQuiet(t, outsider)
	})

	t.Run("keeps acceptance order", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, hub.Broadcast(RoomName(boardID), "tick", i, ""))
		}
		for i := 0; i < 5; i++ {
			r := next(t, peer)
			assert.JSONEq(t, string(rune('0'+i)), string(r.Data))
			next(t, sender)
		}
	})
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	boardID := uuid.New()
	slow, fast := newTestClient("slow", 1), newTestClient("fast", 8)
	hub.Register(slow)
	hub.Register(fast)
	hub.Join(slow, boardID)
	hub.Join(fast, boardID)
	// slow's single slot now holds fast's join presence.

	require.NoError(t, hub.Broadcast(RoomName(boardID), "tick", 1, ""))

	assert.Equal(t, 1, hub.RoomSize(RoomName(boardID)))
	assert.Equal(t, 1, hub.ClientCount())

	assert.Equal(t, "tick", next(t, fast).Event)
	p := presenceOf(t, next(t, fast))
	assert.Equal(t, PresenceLeave, p.Event)
	assert.Equal(t, "slow", p.ID)

	presenceOf(t, next(t, slow))
	_, ok := <-slow.Outbound()
	assert.False(t, ok, "dropped client queue is closed")
}

func TestHub_Disconnect(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	b1, b2 := uuid.New(), uuid.New()
	alice, bob := newTestClient("alice", 8), newTestClient("bob", 8)
	hub.Register(alice)
	hub.Register(bob)
	hub.Join(alice, b1)
	hub.Join(alice, b2)
	hub.Join(bob, b1)
	next(t, alice)

	hub.Disconnect(alice)
	hub.Disconnect(alice)

	p := presenceOf(t, next(t, bob))
	assert.Equal(t, Presence{ID: "alice", UserID: alice.UserID(), Event: PresenceLeave}, p)
	assertQuiet(t, bob)

	_, ok := <-alice.Outbound()
	assert.False(t, ok)
	assert.False(t, hub.Join(alice, b1))
	assert.ErrorIs(t, hub.Send(alice, EventError, ErrorPayload{}), errClientClosed)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Zero(t, hub.RoomSize(RoomName(b2)))
}

func TestHub_HandleRoomEvent(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	bus := events.NewBus(zap.NewNop())
	bus.Register(hub)

	boardID, cardID := uuid.New(), uuid.New()
	origin, peer := newTestClient("origin", 8), newTestClient("peer", 8)
	hub.Join(peer, boardID)
	hub.Join(origin, boardID)
	next(t, peer)

	bus.Publish(events.NewCardDeletedEvent(boardID, cardID, "origin"))
	r := next(t, peer)
	assert.Equal(t, events.CardDeletedType, r.Event)
	assert.JSONEq(t, `{"id":"`+cardID.String()+`"}`, string(r.Data))
	assertQuiet(t, origin)

	t.Run("http mutations reach everyone", func(t *testing.T) {
		bus.Publish(events.NewMemberJoinedEvent(boardID, uuid.New()))
		assert.Equal(t, events.MemberJoinedType, next(t, peer).Event)
		assert.Equal(t, events.MemberJoinedType, next(t, origin).Event)
	})
}

func TestParseBoardID(t *testing.T) {
	id := uuid.New()

	got, err := parseBoardID(json.RawMessage(`"` + id.String() + `"`))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = parseBoardID(json.RawMessage(`{"boardId":"` + id.String() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseBoardID(json.RawMessage(`"nope"`))
	assert.ErrorIs(t, err, errInvalidBoardID)
	_, err = parseBoardID(json.RawMessage(`42`))
	assert.ErrorIs(t, err, errInvalidPayload)
}
