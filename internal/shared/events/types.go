package events

import "github.com/google/uuid"

// Event types. They double as the event names sent to realtime clients.
const (
	MemberJoinedType = "board:member-joined"
	CardCreatedType  = "card:create"
	CardUpdatedType  = "card:update"
	CardDeletedType  = "card:delete"
	NoteUpdatedType  = "note:update"
)

// RoomTypes lists every event type fanned out to a board room.
var RoomTypes = []string{
	MemberJoinedType,
	CardCreatedType,
	CardUpdatedType,
	CardDeletedType,
	NoteUpdatedType,
}

// RoomEvent is a board mutation that must reach the board's realtime room.
type RoomEvent struct {
	BaseEvent

	// Body is the canonical post-mutation payload.
	Body any

	// Origin is the connection that caused the mutation. It is excluded from
	// the broadcast and receives its own acknowledgment instead. Empty for
	// mutations made over HTTP.
	Origin string
}

// NewRoomEvent creates a RoomEvent.
func NewRoomEvent(eventType string, boardID uuid.UUID, body any, origin string) *RoomEvent {
	return &RoomEvent{
		BaseEvent: NewBaseEvent(eventType, boardID),
		Body:      body,
		Origin:    origin,
	}
}

// MemberJoined is the payload of board:member-joined.
type MemberJoined struct {
	BoardID uuid.UUID `json:"boardId"`
	UserID  uuid.UUID `json:"userId"`
}

// NewMemberJoinedEvent is published when an invite acceptance is committed.
func NewMemberJoinedEvent(boardID, userID uuid.UUID) *RoomEvent {
	return NewRoomEvent(MemberJoinedType, boardID, MemberJoined{BoardID: boardID, UserID: userID}, "")
}

// CardDeleted is the payload of card:delete.
type CardDeleted struct {
	ID uuid.UUID `json:"id"`
}

// NewCardDeletedEvent is published after a card row is removed.
func NewCardDeletedEvent(boardID, cardID uuid.UUID, origin string) *RoomEvent {
	return NewRoomEvent(CardDeletedType, boardID, CardDeleted{ID: cardID}, origin)
}
