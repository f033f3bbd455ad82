package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Socket event names. Room events published by services reuse the names in
// the events package.
const (
	EventJoinBoard    = "joinBoard"
	EventLeaveBoard   = "leaveBoard"
	EventPresence     = "presence:update"
	EventCardDelete   = "card:delete"
	EventCardDeleteOK = "card:delete:ok"
	EventNoteUpdate   = "note:update"
	EventNoteUpdateOK = "note:update:ok"
	EventError        = "error"
)

// Presence actions.
const (
	PresenceJoin  = "join"
	PresenceLeave = "leave"
)

// RoomName returns the room of a board.
func RoomName(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	b, err := json.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return b, nil
}

// Presence is the payload of presence:update. ID is the connection id.
type Presence struct {
	ID     string    `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Event  string    `json:"event"`
}

// CardDeletePayload is sent by clients with card:delete.
type CardDeletePayload struct {
	ID string `json:"id"`
}

// NoteUpdatePayload is sent by clients with note:update. UpdatedBy is
// accepted for compatibility and ignored.
type NoteUpdatePayload struct {
	BoardID   string  `json:"boardId"`
	Content   *string `json:"content"`
	UpdatedBy string  `json:"updatedBy,omitempty"`
}

// ErrorPayload is sent to a single connection when one of its events fails.
type ErrorPayload struct {
	Message string `json:"message"`
}

// parseBoardID accepts joinBoard/leaveBoard data as either a bare string or
// an object with a boardId field.
func parseBoardID(data json.RawMessage) (uuid.UUID, error) {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var obj struct {
			BoardID string `json:"boardId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return uuid.Nil, errInvalidPayload
		}
		raw = obj.BoardID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidBoardID
	}
	return id, nil
}
