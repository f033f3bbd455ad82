package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	boardID := uuid.New()

	var order []string
	bus.Register(NewHandlerFunc([]string{CardDeletedType}, func(e Event) error {
		order = append(order, "first")
		return errors.New("boom")
	}))
	bus.Register(NewHandlerFunc([]string{CardDeletedType, NoteUpdatedType}, func(e Event) error {
		order = append(order, "second:"+e.EventType())
		return nil
	}))

	t.Run("handlers run in order and failures are isolated", func(t *testing.T) {
		order = nil
		bus.Publish(NewCardDeletedEvent(boardID, uuid.New(), "conn-1"))
		assert.Equal(t, []string{"first", "second:card:delete"}, order)
	})

	t.Run("routes by type", func(t *testing.T) {
		order = nil
		bus.Publish(NewRoomEvent(NoteUpdatedType, boardID, nil, ""))
		assert.Equal(t, []string{"second:note:update"}, order)
	})

	t.Run("no handlers", func(t *testing.T) {
		order = nil
		bus.Publish(NewMemberJoinedEvent(boardID, uuid.New()))
		assert.Empty(t, order)
	})
}

func TestNewMemberJoinedEvent(t *testing.T) {
	boardID, userID := uuid.New(), uuid.New()
	e := NewMemberJoinedEvent(boardID, userID)

	assert.Equal(t, MemberJoinedType, e.EventType())
	assert.Equal(t, boardID, e.AggregateID())
	assert.Empty(t, e.Origin)
	assert.Equal(t, MemberJoined{BoardID: boardID, UserID: userID}, e.Body)
	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.False(t, e.OccurredAt().IsZero())
}
