package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/card"
	"github.com/flowspace/server/internal/module/note"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/flowspace/server/internal/utils/requestctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventTimeout = 10 * time.Second

// CardDeleter deletes a card and publishes card:delete excluding origin.
type CardDeleter interface {
	Delete(ctx context.Context, cardID, userID uuid.UUID, origin string) (*card.Card, error)
}

// NoteUpdater upserts a board note and publishes note:update excluding
// origin.
type NoteUpdater interface {
	Update(ctx context.Context, boardID, userID uuid.UUID, content, origin string) (*note.Note, error)
}

// Router handles inbound socket events. Mutations go through the card and
// note services, whose room events reach the hub through the event bus;
// the router only answers the sender.
type Router struct {
	hub     *Hub
	gate    access.Authorizer
	cards   CardDeleter
	notes   NoteUpdater
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRouter creates a Router.
func NewRouter(hub *Hub, gate access.Authorizer, cards CardDeleter, notes NoteUpdater, m *metrics.Metrics, logger *zap.Logger) *Router {
	return &Router{
		hub:     hub,
		gate:    gate,
		cards:   cards,
		notes:   notes,
		metrics: m,
		logger:  logger,
	}
}

// Dispatch handles one frame from c. Failures are reported to c only.
func (r *Router) Dispatch(ctx context.Context, c *Client, f Frame) {
	ctx, cancel := context.WithTimeout(requestctx.WithConnID(ctx, c.ID()), eventTimeout)
	defer cancel()

	var (
		err      error
		fallback string
		label    = f.Event
	)
	switch f.Event {
	case EventJoinBoard:
		err, fallback = r.joinBoard(ctx, c, f.Data), "Failed to join board"
	case EventLeaveBoard:
		err, fallback = r.leaveBoard(c, f.Data), "Failed to leave board"
	case EventCardDelete:
		err, fallback = r.deleteCard(ctx, c, f.Data), "Failed to delete card"
	case EventNoteUpdate:
		err, fallback = r.updateNote(ctx, c, f.Data), "Failed to update note"
	default:
		err, label = errUnknownEvent, "unknown"
	}

	r.metrics.RecordWSEvent(label, err)
	if err == nil {
		return
	}

	if !errors.Is(err, errUnknownEvent) && messageFor(err, "") == "" {
		r.logger.Error("socket event failed",
			zap.String("event", f.Event),
			zap.String("conn_id", c.ID()),
			zap.String("user_id", c.UserID().String()),
			zap.Error(err),
		)
	}
	if sendErr := r.hub.Send(c, EventError, ErrorPayload{Message: messageFor(err, fallback)}); sendErr != nil {
		r.logger.Debug("error frame not delivered", zap.String("conn_id", c.ID()), zap.Error(sendErr))
	}
}

func (r *Router) joinBoard(ctx context.Context, c *Client, data json.RawMessage) error {
	boardID, err := parseBoardID(data)
	if err != nil {
		return err
	}
	if _, err := r.gate.RequireMinRole(ctx, boardID, c.UserID(), access.RoleViewer); err != nil {
		return err
	}
	if r.hub.Join(c, boardID) {
		r.logger.Debug("joined board room",
			zap.String("conn_id", c.ID()),
			zap.String("board_id", boardID.String()),
		)
	}
	return nil
}

func (r *Router) leaveBoard(c *Client, data json.RawMessage) error {
	boardID, err := parseBoardID(data)
	if err != nil {
		return err
	}
	r.hub.Leave(c, boardID)
	return nil
}

func (r *Router) deleteCard(ctx context.Context, c *Client, data json.RawMessage) error {
	var payload CardDeletePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	cardID, err := uuid.Parse(payload.ID)
	if err != nil {
		return errInvalidCardID
	}

	deleted, err := r.cards.Delete(ctx, cardID, c.UserID(), c.ID())
	if err != nil {
		return err
	}
	return r.ack(c, EventCardDeleteOK, CardDeletePayload{ID: deleted.ID.String()})
}

func (r *Router) updateNote(ctx context.Context, c *Client, data json.RawMessage) error {
	var payload NoteUpdatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	boardID, err := uuid.Parse(payload.BoardID)
	if err != nil {
		return errInvalidBoardID
	}
	if payload.Content == nil {
		return errMissingContent
	}

	saved, err := r.notes.Update(ctx, boardID, c.UserID(), *payload.Content, c.ID())
	if err != nil {
		return err
	}
	return r.ack(c, EventNoteUpdateOK, saved)
}

// ack failures mean the sender is gone; the mutation itself succeeded.
func (r *Router) ack(c *Client, event string, payload any) error {
	if err := r.hub.Send(c, event, payload); err != nil {
		r.logger.Debug("ack not delivered",
			zap.String("event", event),
			zap.String("conn_id", c.ID()),
			zap.Error(err),
		)
	}
	return nil
}
