package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides note business logic.
type Service struct {
	repo      Repository
	gate      access.Authorizer
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new note service.
func NewService(repo Repository, gate access.Authorizer, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the board's note, or an empty note when none was written.
func (s *Service) Get(ctx context.Context, boardID uuid.UUID) (*Note, error) {
	note, err := s.repo.GetByBoard(ctx, boardID)
	if errors.Is(err, ErrNoteNotFound) {
		return &Note{BoardID: boardID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// Update overwrites the board's note after checking that userID is at
// least editor. The stored note is published to the room, excluding origin
// (empty for HTTP callers). Concurrent updates are last write wins.
func (s *Service) Update(ctx context.Context, boardID, userID uuid.UUID, content, origin string) (*Note, error) {
	if _, err := s.gate.RequireMinRole(ctx, boardID, userID, access.RoleEditor); err != nil {
		return nil, err
	}

	updatedBy := userID
	note := &Note{
		ID:        uuid.New(),
		BoardID:   boardID,
		Content:   content,
		UpdatedBy: &updatedBy,
		UpdatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, note); err != nil {
		return nil, fmt.Errorf("upsert note: %w", err)
	}

	s.publisher.Publish(events.NewRoomEvent(events.NoteUpdatedType, boardID, note, origin))
	return note, nil
}
