package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides card business logic. Every successful mutation
// publishes exactly one room event carrying the canonical card.
type Service struct {
	repo      Repository
	gate      access.Authorizer
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates a new card service.
func NewService(repo Repository, gate access.Authorizer, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns the board's cards ordered by column and position.
func (s *Service) List(ctx context.Context, boardID uuid.UUID) ([]*Card, error) {
	cards, err := s.repo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// Create adds a card to the board. The caller must already be authorized
// as editor on boardID.
func (s *Service) Create(ctx context.Context, boardID, userID uuid.UUID, req *CreateCardRequest) (*Card, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrBlankTitle
	}
	column := strings.TrimSpace(req.Column)
	if column == "" {
		column = DefaultColumn
	}

	card := &Card{
		ID:          uuid.New(),
		BoardID:     boardID,
		Title:       title,
		Description: req.Description,
		Column:      column,
		Labels:      req.Labels,
		CreatedBy:   userID,
	}
	if card.Labels == nil {
		card.Labels = []string{}
	}

	if req.Position != nil {
		card.Position = *req.Position
	} else {
		pos, err := s.repo.NextPosition(ctx, boardID, column)
		if err != nil {
			return nil, fmt.Errorf("next position: %w", err)
		}
		card.Position = pos
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.publisher.Publish(events.NewRoomEvent(events.CardCreatedType, boardID, card, ""))
	return card, nil
}

// Update applies the non-nil fields of req after checking that userID is
// at least editor on the card's board.
func (s *Service) Update(ctx context.Context, cardID, userID uuid.UUID, req *UpdateCardRequest) (*Card, error) {
	var title, column string
	if req.Title != nil {
		if title = strings.TrimSpace(*req.Title); title == "" {
			return nil, ErrBlankTitle
		}
	}
	if req.Column != nil {
		if column = strings.TrimSpace(*req.Column); column == "" {
			return nil, ErrBlankColumn
		}
	}

	card, err := s.load(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		card.Title = title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.Column != nil {
		card.Column = column
	}
	if req.Position != nil {
		card.Position = *req.Position
	}
	if req.Labels != nil {
		card.Labels = *req.Labels
	}

	if err := s.repo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.publisher.Publish(events.NewRoomEvent(events.CardUpdatedType, card.BoardID, card, ""))
	return card, nil
}

// Delete removes a card after checking that userID is at least editor on
// its board. origin is the socket connection that asked for the delete, or
// empty for HTTP callers; it is excluded from the room broadcast.
func (s *Service) Delete(ctx context.Context, cardID, userID uuid.UUID, origin string) (*Card, error) {
	card, err := s.load(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, card.ID); err != nil {
		return nil, err
	}

	s.logger.Debug("card deleted",
		zap.String("card_id", card.ID.String()),
		zap.String("board_id", card.BoardID.String()),
		zap.String("origin", origin),
	)
	s.publisher.Publish(events.NewCardDeletedEvent(card.BoardID, card.ID, origin))
	return card, nil
}

func (s *Service) load(ctx context.Context, cardID, userID uuid.UUID) (*Card, error) {
	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.RequireMinRole(ctx, card.BoardID, userID, access.RoleEditor); err != nil {
		return nil, err
	}
	return card, nil
}
