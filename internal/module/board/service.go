package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides board business logic. Authorization happens before a
// call reaches it (see access.RequireBoardRole).
type Service struct {
	repo      Repository
	users     user.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates a new board service.
func NewService(repo Repository, users user.Repository, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a board owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateBoardRequest) (*Board, error) {
	board := &Board{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.logger.Info("board created",
		zap.String("board_id", board.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return board, nil
}

// Get returns a board with its members.
func (s *Service) Get(ctx context.Context, boardID uuid.UUID) (*Board, error) {
	return s.repo.GetByID(ctx, boardID)
}

// ListForUser returns the boards userID owns or belongs to, each with the
// caller's role.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Response, error) {
	boards, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	out := make([]*Response, 0, len(boards))
	for _, b := range boards {
		out = append(out, b.ToResponse(access.ResolveRole(b.Subject(), userID)))
	}
	return out, nil
}

// Update applies the non-nil fields of req.
func (s *Service) Update(ctx context.Context, boardID uuid.UUID, req *UpdateBoardRequest) (*Board, error) {
	board, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		board.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		board.Description = *req.Description
	}

	if err := s.repo.Update(ctx, board); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return board, nil
}

// Delete removes a board. Cards, notes, members and invites go with it.
func (s *Service) Delete(ctx context.Context, boardID uuid.UUID) error {
	if err := s.repo.Delete(ctx, boardID); err != nil {
		return err
	}
	s.logger.Info("board deleted", zap.String("board_id", boardID.String()))
	return nil
}

// ListMembers returns the owner followed by the members in position order.
func (s *Service) ListMembers(ctx context.Context, boardID uuid.UUID) ([]*MemberResponse, error) {
	board, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(board.Members)+1)
	ids = append(ids, board.OwnerID)
	for _, m := range board.Members {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}

	out := make([]*MemberResponse, 0, len(ids))
	owner := users[board.OwnerID].ToSummary()
	out = append(out, &MemberResponse{
		UserID:   board.OwnerID,
		Name:     owner.Name,
		Email:    owner.Email,
		Role:     access.RoleOwner,
		Position: -1,
	})
	for _, m := range board.Members {
		if m.UserID == board.OwnerID {
			continue
		}
		u := users[m.UserID].ToSummary()
		out = append(out, &MemberResponse{
			UserID:   m.UserID,
			Name:     u.Name,
			Email:    u.Email,
			Role:     m.Role,
			Position: m.Position,
		})
	}
	return out, nil
}

// SetMemberRole grants userID role on the board, adding them when needed.
// A newly added member is announced to the room.
func (s *Service) SetMemberRole(ctx context.Context, boardID, userID uuid.UUID, role access.Role) error {
	if !role.IsValid() {
		return access.ErrInvalidRole
	}
	ownerID, err := s.repo.BoardOwner(ctx, boardID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return ErrCannotModifyOwner
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	created, err := s.repo.SetMemberRole(ctx, boardID, userID, role)
	if err != nil {
		return fmt.Errorf("set member role: %w", err)
	}

	s.logger.Info("member role set",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()),
		zap.Stringer("role", role),
		zap.Bool("created", created),
	)
	if created {
		s.publisher.Publish(events.NewMemberJoinedEvent(boardID, userID))
	}
	return nil
}

// RemoveMember removes userID from the board. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	ownerID, err := s.repo.BoardOwner(ctx, boardID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return ErrCannotModifyOwner
	}
	return s.repo.RemoveMember(ctx, boardID, userID)
}
