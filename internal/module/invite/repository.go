package invite

import (
	"context"
	"errors"
	"time"

	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/shared/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AcceptParams describes one acceptance.
type AcceptParams struct {
	InviteID uuid.UUID
	UserID   uuid.UUID
	At       time.Time
	// AddMember is false when the accepting user already owns the board.
	AddMember bool
}

// Repository defines the interface for invite data access.
type Repository interface {
	// Create returns ErrTokenTaken or ErrPendingExists on the matching
	// unique violation.
	Create(ctx context.Context, invite *Invite) error
	GetByToken(ctx context.Context, token string) (*Invite, error)
	GetPending(ctx context.Context, boardID uuid.UUID, email string) (*Invite, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Invite, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	// Accept moves a pending invite to accepted and adds the member in one
	// transaction. It returns ErrAlreadyAccepted or ErrInviteExpired when
	// another request moved the invite first.
	Accept(ctx context.Context, p AcceptParams) (memberAdded bool, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new invite repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, invite *Invite) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(invite).Error
	switch {
	case database.IsUniqueViolation(err, tokenIndex):
		return ErrTokenTaken
	case database.IsUniqueViolation(err, pendingIndex):
		return ErrPendingExists
	}
	return err
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Invite, error) {
	var invite Invite
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

func (r *repository) GetPending(ctx context.Context, boardID uuid.UUID, email string) (*Invite, error) {
	var invite Invite
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND email = ? AND status = ?", boardID, email, StatusPending).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

func (r *repository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Invite, error) {
	var invites []*Invite
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *repository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Invite{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", StatusExpired).Error
}

func (r *repository) Accept(ctx context.Context, p AcceptParams) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite Invite
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", p.InviteID).
			First(&invite).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		switch invite.Status {
		case StatusAccepted:
			return ErrAlreadyAccepted
		case StatusExpired:
			return ErrInviteExpired
		}

		if p.AddMember {
			added, err = board.InsertMember(tx, invite.BoardID, p.UserID, invite.Role)
			if err != nil {
				return err
			}
		}

		return tx.Model(&Invite{}).
			Where("id = ?", invite.ID).
			Updates(map[string]any{
				"status":      StatusAccepted,
				"accepted_by": p.UserID,
				"accepted_at": p.At,
				"updated_at":  p.At,
			}).Error
	})
	return added, err
}
