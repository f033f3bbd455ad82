package board

import (
	"context"
	"errors"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for board data access.
type Repository interface {
	access.Directory

	Create(ctx context.Context, board *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	Update(ctx context.Context, board *Board) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListMembers(ctx context.Context, boardID uuid.UUID) ([]*Member, error)
	// SetMemberRole inserts or updates a member. created reports an insert.
	SetMemberRole(ctx context.Context, boardID, userID uuid.UUID, role access.Role) (created bool, err error)
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
}

// repository implements Repository using GORM.
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new board repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, board *Board) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(board).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Board, error) {
	var board Board
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Board, error) {
	var boards []*Board
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("owner_id = ?", userID).
		Or("id IN (?)", r.db.Model(&Member{}).Select("board_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *repository) Update(ctx context.Context, board *Board) error {
	return r.db.WithContext(ctx).
		Model(board).
		Select("title", "description", "updated_at").
		Updates(board).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Board{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func (r *repository) BoardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error) {
	var board Board
	err := r.db.WithContext(ctx).Select("owner_id").Where("id = ?", boardID).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrBoardNotFound
		}
		return uuid.Nil, err
	}
	return board.OwnerID, nil
}

func (r *repository) MemberRole(ctx context.Context, boardID, userID uuid.UUID) (access.Role, error) {
	var member Member
	err := r.db.WithContext(ctx).
		Select("role").
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.RoleNone, nil
		}
		return access.RoleNone, err
	}
	return member.Role, nil
}

func (r *repository) ListMembers(ctx context.Context, boardID uuid.UUID) ([]*Member, error) {
	var members []*Member
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) SetMemberRole(ctx context.Context, boardID, userID uuid.UUID, role access.Role) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Member{}).
			Where("board_id = ? AND user_id = ?", boardID, userID).
			Update("role", role)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		var err error
		created, err = InsertMember(tx, boardID, userID, role)
		return err
	})
	return created, err
}

func (r *repository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// InsertMember appends userID to the board's member list unless an entry
// already exists, in which case the existing role is kept. It runs on tx so
// callers can make it part of a larger transaction.
func InsertMember(tx *gorm.DB, boardID, userID uuid.UUID, role access.Role) (bool, error) {
	result := tx.Model(&Member{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "board_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(map[string]any{
			"id":         uuid.New(),
			"board_id":   boardID,
			"user_id":    userID,
			"role":       role,
			"position":   gorm.Expr("(SELECT COALESCE(MAX(position) + 1, 0) FROM board_members WHERE board_id = ?)", boardID),
			"created_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
