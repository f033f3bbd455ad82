package card

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for card data access.
type Repository interface {
	Create(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Card, error)
	// NextPosition returns a position after every card in the column.
	NextPosition(ctx context.Context, boardID uuid.UUID, column string) (float64, error)
	Update(ctx context.Context, card *Card) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new card repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, card *Card) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(card).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Card, error) {
	var card Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Card, error) {
	var cards []*Card
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("lane ASC").
		Order("position ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) NextPosition(ctx context.Context, boardID uuid.UUID, column string) (float64, error) {
	var next float64
	err := r.db.WithContext(ctx).
		Model(&Card{}).
		Select("COALESCE(MAX(position) + 1, 0)").
		Where("board_id = ? AND lane = ?", boardID, column).
		Scan(&next).Error
	return next, err
}

func (r *repository) Update(ctx context.Context, card *Card) error {
	return r.db.WithContext(ctx).
		Model(card).
		Omit(clause.Associations).
		Select("title", "description", "lane", "position", "labels", "updated_at").
		Updates(card).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Card{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}
