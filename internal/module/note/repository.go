package note

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for note data access.
type Repository interface {
	GetByBoard(ctx context.Context, boardID uuid.UUID) (*Note, error)
	// Upsert writes note as the board's note and loads the stored row back
	// into it.
	Upsert(ctx context.Context, note *Note) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new note repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByBoard(ctx context.Context, boardID uuid.UUID) (*Note, error) {
	var note Note
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

func (r *repository) Upsert(ctx context.Context, note *Note) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "board_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"content", "updated_by", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(note).Error
}
