package note

import (
	"time"

	"github.com/flowspace/server/internal/module/board"
	"github.com/google/uuid"
)

// Note is the single shared notes document of a board. There is no
// history; every update overwrites the previous content.
type Note struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoardID   uuid.UUID    `json:"boardId" gorm:"type:uuid;not null;uniqueIndex"`
	Board     *board.Board `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Content   string       `json:"content" gorm:"type:text;not null;default:''"`
	UpdatedBy *uuid.UUID   `json:"updatedBy" gorm:"type:uuid"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TableName returns the database table name.
func (Note) TableName() string {
	return "notes"
}
