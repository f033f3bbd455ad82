package card

import (
	"time"

	"github.com/flowspace/server/internal/module/board"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DefaultColumn is used when a card is created without a column.
const DefaultColumn = "todo"

// Card is one Kanban card. Position is a float so a card can be moved
// between two others without renumbering the column.
type Card struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoardID     uuid.UUID      `json:"boardId" gorm:"type:uuid;not null;index:idx_cards_board_lane"`
	Board       *board.Board   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"not null;default:''"`
	Column      string         `json:"column" gorm:"column:lane;not null;default:'todo';index:idx_cards_board_lane"`
	Position    float64        `json:"position" gorm:"not null;default:0"`
	Labels      pq.StringArray `json:"labels" gorm:"type:text[];not null;default:'{}'"`
	CreatedBy   uuid.UUID      `json:"createdBy" gorm:"type:uuid;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName returns the database table name.
func (Card) TableName() string {
	return "cards"
}
