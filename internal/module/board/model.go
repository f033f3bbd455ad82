package board

import (
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/google/uuid"
)

// Board is a Kanban board. The owner is implicitly max-privileged and
// needs no member entry.
type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Members     []Member  `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the database table name.
func (Board) TableName() string {
	return "boards"
}

// Subject returns the access view of the board. Members must be loaded.
func (b *Board) Subject() access.Subject {
	s := access.Subject{OwnerID: b.OwnerID, Members: make([]access.Member, 0, len(b.Members))}
	for _, m := range b.Members {
		s.Members = append(s.Members, access.Member{UserID: m.UserID, Role: m.Role})
	}
	return s
}

// Member grants a user a role on a board.
type Member struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoardID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_board_members_board_user"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_board_members_board_user;index"`
	Role      access.Role `gorm:"type:varchar(16);not null"`
	Position  int         `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// TableName returns the database table name.
func (Member) TableName() string {
	return "board_members"
}
