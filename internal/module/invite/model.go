package invite

import (
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/board"
	"github.com/google/uuid"
)

// Status is the invite lifecycle state. Accepted and expired are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
)

// Index names referenced when classifying unique violations.
const (
	tokenIndex   = "idx_invites_token"
	pendingIndex = "idx_invites_board_email_pending"
)

// Invite grants the holder of Token a role on a board once accepted.
type Invite struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoardID    uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_invites_board_email_pending,where:status = 'pending'"`
	Board      *board.Board `gorm:"constraint:OnDelete:CASCADE"`
	InvitedBy  uuid.UUID    `gorm:"type:uuid;not null"`
	Email      string       `gorm:"not null;uniqueIndex:idx_invites_board_email_pending"`
	Token      string       `gorm:"not null;uniqueIndex:idx_invites_token"`
	Role       access.Role  `gorm:"type:varchar(16);not null"`
	Status     Status       `gorm:"type:varchar(16);not null;default:pending;index"`
	ExpiresAt  time.Time    `gorm:"not null"`
	AcceptedBy *uuid.UUID   `gorm:"type:uuid"`
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the database table name.
func (Invite) TableName() string {
	return "invites"
}

// IsExpired reports whether a pending invite has passed its expiry.
func (i *Invite) IsExpired(now time.Time) bool {
	return i.Status == StatusPending && now.After(i.ExpiresAt)
}
