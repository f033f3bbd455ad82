package invite

import (
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/module/user"
	"github.com/google/uuid"
)

// CreateInviteRequest is the body of POST /invite. Fields are validated by
// the service so that every caller gets the same errors.
type CreateInviteRequest struct {
	Email   string `json:"email"`
	BoardID string `json:"boardId"`
	Role    string `json:"role"`
}

// SendResult is the outcome of creating an invite and notifying the invitee.
// A failed notification is reported through Notified and Warning, never as
// an error.
type SendResult struct {
	Invite   *Invite
	Link     string
	Notified bool
	Warning  string
}

// Details is the public view of an invite shown before acceptance.
type Details struct {
	Email     string        `json:"email"`
	Role      access.Role   `json:"role"`
	Status    Status        `json:"status"`
	ExpiresAt time.Time     `json:"expiresAt"`
	InvitedBy user.Summary  `json:"invitedBy"`
	Board     board.Summary `json:"board"`
}

// ListItem is an invite as seen by the board owner.
type ListItem struct {
	ID         uuid.UUID    `json:"id"`
	Email      string       `json:"email"`
	Role       access.Role  `json:"role"`
	Status     Status       `json:"status"`
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	InvitedBy  user.Summary `json:"invitedBy"`
	AcceptedBy *uuid.UUID   `json:"acceptedBy,omitempty"`
	AcceptedAt *time.Time   `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// SendInviteResponse is the body returned by POST /invite.
type SendInviteResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InviteLink string `json:"inviteLink"`
	Token      string `json:"token"`
	Warning    string `json:"warning,omitempty"`
}

// AcceptInviteResponse is the body returned by POST /invite/:token/accept.
type AcceptInviteResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Board   board.Summary `json:"board"`
}
