package board

import (
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/google/uuid"
)

// CreateBoardRequest represents a request to create a board.
type CreateBoardRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateBoardRequest represents a request to update a board.
type UpdateBoardRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// SetMemberRoleRequest sets a member's role directly.
type SetMemberRoleRequest struct {
	Role access.Role `json:"role" binding:"required,boardrole"`
}

// Response is a board in API responses.
type Response struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	OwnerID     uuid.UUID   `json:"ownerId"`
	Role        access.Role `json:"role,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Summary is the short board projection embedded in invite responses.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// ToResponse converts a Board to Response. role may be RoleNone.
func (b *Board) ToResponse(role access.Role) *Response {
	return &Response{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		OwnerID:     b.OwnerID,
		Role:        role,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToSummary projects the board for embedding.
func (b *Board) ToSummary() Summary {
	return Summary{ID: b.ID, Title: b.Title, Description: b.Description}
}

// MemberResponse is a member in API responses.
type MemberResponse struct {
	UserID   uuid.UUID   `json:"userId"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     access.Role `json:"role"`
	Position int         `json:"position"`
}
