package card

// CreateCardRequest represents a request to create a card.
type CreateCardRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=500"`
	Description string   `json:"description" binding:"max=10000"`
	Column      string   `json:"column" binding:"omitempty,max=64"`
	Position    *float64 `json:"position"`
	Labels      []string `json:"labels" binding:"max=20,dive,min=1,max=50"`
}

// UpdateCardRequest represents a partial card update.
type UpdateCardRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=500"`
	Description *string   `json:"description" binding:"omitempty,max=10000"`
	Column      *string   `json:"column" binding:"omitempty,min=1,max=64"`
	Position    *float64  `json:"position"`
	Labels      *[]string `json:"labels" binding:"omitempty,max=20,dive,min=1,max=50"`
}
