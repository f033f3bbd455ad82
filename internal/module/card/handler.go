package card

import (
	"net/http"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errorMappings = append([]response.ErrorMapping{
	{Err: ErrCardNotFound, Status: http.StatusNotFound, Code: "card_not_found", Message: "Card not found"},
	{Err: ErrBlankTitle, Status: http.StatusBadRequest, Code: "validation_error", Message: "Title must not be blank"},
	{Err: ErrBlankColumn, Status: http.StatusBadRequest, Code: "validation_error", Message: "Column must not be blank"},
}, access.ErrorMappings...)

// Handler handles HTTP requests for cards.
type Handler struct {
	service *Service
	gate    access.Authorizer
}

// NewHandler creates a new card handler.
func NewHandler(service *Service, gate access.Authorizer) *Handler {
	return &Handler{service: service, gate: gate}
}

// RegisterRoutes registers card routes. The group must be authenticated.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/boards/:boardId/cards", access.RequireBoardRole(h.gate, access.RoleViewer, "boardId"), h.ListCards)
	r.POST("/boards/:boardId/cards", access.RequireBoardRole(h.gate, access.RoleEditor, "boardId"), h.CreateCard)

	cards := r.Group("/cards")
	{
		cards.PUT("/:cardId", h.UpdateCard)
		cards.DELETE("/:cardId", h.DeleteCard)
	}
}

// ListCards lists a board's cards.
//
//	@Summary		List cards
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string	true	"Board ID"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/boards/{boardId}/cards [get]
func (h *Handler) ListCards(c *gin.Context) {
	boardID, _ := uuid.Parse(c.Param("boardId"))
	cards, err := h.service.List(c.Request.Context(), boardID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// CreateCard creates a card and broadcasts card:create to the board room.
//
//	@Summary		Create card
//	@Tags			Cards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string				true	"Board ID"
//	@Param			request	body		CreateCardRequest	true	"Card"
//	@Success		201		{object}	Card
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/boards/{boardId}/cards [post]
func (h *Handler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	boardID, _ := uuid.Parse(c.Param("boardId"))
	card, err := h.service.Create(c.Request.Context(), boardID, middleware.GetUserID(c), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// UpdateCard updates a card and broadcasts card:update.
//
//	@Summary		Update card
//	@Tags			Cards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		string				true	"Card ID"
//	@Param			request	body		UpdateCardRequest	true	"Fields to change"
//	@Success		200		{object}	Card
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/cards/{cardId} [put]
func (h *Handler) UpdateCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("cardId"))
	if err != nil {
		response.BadRequest(c, "invalid card id")
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.service.Update(c.Request.Context(), cardID, middleware.GetUserID(c), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard deletes a card and broadcasts card:delete.
//
//	@Summary		Delete card
//	@Tags			Cards
//	@Security		BearerAuth
//	@Param			cardId	path	string	true	"Card ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/cards/{cardId} [delete]
func (h *Handler) DeleteCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("cardId"))
	if err != nil {
		response.BadRequest(c, "invalid card id")
		return
	}

	if _, err := h.service.Delete(c.Request.Context(), cardID, middleware.GetUserID(c), ""); err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.Status(http.StatusNoContent)
}
