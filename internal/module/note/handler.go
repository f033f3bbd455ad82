package note

import (
	"net/http"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UpdateNoteRequest replaces a board's note content.
type UpdateNoteRequest struct {
	Content *string `json:"content" binding:"required"`
}

// Handler handles HTTP requests for notes.
type Handler struct {
	service *Service
	gate    access.Authorizer
}

// NewHandler creates a new note handler.
func NewHandler(service *Service, gate access.Authorizer) *Handler {
	return &Handler{service: service, gate: gate}
}

// RegisterRoutes registers note routes. The group must be authenticated.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/boards/:boardId/note", access.RequireBoardRole(h.gate, access.RoleViewer, "boardId"), h.GetNote)
	r.PUT("/boards/:boardId/note", h.UpdateNote)
}

// GetNote returns a board's note.
//
//	@Summary		Get note
//	@Tags			Notes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string	true	"Board ID"
//	@Success		200		{object}	Note
//	@Router			/boards/{boardId}/note [get]
func (h *Handler) GetNote(c *gin.Context) {
	boardID, _ := uuid.Parse(c.Param("boardId"))
	note, err := h.service.Get(c.Request.Context(), boardID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, access.ErrorMappings)
		return
	}
	c.JSON(http.StatusOK, note)
}

// UpdateNote overwrites a board's note and broadcasts note:update.
//
//	@Summary		Update note
//	@Tags			Notes
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string				true	"Board ID"
//	@Param			request	body		UpdateNoteRequest	true	"Content"
//	@Success		200		{object}	Note
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/boards/{boardId}/note [put]
func (h *Handler) UpdateNote(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.service.Update(c.Request.Context(), boardID, middleware.GetUserID(c), *req.Content, "")
	if err != nil {
		response.HandleErrorWithDefault(c, err, access.ErrorMappings)
		return
	}
	c.JSON(http.StatusOK, note)
}
