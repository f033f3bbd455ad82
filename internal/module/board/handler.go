package board

import (
	"net/http"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errorMappings = append([]response.ErrorMapping{
	{Err: ErrMemberNotFound, Status: http.StatusNotFound, Code: "member_not_found", Message: "Member not found"},
	{Err: ErrCannotModifyOwner, Status: http.StatusBadRequest, Code: "cannot_modify_owner", Message: "The board owner's membership cannot be changed"},
	{Err: user.ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"},
}, access.ErrorMappings...)

// Handler handles HTTP requests for boards and members.
type Handler struct {
	service *Service
	gate    access.Authorizer
}

// NewHandler creates a new board handler.
func NewHandler(service *Service, gate access.Authorizer) *Handler {
	return &Handler{service: service, gate: gate}
}

// RegisterRoutes registers board routes. The group must be authenticated.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	viewer := access.RequireBoardRole(h.gate, access.RoleViewer, "boardId")
	editor := access.RequireBoardRole(h.gate, access.RoleEditor, "boardId")
	owner := access.RequireBoardRole(h.gate, access.RoleOwner, "boardId")

	boards := r.Group("/boards")
	{
		boards.POST("", h.CreateBoard)
		boards.GET("", h.ListBoards)
		boards.GET("/:boardId", viewer, h.GetBoard)
		boards.PATCH("/:boardId", editor, h.UpdateBoard)
		boards.DELETE("/:boardId", owner, h.DeleteBoard)

		boards.GET("/:boardId/members", viewer, h.ListMembers)
		boards.PUT("/:boardId/members/:userId", owner, h.SetMemberRole)
		boards.DELETE("/:boardId/members/:userId", owner, h.RemoveMember)
	}
}

// CreateBoard handles board creation.
//
//	@Summary		Create board
//	@Tags			Boards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateBoardRequest	true	"Create board request"
//	@Success		201		{object}	Response
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/boards [post]
func (h *Handler) CreateBoard(c *gin.Context) {
	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	board, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusCreated, board.ToResponse(access.RoleOwner))
}

// ListBoards lists the caller's boards.
//
//	@Summary		List my boards
//	@Tags			Boards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]interface{}
//	@Router			/boards [get]
func (h *Handler) ListBoards(c *gin.Context) {
	boards, err := h.service.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// GetBoard returns one board.
//
//	@Summary		Get board
//	@Tags			Boards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string	true	"Board ID"
//	@Success		200		{object}	Response
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/boards/{boardId} [get]
func (h *Handler) GetBoard(c *gin.Context) {
	board, err := h.service.Get(c.Request.Context(), boardID(c))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, board.ToResponse(access.GetRole(c)))
}

// UpdateBoard updates title and description.
//
//	@Summary		Update board
//	@Tags			Boards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string				true	"Board ID"
//	@Param			request	body		UpdateBoardRequest	true	"Update board request"
//	@Success		200		{object}	Response
//	@Router			/boards/{boardId} [patch]
func (h *Handler) UpdateBoard(c *gin.Context) {
	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	board, err := h.service.Update(c.Request.Context(), boardID(c), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, board.ToResponse(access.GetRole(c)))
}

// DeleteBoard deletes a board and everything on it.
//
//	@Summary		Delete board
//	@Tags			Boards
//	@Security		BearerAuth
//	@Param			boardId	path	string	true	"Board ID"
//	@Success		204
//	@Router			/boards/{boardId} [delete]
func (h *Handler) DeleteBoard(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), boardID(c)); err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers lists the board's owner and members.
//
//	@Summary		List members
//	@Tags			Boards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			boardId	path		string	true	"Board ID"
//	@Success		200		{object}	map[string]interface{}
//	@Router			/boards/{boardId}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context(), boardID(c))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// SetMemberRole adds a member or changes their role.
//
//	@Summary		Set member role
//	@Tags			Boards
//	@Accept			json
//	@Security		BearerAuth
//	@Param			boardId	path	string					true	"Board ID"
//	@Param			userId	path	string					true	"User ID"
//	@Param			request	body	SetMemberRoleRequest	true	"Role"
//	@Success		204
//	@Router			/boards/{boardId}/members/{userId} [put]
func (h *Handler) SetMemberRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetMemberRole(c.Request.Context(), boardID(c), userID, req.Role); err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember removes a member.
//
//	@Summary		Remove member
//	@Tags			Boards
//	@Security		BearerAuth
//	@Param			boardId	path	string	true	"Board ID"
//	@Param			userId	path	string	true	"User ID"
//	@Success		204
//	@Router			/boards/{boardId}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), boardID(c), userID); err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.Status(http.StatusNoContent)
}

// boardID is only called behind RequireBoardRole, which has already
// validated the parameter.
func boardID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.Param("boardId"))
	return id
}
