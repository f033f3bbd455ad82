package invite

import (
	"net/http"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errorMappings = append([]response.ErrorMapping{
	{Err: ErrInviteNotFound, Status: http.StatusNotFound, Code: "invite_not_found", Message: "Invite not found"},
	{Err: ErrInviteExpired, Status: http.StatusBadRequest, Code: "invite_expired", Message: "Invite has expired"},
	{Err: ErrAlreadyAccepted, Status: http.StatusBadRequest, Code: "invite_already_accepted", Message: "Invite already accepted"},
	{Err: ErrEmailRequired, Status: http.StatusBadRequest, Code: "validation_error", Message: "Email required"},
	{Err: ErrBoardIDRequired, Status: http.StatusBadRequest, Code: "validation_error", Message: "Board ID required"},
	{Err: ErrValidation, Status: http.StatusBadRequest, Code: "validation_error"},
}, access.ErrorMappings...)

// Handler handles HTTP requests for invitations.
type Handler struct {
	service *Service
	limit   gin.HandlerFunc
}

// NewHandler creates a new invite handler. limit guards invite creation
// and may be nil.
func NewHandler(service *Service, limit gin.HandlerFunc) *Handler {
	return &Handler{service: service, limit: limit}
}

// RegisterRoutes registers the invite routes. auth is the authentication
// middleware; the token lookup and discovery endpoints stay public.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	create := []gin.HandlerFunc{auth}
	if h.limit != nil {
		create = append(create, h.limit)
	}
	create = append(create, h.SendInvite)

	invites := r.Group("/invite")
	{
		invites.GET("", h.Discover)
		invites.POST("", create...)
		invites.GET("/board/:boardId", auth, h.ListInvites)
		invites.GET("/:token", h.GetInviteDetails)
		invites.POST("/:token/accept", auth, h.AcceptInvite)
	}
}

// Discover lists the invite endpoints.
//
//	@Summary	Invite API discovery
//	@Tags		Invites
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/invite [get]
func (h *Handler) Discover(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Invite API is working",
		"endpoints": gin.H{
			"POST /api/v1/invite":               "Send invite (requires auth)",
			"GET /api/v1/invite/:token":         "Get invite details (public)",
			"POST /api/v1/invite/:token/accept": "Accept invite (requires auth)",
			"GET /api/v1/invite/board/:boardId": "List invites for a board (requires auth)",
		},
	})
}

// SendInvite creates an invite and emails it.
//
//	@Summary		Send invite
//	@Description	Create (or reuse) a pending invite and email the link. Email failures are reported as a warning.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateInviteRequest	true	"Invite"
//	@Success		200		{object}	SendInviteResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		429		{object}	response.ErrorResponse
//	@Router			/invite [post]
func (h *Handler) SendInvite(c *gin.Context) {
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SendInvite(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	resp := SendInviteResponse{
		Success:    true,
		Message:    "Invite sent successfully",
		InviteLink: result.Link,
		Token:      result.Invite.Token,
	}
	if !result.Notified {
		resp.Message = "Invite created (email not sent)"
		resp.Warning = result.Warning
	}
	c.JSON(http.StatusOK, resp)
}

// GetInviteDetails returns the public view of an invite.
//
//	@Summary	Get invite details
//	@Tags		Invites
//	@Produce	json
//	@Param		token	path		string	true	"Invite token"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	404		{object}	response.ErrorResponse
//	@Router		/invite/{token} [get]
func (h *Handler) GetInviteDetails(c *gin.Context) {
	details, err := h.service.GetInviteDetails(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invite": details})
}

// AcceptInvite accepts an invite for the caller.
//
//	@Summary	Accept invite
//	@Tags		Invites
//	@Produce	json
//	@Security	BearerAuth
//	@Param		token	path		string	true	"Invite token"
//	@Success	200		{object}	AcceptInviteResponse
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	401		{object}	response.ErrorResponse
//	@Failure	404		{object}	response.ErrorResponse
//	@Router		/invite/{token}/accept [post]
func (h *Handler) AcceptInvite(c *gin.Context) {
	summary, err := h.service.AcceptInvite(c.Request.Context(), c.Param("token"), middleware.GetUserID(c))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, AcceptInviteResponse{
		Success: true,
		Message: "Invite accepted",
		Board:   *summary,
	})
}

// ListInvites lists a board's invites for its owner.
//
//	@Summary	List board invites
//	@Tags		Invites
//	@Produce	json
//	@Security	BearerAuth
//	@Param		boardId	path		string	true	"Board ID"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	403		{object}	response.ErrorResponse
//	@Failure	404		{object}	response.ErrorResponse
//	@Router		/invite/board/{boardId} [get]
func (h *Handler) ListInvites(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		response.BadRequest(c, "invalid board id")
		return
	}

	invites, err := h.service.ListInvites(c.Request.Context(), boardID, middleware.GetUserID(c))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}
