package user

import (
	"net/http"

	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errorMappings = []response.ErrorMapping{
	{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"},
}

// Handler handles HTTP requests for the user directory.
type Handler struct {
	repo Repository
}

// NewHandler creates a new user handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.GetCurrentUser)
	}
}

// GetCurrentUser returns the current authenticated user.
//
//	@Summary		Get current user profile
//	@Description	Get the profile of the currently authenticated user
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	User
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/users/me [get]
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		response.ErrorWithCode(c, http.StatusUnauthorized, "unauthenticated", "Not authenticated")
		return
	}

	u, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, u)
}
