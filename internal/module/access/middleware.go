package access

import (
	"net/http"

	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const roleKey = "board_role"

// ErrorMappings translate gate errors for HTTP handlers. More specific
// errors come first.
var ErrorMappings = []response.ErrorMapping{
	{Err: ErrUnauthenticated, Status: http.StatusUnauthorized, Code: "unauthenticated", Message: "Not authenticated"},
	{Err: ErrBoardNotFound, Status: http.StatusNotFound, Code: "board_not_found", Message: "Board not found"},
	{Err: ErrNotMember, Status: http.StatusForbidden, Code: "not_a_member", Message: "Not a member"},
	{Err: ErrInsufficientRole, Status: http.StatusForbidden, Code: "insufficient_role", Message: "Insufficient role"},
	{Err: ErrForbidden, Status: http.StatusForbidden, Code: "forbidden", Message: "Forbidden"},
	{Err: ErrInvalidRole, Status: http.StatusBadRequest, Code: "invalid_role"},
}

// RequireBoardRole guards a route whose board id is the path parameter
// param. The resolved role is stored for handlers (see GetRole).
func RequireBoardRole(gate Authorizer, min Role, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, err := uuid.Parse(c.Param(param))
		if err != nil {
			response.AbortWithCode(c, http.StatusBadRequest, "validation_error", "invalid board id")
			return
		}

		role, err := gate.RequireMinRole(c.Request.Context(), boardID, middleware.GetUserID(c), min)
		if err != nil {
			response.HandleErrorWithDefault(c, err, ErrorMappings)
			c.Abort()
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}

// GetRole returns the role stored by RequireBoardRole.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(roleKey); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}
	return RoleNone
}
