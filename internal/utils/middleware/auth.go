package middleware

import (
	"net/http"
	"strings"

	"github.com/flowspace/server/internal/shared/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// TokenQueryParam carries the token where headers cannot be set (websocket upgrades).
	TokenQueryParam = "token"
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
)

// TokenVerifier turns an access token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (userID uuid.UUID, email string, err error)
}

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	// Optional lets requests without a valid token through unauthenticated.
	Optional bool
	// AllowQueryToken also accepts ?token= when no header is present.
	AllowQueryToken bool
}

// Auth returns a middleware that verifies bearer tokens and stores the
// caller's user id and email in the context.
func Auth(verifier TokenVerifier, cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractToken(c, cfg.AllowQueryToken)
		if !ok {
			if !cfg.Optional {
				response.AbortWithCode(c, http.StatusUnauthorized, "unauthenticated", "missing or malformed authorization")
				return
			}
			c.Next()
			return
		}

		userID, email, err := verifier.Verify(token)
		if err != nil {
			if !cfg.Optional {
				response.AbortWithCode(c, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
				return
			}
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(EmailKey, email)
		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid token.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, AuthConfig{})
}

// OptionalAuth returns a middleware that verifies a token when one is sent.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return Auth(verifier, AuthConfig{Optional: true})
}

// ExtractToken reads "Authorization: Bearer <token>". The header must have
// exactly two space-separated parts with the literal scheme "Bearer".
func ExtractToken(c *gin.Context, allowQuery bool) (string, bool) {
	if header := c.GetHeader(AuthorizationHeader); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if allowQuery {
		if token := c.Query(TokenQueryParam); token != "" {
			return token, true
		}
	}
	return "", false
}

// GetUserID returns the user ID from context, or uuid.Nil.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// GetEmail returns the email from context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
