package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cmh-events/backend/internal/auth"
	"github.com/cmh-events/backend/pkg/response"
)

// RequireSession validates the bearer session token, rejects revoked sessions,
// and puts the identity into the request context. Requests without a live
// session are turned away before any data access.
func RequireSession(jwtService *auth.JWTService, sessions auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil || revoked {
			response.Unauthorized(c, "session signed out")
			c.Abort()
			return
		}
		expiry := time.Time{}
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
		c.Set(auth.ContextUserID, claims.UserID)
		c.Set(auth.ContextUserEmail, claims.Email)
		c.Set(auth.ContextSessionID, claims.ID)
		c.Set(auth.ContextSessionExpiry, expiry)
		c.Next()
	}
}
