package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmh-events/backend/internal/auth"
	"github.com/cmh-events/backend/pkg/response"
)

// AdminFlagSource reads the live administrator flag for an identity.
// auth.Repository implements it.
type AdminFlagSource interface {
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

// RequireAdmin allows only identities whose profile row carries the
// administrator flag. The flag is fetched per request rather than trusted from
// the token, since it is provisioned directly in the database and can change
// under a live session. A failed fetch is treated the same as a false flag.
func RequireAdmin(flags AdminFlagSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		idVal, ok := c.Get(auth.ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := idVal.(uuid.UUID)
		isAdmin, err := flags.IsAdmin(c.Request.Context(), userID)
		if err != nil || !isAdmin {
			response.Forbidden(c, "administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
