package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SharerUserIDHeader carries the authenticated user's id, set by the
// upstream gateway after authentication.
const SharerUserIDHeader = "X-Sharer-User-Id"

const userIDContextKey = "user_id"

// UserIDMiddleware extracts the sharer user id header into the request
// context, rejecting requests without a parseable id.
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SharerUserIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + SharerUserIDHeader + " header"})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + SharerUserIDHeader + " header"})
			return
		}
		c.Set(userIDContextKey, id)
		c.Next()
	}
}

// GetUserID returns the authenticated user id for the request.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDContextKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
