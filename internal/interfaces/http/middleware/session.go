// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
)

const sessionCookie = "cart_session"

// Session ensures every request carries a cart session id, minting a
// new one for first-time visitors. The same id keeps serving as the
// cart mirror key after login.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			// 30 days, lax, not readable from JS
			c.SetCookie(sessionCookie, sessionID, 30*24*3600, "/", "", false, true)
		}
		c.Set("session_id", sessionID)
		c.Next()
	}
}

// GetSessionIDFromContext extracts the cart session id
func GetSessionIDFromContext(c *gin.Context) string {
	sessionID, exists := c.Get("session_id")
	if !exists {
		return ""
	}
	return sessionID.(string)
}

// IdentityFromContext assembles the cart identity for the request:
// user id when authenticated, session id always
func IdentityFromContext(c *gin.Context) cart.Identity {
	id := cart.Identity{SessionID: GetSessionIDFromContext(c)}
	if userID, ok := GetUserIDFromContext(c); ok {
		id.UserID = &userID
	}
	return id
}
