package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/service"
)

const contextKeySession = "session"

// AuthMiddleware creates middleware that resolves a Bearer token to a live
// session. The session record in the store stays authoritative: a
// well-signed token over a revoked or expired session is rejected.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		session, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrSessionExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			}
			return
		}

		c.Set(contextKeySession, session)

		c.Next()
	}
}

// sessionFromContext returns the session placed by AuthMiddleware, or nil.
func sessionFromContext(c *gin.Context) *core.Session {
	v, exists := c.Get(contextKeySession)
	if !exists {
		return nil
	}
	session, ok := v.(*core.Session)
	if !ok {
		return nil
	}
	return session
}
