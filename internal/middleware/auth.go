package middleware

import (
	"strings"

	"finflow/internal/auth"
	"finflow/internal/handler"
	"finflow/internal/logging"

	"github.com/gin-gonic/gin"
)

// Auth resolves the bearer token to a user and stores it, with the session
// id, in the context. Any failure aborts with 401 (400 for inactive users).
func Auth(svc *auth.Service, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sessionID, err := svc.CurrentUser(c.Request.Context(), bearerToken(c))
		if err != nil {
			handler.Fail(c, log, err)
			c.Abort()
			return
		}

		c.Set(handler.CtxUserKey, user)
		c.Set(handler.CtxSessionKey, sessionID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
