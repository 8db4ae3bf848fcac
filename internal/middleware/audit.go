package middleware

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"finflow/internal/handler"
	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// bodies larger than this are left out of the audit action
const maxAuditBody = 2000

// Audit records every authenticated request with its path and action
// encrypted. Must run after Auth.
func Audit(s *store.AuditStore, encryptKey string, log *logging.Logger) gin.HandlerFunc {
	log = log.WithComponent(logging.ComponentAudit)
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil && !sensitive(c.Request.URL.Path) {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			rest := c.Request.Body
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))
		}

		c.Next()

		v, ok := c.Get(handler.CtxUserKey)
		if !ok {
			return
		}
		user, _ := v.(*models.User)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(body) > 0 && len(body) <= maxAuditBody {
			action += " " + string(body)
		}

		encPath, err := util.EncryptField(encryptKey, path)
		if err != nil {
			log.Error("encrypt audit path", "error", err)
			return
		}
		encAction, err := util.EncryptField(encryptKey, action)
		if err != nil {
			log.Error("encrypt audit action", "error", err)
			return
		}

		// a deleted user leaves a detached row, same as the cascade does
		var userID *uint
		if !c.GetBool(handler.CtxUserDeletedKey) {
			userID = &user.ID
		}
		entry := &models.AuditLog{
			UserID:    userID,
			Method:    c.Request.Method,
			Status:    c.Writer.Status(),
			PathEnc:   encPath,
			ActionEnc: encAction,
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}

		// the request context may already be cancelled by now
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Record(ctx, entry); err != nil {
			log.Error("record audit log", "error", err, "user_id", user.ID)
		}
	}
}

// sensitive paths never have their body stored.
func sensitive(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
