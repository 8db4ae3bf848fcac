package handler

import (
	"net/http"
	"time"

	"finflow/internal/logging"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// AuditHandler lists the caller's own audit trail, decrypted.
type AuditHandler struct {
	base
	audit      *store.AuditStore
	encryptKey string
}

func NewAuditHandler(s *store.AuditStore, encryptKey string, log *logging.Logger, pageSize int) *AuditHandler {
	return &AuditHandler{base: newBase(log, pageSize), audit: s, encryptKey: encryptKey}
}

type auditLogResp struct {
	ID        uint      `json:"id"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AuditHandler) List(c *gin.Context) {
	page, ok := h.parsePage(c)
	if !ok {
		return
	}
	logs, err := h.audit.List(c.Request.Context(), currentUser(c).ID, page)
	if err != nil {
		h.fail(c, err, "Audit log")
		return
	}

	out := make([]auditLogResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, auditLogResp{
			ID:        l.ID,
			Method:    l.Method,
			Status:    l.Status,
			Path:      util.DecryptField(h.encryptKey, l.PathEnc),
			Action:    util.DecryptField(h.encryptKey, l.ActionEnc),
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}
	util.Success(c, http.StatusOK, out)
}
