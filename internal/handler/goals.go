package handler

import (
	"net/http"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/report"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	resource[models.Goal, store.GoalInput, store.GoalPatch]
	reports report.Reporter
}

func NewGoalHandler(s *store.GoalStore, reports report.Reporter, log *logging.Logger, pageSize int) *GoalHandler {
	return &GoalHandler{
		resource: resource[models.Goal, store.GoalInput, store.GoalPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Goal",
		},
		reports: reports,
	}
}

func (h *GoalHandler) Progress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pct, err := h.reports.GoalProgress(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err, h.name)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"progress_percent": pct})
}
