package handler

import (
	"net/http"
	"strconv"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/report"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

type BudgetHandler struct {
	resource[models.Budget, store.BudgetInput, store.BudgetPatch]
	reports report.Reporter
}

func NewBudgetHandler(s *store.BudgetStore, reports report.Reporter, log *logging.Logger, pageSize int) *BudgetHandler {
	return &BudgetHandler{
		resource: resource[models.Budget, store.BudgetInput, store.BudgetPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Budget",
		},
		reports: reports,
	}
}

// Status reports spending against each active budget for ?year=&month=.
func (h *BudgetHandler) Status(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1 || year > 9999 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "year is required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be between 1 and 12")
		return
	}

	rows, err := h.reports.BudgetStatus(c.Request.Context(), currentUser(c).ID, year, month)
	if err != nil {
		h.fail(c, err, h.name)
		return
	}
	util.Success(c, http.StatusOK, rows)
}
