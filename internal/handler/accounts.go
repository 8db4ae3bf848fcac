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

type AccountHandler struct {
	resource[models.Account, store.AccountInput, store.AccountPatch]
	reports report.Reporter
}

func NewAccountHandler(s *store.AccountStore, reports report.Reporter, log *logging.Logger, pageSize int) *AccountHandler {
	return &AccountHandler{
		resource: resource[models.Account, store.AccountInput, store.AccountPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Account",
		},
		reports: reports,
	}
}

// TotalBalance sums the balances of the caller's active accounts.
func (h *AccountHandler) TotalBalance(c *gin.Context) {
	total, err := h.reports.TotalBalance(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err, h.name)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"total_balance": total})
}
