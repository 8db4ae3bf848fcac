package handler

import (
	"net/http"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	resource[models.RecurringTransaction, store.RecurringInput, store.RecurringPatch]
	recurring *store.RecurringStore
}

func NewRecurringHandler(s *store.RecurringStore, log *logging.Logger, pageSize int) *RecurringHandler {
	return &RecurringHandler{
		resource: resource[models.RecurringTransaction, store.RecurringInput, store.RecurringPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Recurring transaction",
		},
		recurring: s,
	}
}

// Materialize posts the template's next occurrence.
func (h *RecurringHandler) Materialize(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	txn, err := h.recurring.Materialize(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err, h.name)
		return
	}
	h.log.Info("recurring transaction materialized",
		"recurring_id", id,
		"transaction_id", txn.ID,
		"date", txn.Date.String(),
	)
	util.Success(c, http.StatusCreated, txn)
}
