package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/report"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

const maxBatchItems = 1000

// TransactionHandler serves the ledger and its reports.
type TransactionHandler struct {
	base
	transactions *store.TransactionStore
	reports      report.Reporter
}

func NewTransactionHandler(s *store.TransactionStore, reports report.Reporter, log *logging.Logger, pageSize int) *TransactionHandler {
	return &TransactionHandler{
		base:         newBase(log, pageSize),
		transactions: s,
		reports:      reports,
	}
}

// ---------- CRUD ----------

func (h *TransactionHandler) List(c *gin.Context) {
	page, ok := h.parsePage(c)
	if !ok {
		return
	}
	f := store.TransactionFilter{Page: page}
	if f.StartDate, ok = parseDateQuery(c, "start_date"); !ok {
		return
	}
	if f.EndDate, ok = parseDateQuery(c, "end_date"); !ok {
		return
	}
	if v := c.Query("transaction_type"); v != "" {
		t := models.TransactionType(v)
		if !t.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "transaction_type must be income, expense or transfer")
			return
		}
		f.Type = &t
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category_id must be an integer")
			return
		}
		cid := uint(id)
		f.CategoryID = &cid
	}

	items, err := h.transactions.List(c.Request.Context(), currentUser(c).ID, f)
	if err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	util.Success(c, http.StatusOK, items)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.transactions.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	util.Success(c, http.StatusOK, t)
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var in store.TransactionInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.transactions.Create(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	util.Success(c, http.StatusCreated, t)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch store.TransactionPatch
	if !bindJSON(c, &patch) {
		return
	}
	t, err := h.transactions.Update(c.Request.Context(), currentUser(c).ID, id, patch)
	if err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	util.Success(c, http.StatusOK, t)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.transactions.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- batch import ----------

type batchImportReq struct {
	Transactions []store.TransactionInput `json:"transactions"`
}

func (h *TransactionHandler) BatchImport(c *gin.Context) {
	var req batchImportReq
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Transactions) > maxBatchItems {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("at most %d transactions per import", maxBatchItems))
		return
	}

	user := currentUser(c)
	res := h.transactions.BatchImport(c.Request.Context(), user.ID, req.Transactions)
	h.log.Info("batch import finished",
		"user_id", user.ID,
		"total", res.Total,
		"successful", res.Successful,
		"failed", res.Failed,
	)
	util.Success(c, http.StatusOK, res)
}

// ---------- reports ----------

func (h *TransactionHandler) FinancialReport(c *gin.Context) {
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}
	if start == nil || end == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start_date and end_date are required")
		return
	}

	rows, err := h.reports.FinancialReport(c.Request.Context(), currentUser(c).ID, *start, *end)
	if err != nil {
		h.fail(c, err, "Report")
		return
	}
	util.Success(c, http.StatusOK, rows)
}

func (h *TransactionHandler) TopExpenses(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	rows, err := h.reports.TopExpenses(c.Request.Context(), currentUser(c).ID, limit, start, end)
	if err != nil {
		h.fail(c, err, "Report")
		return
	}
	util.Success(c, http.StatusOK, rows)
}
