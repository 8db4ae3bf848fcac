package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportChunk = 500

var exportHeader = []string{"Date", "Type", "Amount", "Account", "Category", "Payee", "Description", "Tags"}

// ExportHandler writes the caller's transactions as CSV or XLSX.
type ExportHandler struct {
	base
	transactions *store.TransactionStore
	accounts     *store.AccountStore
	categories   *store.CategoryStore
}

func NewExportHandler(s *store.Store, log *logging.Logger) *ExportHandler {
	return &ExportHandler{
		base:         newBase(log, 0),
		transactions: s.Transactions,
		accounts:     s.Accounts,
		categories:   s.Categories,
	}
}

// collect drains a paginated list. The store may clamp a page below
// exportChunk, so only an empty page ends the walk.
func collect[T any](fetch func(p store.Page) ([]T, error)) ([]T, error) {
	var out []T
	for offset := 0; ; {
		batch, err := fetch(store.Page{Offset: offset, Limit: exportChunk})
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return out, nil
		}
		out = append(out, batch...)
		offset += len(batch)
	}
}

// rows loads the filtered transactions and renders them as string rows.
func (h *ExportHandler) rows(c *gin.Context) ([][]string, bool) {
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return nil, false
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	owner := currentUser(c).ID
	rows, err := h.render(ctx, owner, start, end)
	if err != nil {
		h.fail(c, err, "Transaction")
		return nil, false
	}
	return rows, true
}

func (h *ExportHandler) render(ctx context.Context, owner uint, start, end *models.Date) ([][]string, error) {
	txns, err := collect(func(p store.Page) ([]models.Transaction, error) {
		return h.transactions.List(ctx, owner, store.TransactionFilter{Page: p, StartDate: start, EndDate: end})
	})
	if err != nil {
		return nil, err
	}
	accounts, err := collect(func(p store.Page) ([]models.Account, error) {
		return h.accounts.List(ctx, owner, p)
	})
	if err != nil {
		return nil, err
	}
	categories, err := collect(func(p store.Page) ([]models.Category, error) {
		return h.categories.List(ctx, owner, p)
	})
	if err != nil {
		return nil, err
	}

	accountNames := make(map[uint]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	categoryNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	out := make([][]string, 0, len(txns))
	for _, t := range txns {
		category := ""
		if t.CategoryID != nil {
			category = categoryNames[*t.CategoryID]
		}
		tags := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			tags = append(tags, tag.Name)
		}
		sort.Strings(tags)

		out = append(out, []string{
			t.Date.String(),
			string(t.Type),
			t.Amount.StringFixed(2),
			accountNames[t.AccountID],
			category,
			deref(t.Payee),
			deref(t.Description),
			strings.Join(tags, ", "),
		})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func exportFilename(ext string) string {
	return fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"", time.Now().Format("20060102"), ext)
}

func (h *ExportHandler) CSV(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportFilename("csv"))
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Error("write csv export", "error", err)
	}
}

func (h *ExportHandler) XLSX(c *gin.Context) {
	rows, ok := h.rows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		h.fail(c, fmt.Errorf("create sheet: %w", err), "Transaction")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := writeSheetRow(f, sheet, 1, exportHeader); err != nil {
		h.fail(c, err, "Transaction")
		return
	}
	for i, r := range rows {
		if err := writeSheetRow(f, sheet, i+2, r); err != nil {
			h.fail(c, err, "Transaction")
			return
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "F", 20)
	_ = f.SetColWidth(sheet, "G", "H", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportFilename("xlsx"))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("write xlsx export", "error", err)
	}
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
