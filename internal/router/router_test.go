package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finflow/internal/auth"
	"finflow/internal/config"
	"finflow/internal/database"
	"finflow/internal/models"
	"finflow/internal/report"
	"finflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

// fakeReports stands in for the postgres functions.
type fakeReports struct {
	lastLimit int
}

func (f *fakeReports) FinancialReport(_ context.Context, _ uint, _, _ models.Date) ([]report.FinancialRow, error) {
	return []report.FinancialRow{{CategoryName: "Food", CategoryType: "expense", TotalExpense: decimal.RequireFromString("42.50"), TransactionCount: 3}}, nil
}

func (f *fakeReports) TopExpenses(_ context.Context, _ uint, limit int, _, _ *models.Date) ([]report.TopExpenseRow, error) {
	f.lastLimit = limit
	return []report.TopExpenseRow{}, nil
}

func (f *fakeReports) BudgetStatus(_ context.Context, _ uint, _, _ int) ([]report.BudgetStatusRow, error) {
	return []report.BudgetStatusRow{}, nil
}

func (f *fakeReports) GoalProgress(_ context.Context, _, _ uint) (decimal.Decimal, error) {
	return decimal.Zero, report.ErrNotFound
}

func (f *fakeReports) TotalBalance(_ context.Context, _ uint) (decimal.Decimal, error) {
	return decimal.Zero, report.ErrUnavailable
}

type testServer struct {
	t         *testing.T
	engine    *gin.Engine
	store     *store.Store
	reports   *fakeReports
	backupDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithPageSize(t, 1000)
}

func newTestServerWithPageSize(t *testing.T, maxPage int) *testServer {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")})
	if err != nil {
		t.Fatalf("database.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}

	cfg := config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode, CORSOrigins: []string{"*"}},
		Security: config.SecurityConfig{EncryptionKey: "audit-test-key"},
		Backup:   config.BackupConfig{Dir: filepath.Join(t.TempDir(), "backups")},
		App:      config.AppSubConfig{Name: "FinFlow API", Version: "test", DefaultPageSize: min(100, maxPage), MaxPageSize: maxPage},
	}
	s := store.New(db, store.Options{MaxPageSize: cfg.App.MaxPageSize, BcryptCost: bcrypt.MinCost})
	svc := auth.NewService(s.Users, s.Sessions, auth.Config{Secret: "router-test", Issuer: "finflow", TTL: time.Hour}, nil)
	reports := &fakeReports{}

	return &testServer{
		t:         t,
		engine:    SetupRouter(Deps{Config: cfg, Store: s, Auth: svc, Reports: reports}),
		store:     s,
		reports:   reports,
		backupDir: cfg.Backup.Dir,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			ts.t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func (ts *testServer) expect(method, path, token string, body any, status int) envelope {
	ts.t.Helper()
	w, env := ts.do(method, path, token, body)
	if w.Code != status {
		ts.t.Fatalf("%s %s = %d %s, want %d", method, path, w.Code, w.Body.String(), status)
	}
	return env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

// login registers email and returns a bearer token for it.
func (ts *testServer) login(email string) string {
	ts.t.Helper()
	ts.expect(http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "password123"}, http.StatusCreated)
	env := ts.expect(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"}, http.StatusOK)
	return decode[auth.Token](ts.t, env).AccessToken
}

func TestPublicEndpoints(t *testing.T) {
	ts := newTestServer(t)
	env := ts.expect(http.MethodGet, "/health", "", nil, http.StatusOK)
	if env.Code != 0 {
		t.Errorf("health code = %d, want 0", env.Code)
	}
	root := decode[map[string]string](t, ts.expect(http.MethodGet, "/", "", nil, http.StatusOK))
	if root["name"] != "FinFlow API" {
		t.Errorf("root name = %q", root["name"])
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodGet, "/api/accounts", "", nil)
	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("no token = %d %q, want 401 with WWW-Authenticate", w.Code, w.Header().Get("WWW-Authenticate"))
	}
	if env.Code == 0 || env.Message == "" {
		t.Errorf("error envelope = %+v", env)
	}

	token := ts.login("Alice@example.com")
	ts.expect(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "alice@EXAMPLE.com", "password": "password123"}, http.StatusBadRequest)
	ts.expect(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope-nope"}, http.StatusUnauthorized)

	me := decode[models.User](t, ts.expect(http.MethodGet, "/api/auth/me", token, nil, http.StatusOK))
	if me.Email != "alice@example.com" || me.Currency != "RUB" {
		t.Errorf("me = %+v", me)
	}

	// form login
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("username=alice%40example.com&password=password123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("form login = %d %s, want 200", rec.Code, rec.Body.String())
	}

	ts.expect(http.MethodPost, "/api/auth/logout", token, nil, http.StatusNoContent)
	ts.expect(http.MethodGet, "/api/auth/me", token, nil, http.StatusUnauthorized)
}

func TestAccountsCRUD(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice@example.com")
	bob := ts.login("bob@example.com")

	created := decode[models.Account](t, ts.expect(http.MethodPost, "/api/accounts", alice,
		map[string]any{"name": "Wallet", "type": "cash", "balance": "100.50"}, http.StatusCreated))
	path := fmt.Sprintf("/api/accounts/%d", created.ID)

	ts.expect(http.MethodGet, path, bob, nil, http.StatusNotFound)
	ts.expect(http.MethodPut, path, bob, map[string]any{"name": "Stolen"}, http.StatusNotFound)
	ts.expect(http.MethodDelete, path, bob, nil, http.StatusNotFound)

	updated := decode[models.Account](t, ts.expect(http.MethodPut, path, alice, map[string]any{"bank_name": "Tinkoff"}, http.StatusOK))
	if updated.Name != "Wallet" || updated.BankName == nil || *updated.BankName != "Tinkoff" {
		t.Errorf("partial update = %+v", updated)
	}

	ts.expect(http.MethodPost, "/api/accounts", alice, map[string]any{"name": "Bad", "type": "cash", "balance": "1.005"}, http.StatusBadRequest)
	ts.expect(http.MethodGet, "/api/accounts/abc", alice, nil, http.StatusBadRequest)
	ts.expect(http.MethodGet, "/api/accounts?skip=-1", alice, nil, http.StatusBadRequest)

	list := decode[[]models.Account](t, ts.expect(http.MethodGet, "/api/accounts", bob, nil, http.StatusOK))
	if len(list) != 0 {
		t.Errorf("bob sees %d accounts, want 0", len(list))
	}

	ts.expect(http.MethodGet, "/api/accounts/summary/total-balance", alice, nil, http.StatusServiceUnavailable)

	w, _ := ts.do(http.MethodDelete, path, alice, nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("delete = %d %q, want 204 with empty body", w.Code, w.Body.String())
	}
	ts.expect(http.MethodGet, path, alice, nil, http.StatusNotFound)
}

func TestTransactionsAndRestrict(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("u@example.com")

	acc := decode[models.Account](t, ts.expect(http.MethodPost, "/api/accounts", token,
		map[string]any{"name": "Card", "type": "debit_card"}, http.StatusCreated))
	tag := decode[models.Tag](t, ts.expect(http.MethodPost, "/api/tags", token, map[string]any{"name": "trip"}, http.StatusCreated))

	txn := decode[models.Transaction](t, ts.expect(http.MethodPost, "/api/transactions", token, map[string]any{
		"account_id": acc.ID, "amount": "12.30", "type": "expense",
		"date": "2024-03-01", "tag_ids": []uint{tag.ID, 9999},
	}, http.StatusCreated))
	if len(txn.Tags) != 1 || txn.Tags[0].ID != tag.ID {
		t.Errorf("tags = %+v, want only tag %d", txn.Tags, tag.ID)
	}

	ts.expect(http.MethodPost, "/api/transactions", token, map[string]any{
		"account_id": 9999, "amount": "1", "type": "expense", "date": "2024-03-01",
	}, http.StatusBadRequest)

	res := decode[store.ImportResult](t, ts.expect(http.MethodPost, "/api/transactions/batch-import", token, map[string]any{
		"transactions": []map[string]any{
			{"account_id": acc.ID, "amount": "5", "type": "income", "date": "2024-03-02"},
			{"account_id": 9999, "amount": "5", "type": "income", "date": "2024-03-02"},
		},
	}, http.StatusOK))
	if res.Total != 2 || res.Successful != 1 || res.Failed != 1 || len(res.Errors) != 1 || res.Errors[0].Index != 1 {
		t.Errorf("batch import = %+v", res)
	}

	list := decode[[]models.Transaction](t, ts.expect(http.MethodGet, "/api/transactions?transaction_type=expense", token, nil, http.StatusOK))
	if len(list) != 1 {
		t.Errorf("filtered list = %d, want 1", len(list))
	}

	ts.expect(http.MethodDelete, fmt.Sprintf("/api/accounts/%d", acc.ID), token, nil, http.StatusConflict)

	rows := decode[[]report.FinancialRow](t, ts.expect(http.MethodGet,
		"/api/transactions/reports/financial?start_date=2024-01-01&end_date=2024-12-31", token, nil, http.StatusOK))
	if len(rows) != 1 || rows[0].CategoryName != "Food" {
		t.Errorf("financial report = %+v", rows)
	}
	ts.expect(http.MethodGet, "/api/transactions/reports/financial?start_date=2024-01-01", token, nil, http.StatusBadRequest)
	ts.expect(http.MethodGet, "/api/transactions/reports/top-expenses?limit=51", token, nil, http.StatusBadRequest)
	ts.expect(http.MethodGet, "/api/transactions/reports/top-expenses", token, nil, http.StatusOK)
	if ts.reports.lastLimit != 10 {
		t.Errorf("default top-expenses limit = %d, want 10", ts.reports.lastLimit)
	}
	ts.expect(http.MethodGet, "/api/goals/1/progress", token, nil, http.StatusNotFound)
}

func TestRecurringMaterialize(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("u@example.com")
	acc := decode[models.Account](t, ts.expect(http.MethodPost, "/api/accounts", token,
		map[string]any{"name": "Card", "type": "debit_card"}, http.StatusCreated))

	tmpl := decode[models.RecurringTransaction](t, ts.expect(http.MethodPost, "/api/recurring-transactions", token, map[string]any{
		"account_id": acc.ID, "description": "Netflix", "amount": "9.99", "type": "expense",
		"interval": "monthly", "next_date": "2024-01-31",
	}, http.StatusCreated))

	path := fmt.Sprintf("/api/recurring-transactions/%d", tmpl.ID)
	txn := decode[models.Transaction](t, ts.expect(http.MethodPost, path+"/materialize", token, nil, http.StatusCreated))
	if txn.Date.String() != "2024-01-31" || !txn.IsRecurring {
		t.Errorf("materialized = %+v", txn)
	}
	got := decode[models.RecurringTransaction](t, ts.expect(http.MethodGet, path, token, nil, http.StatusOK))
	if got.NextDate.String() != "2024-02-29" {
		t.Errorf("next_date = %s, want 2024-02-29", got.NextDate)
	}
}

func TestExports(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("u@example.com")
	acc := decode[models.Account](t, ts.expect(http.MethodPost, "/api/accounts", token,
		map[string]any{"name": "Card", "type": "debit_card"}, http.StatusCreated))
	ts.expect(http.MethodPost, "/api/transactions", token, map[string]any{
		"account_id": acc.ID, "amount": "7.00", "type": "expense",
		"date": "2024-05-05", "payee": "Cafe",
	}, http.StatusCreated)

	w, _ := ts.do(http.MethodGet, "/api/transactions/export/csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("csv export = %d", w.Code)
	}
	body := strings.TrimPrefix(w.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Cafe") || !strings.Contains(lines[1], "Card") {
		t.Errorf("csv export = %q", body)
	}

	w, _ = ts.do(http.MethodGet, "/api/transactions/export/xlsx", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("xlsx export = %d", w.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "Date" || rows[1][0] != "2024-05-05" {
		t.Errorf("xlsx rows = %v", rows)
	}
}

func TestAuditTrailAndUserDelete(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("u@example.com")
	ts.expect(http.MethodPost, "/api/tags", token, map[string]any{"name": "audited"}, http.StatusCreated)

	type logEntry struct {
		Method string `json:"method"`
		Path   string `json:"path"`
		Action string `json:"action"`
		Status int    `json:"status"`
	}
	logs := decode[[]logEntry](t, ts.expect(http.MethodGet, "/api/audit-logs", token, nil, http.StatusOK))
	var found bool
	for _, l := range logs {
		if l.Method == http.MethodPost && l.Path == "/api/tags" && strings.Contains(l.Action, "audited") && l.Status == http.StatusCreated {
			found = true
		}
	}
	if !found {
		t.Errorf("audit logs %+v missing the tag create", logs)
	}

	var stored models.AuditLog
	if err := ts.store.DB().Where("method = ?", http.MethodPost).First(&stored).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	if strings.Contains(stored.ActionEnc, "audited") {
		t.Error("audit action stored in plaintext")
	}

	me := decode[models.User](t, ts.expect(http.MethodGet, "/api/auth/me", token, nil, http.StatusOK))
	ts.expect(http.MethodDelete, "/api/auth/me", token, nil, http.StatusNoContent)
	ts.expect(http.MethodGet, "/api/auth/me", token, nil, http.StatusUnauthorized)

	var owned int64
	if err := ts.store.DB().Model(&models.AuditLog{}).Where("user_id = ?", me.ID).Count(&owned).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if owned != 0 {
		t.Errorf("audit rows still owned by deleted user = %d, want 0", owned)
	}
	var detached int64
	if err := ts.store.DB().Model(&models.AuditLog{}).
		Where("user_id IS NULL AND method = ? AND status = ?", http.MethodDelete, http.StatusNoContent).
		Count(&detached).Error; err != nil {
		t.Fatalf("count detached audit rows: %v", err)
	}
	if detached != 1 {
		t.Errorf("detached DELETE audit rows = %d, want 1", detached)
	}

	ts.expect(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "u@example.com", "password": "password123"}, http.StatusCreated)
}

func TestBackups(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("u@example.com")
	ts.expect(http.MethodPost, "/api/accounts", token, map[string]any{"name": "Card", "type": "debit_card"}, http.StatusCreated)

	type backup struct {
		ID       uint   `json:"id"`
		FileName string `json:"file_name"`
		Size     int64  `json:"size"`
	}
	b := decode[backup](t, ts.expect(http.MethodPost, "/api/backups", token, nil, http.StatusCreated))
	if b.Size == 0 || !strings.HasSuffix(b.FileName, ".bin") {
		t.Errorf("backup = %+v", b)
	}
	list := decode[[]backup](t, ts.expect(http.MethodGet, "/api/backups", token, nil, http.StatusOK))
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("list = %+v", list)
	}

	path := fmt.Sprintf("/api/backups/%d", b.ID)
	snap := decode[store.Snapshot](t, ts.expect(http.MethodGet, path+"/content", token, nil, http.StatusOK))
	if len(snap.Accounts) != 1 || snap.Accounts[0].Name != "Card" {
		t.Errorf("snapshot accounts = %+v", snap.Accounts)
	}

	w, _ := ts.do(http.MethodGet, path+"/download", token, nil)
	if w.Code != http.StatusOK || int64(w.Body.Len()) != b.Size || bytes.Contains(w.Body.Bytes(), []byte("Card")) {
		t.Errorf("download = %d, %d bytes; want %d encrypted bytes", w.Code, w.Body.Len(), b.Size)
	}

	other := ts.login("other@example.com")
	ts.expect(http.MethodGet, path+"/content", other, nil, http.StatusNotFound)

	ts.expect(http.MethodDelete, path, token, nil, http.StatusNoContent)
	entries, err := os.ReadDir(ts.backupDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("backup dir has %d files after delete, want 0", len(entries))
	}
}

func TestExports_WalkPastMaxPageSize(t *testing.T) {
	ts := newTestServerWithPageSize(t, 40)
	token := ts.login("u@example.com")
	me := decode[models.User](t, ts.expect(http.MethodGet, "/api/auth/me", token, nil, http.StatusOK))
	acc := decode[models.Account](t, ts.expect(http.MethodPost, "/api/accounts", token,
		map[string]any{"name": "Card", "type": "debit_card"}, http.StatusCreated))

	const n = 95
	for i := 0; i < n; i++ {
		_, err := ts.store.Transactions.Create(context.Background(), me.ID, store.TransactionInput{
			AccountID: acc.ID, Amount: decimal.NewFromInt(int64(i + 1)),
			Type: models.TransactionExpense, Date: models.NewDate(2024, 1, 1+i%28),
		})
		if err != nil {
			t.Fatalf("create transaction %d: %v", i, err)
		}
	}

	w, _ := ts.do(http.MethodGet, "/api/transactions/export/csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("csv export = %d", w.Code)
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(w.Body.String(), "\ufeff")), "\n")
	if got := len(lines) - 1; got != n {
		t.Errorf("csv data rows = %d, want %d", got, n)
	}

	w, _ = ts.do(http.MethodGet, "/api/transactions/export/xlsx", token, nil)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if got := len(rows) - 1; got != n {
		t.Errorf("xlsx data rows = %d, want %d", got, n)
	}
}
