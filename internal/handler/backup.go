package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackupHandler writes encrypted snapshots of the caller's data to the
// backup directory and serves them back.
type BackupHandler struct {
	base
	backups    *store.BackupStore
	encryptKey string
	dir        string
}

func NewBackupHandler(s *store.BackupStore, encryptKey, dir string, log *logging.Logger, pageSize int) *BackupHandler {
	return &BackupHandler{base: newBase(log, pageSize), backups: s, encryptKey: encryptKey, dir: dir}
}

type backupResp struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toBackupResp(b *models.Backup) backupResp {
	return backupResp{ID: b.ID, FileName: b.FileName, Size: b.Size, CreatedAt: b.CreatedAt}
}

// keyed rejects the request when no encryption key is configured.
func (h *BackupHandler) keyed(c *gin.Context) bool {
	if h.encryptKey == "" {
		util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "backups require security.encryption_key")
		return false
	}
	return true
}

func (h *BackupHandler) Create(c *gin.Context) {
	if !h.keyed(c) {
		return
	}
	user := currentUser(c)
	ctx := c.Request.Context()

	snap, err := h.backups.Snapshot(ctx, user.ID)
	if err != nil {
		h.fail(c, err, "Backup")
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		h.fail(c, fmt.Errorf("encode snapshot: %w", err), "Backup")
		return
	}
	enc, err := util.EncryptAES(h.encryptKey, raw)
	if err != nil {
		h.fail(c, fmt.Errorf("encrypt snapshot: %w", err), "Backup")
		return
	}

	if err := os.MkdirAll(h.dir, 0o700); err != nil {
		h.fail(c, fmt.Errorf("create backup dir: %w", err), "Backup")
		return
	}
	name := fmt.Sprintf("backup-%d-%s.bin", user.ID, uuid.NewString())
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, enc, 0o600); err != nil {
		h.fail(c, fmt.Errorf("write backup: %w", err), "Backup")
		return
	}

	b := &models.Backup{UserID: user.ID, FileName: name, FilePath: path, Size: int64(len(enc))}
	if err := h.backups.Create(ctx, b); err != nil {
		_ = os.Remove(path)
		h.fail(c, err, "Backup")
		return
	}
	h.log.Info("backup created", "user_id", user.ID, "backup_id", b.ID, "size", b.Size)
	util.Success(c, http.StatusCreated, toBackupResp(b))
}

func (h *BackupHandler) List(c *gin.Context) {
	page, ok := h.parsePage(c)
	if !ok {
		return
	}
	list, err := h.backups.List(c.Request.Context(), currentUser(c).ID, page)
	if err != nil {
		h.fail(c, err, "Backup")
		return
	}
	out := make([]backupResp, 0, len(list))
	for i := range list {
		out = append(out, toBackupResp(&list[i]))
	}
	util.Success(c, http.StatusOK, out)
}

func (h *BackupHandler) owned(c *gin.Context) (*models.Backup, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	b, err := h.backups.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err, "Backup")
		return nil, false
	}
	return b, true
}

// Download streams the encrypted file as stored.
func (h *BackupHandler) Download(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	if _, err := os.Stat(b.FilePath); err != nil {
		h.fail(c, h.missingFile(b, err), "Backup")
		return
	}
	c.FileAttachment(b.FilePath, b.FileName)
}

// Content decrypts a backup and returns the snapshot it holds.
func (h *BackupHandler) Content(c *gin.Context) {
	if !h.keyed(c) {
		return
	}
	b, ok := h.owned(c)
	if !ok {
		return
	}
	enc, err := os.ReadFile(b.FilePath)
	if err != nil {
		h.fail(c, h.missingFile(b, err), "Backup")
		return
	}
	raw, err := util.DecryptAES(h.encryptKey, enc)
	if err != nil {
		h.fail(c, fmt.Errorf("decrypt backup %d: %w", b.ID, err), "Backup")
		return
	}
	var snap store.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		h.fail(c, fmt.Errorf("decode backup %d: %w", b.ID, err), "Backup")
		return
	}
	util.Success(c, http.StatusOK, snap)
}

func (h *BackupHandler) Delete(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.backups.Delete(c.Request.Context(), b.UserID, b.ID); err != nil {
		h.fail(c, err, "Backup")
		return
	}
	h.removeFiles(b.FilePath)
	c.Status(http.StatusNoContent)
}

// missingFile turns a vanished backup file into a not-found.
func (h *BackupHandler) missingFile(b *models.Backup, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		h.log.Warn("backup file missing", "backup_id", b.ID, "path", b.FilePath)
		return store.ErrNotFound
	}
	return fmt.Errorf("read backup %d: %w", b.ID, err)
}

func (h *BackupHandler) removeFiles(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.log.Warn("remove backup file", "path", p, "error", err)
		}
	}
}

// userFiles returns the backup files of owner; call before the user row goes.
func (h *BackupHandler) userFiles(ctx context.Context, owner uint) ([]string, error) {
	return h.backups.Paths(ctx, owner)
}
