package handler

import (
	"net/http"

	"finflow/internal/auth"
	"finflow/internal/logging"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler lets the caller edit or delete their own user.
type ProfileHandler struct {
	base
	users   *store.UserStore
	auth    *auth.Service
	backups *BackupHandler
}

func NewProfileHandler(users *store.UserStore, svc *auth.Service, backups *BackupHandler, log *logging.Logger) *ProfileHandler {
	return &ProfileHandler{base: newBase(log, 0), users: users, auth: svc, backups: backups}
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var patch store.UserPatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), currentUser(c).ID, patch)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	util.Success(c, http.StatusOK, user)
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword also signs the user out everywhere.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req changePasswordReq
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		h.fail(c, err, "User")
		return
	}
	h.log.Info("password changed", "user_id", user.ID)
	util.Success(c, http.StatusOK, gin.H{"message": "password changed, please log in again"})
}

// Delete removes the caller and everything they own, backup files included.
func (h *ProfileHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	files, err := h.backups.userFiles(ctx, user.ID)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	if err := h.users.Delete(ctx, user.ID); err != nil {
		h.fail(c, err, "User")
		return
	}
	c.Set(CtxUserDeletedKey, true)
	h.backups.removeFiles(files...)
	h.log.Info("user deleted", "user_id", user.ID, "backup_files", len(files))
	c.Status(http.StatusNoContent)
}
