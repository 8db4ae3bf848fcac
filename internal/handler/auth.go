package handler

import (
	"net/http"
	"strings"

	"finflow/internal/auth"
	"finflow/internal/logging"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and the session endpoints.
type AuthHandler struct {
	base
	users *store.UserStore
	auth  *auth.Service
}

func NewAuthHandler(users *store.UserStore, svc *auth.Service, log *logging.Logger) *AuthHandler {
	return &AuthHandler{
		base:  newBase(log, 0),
		users: users,
		auth:  svc,
	}
}

// ---------- register ----------

func (h *AuthHandler) Register(c *gin.Context) {
	var in store.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	h.log.Info("user registered", "user_id", user.ID)
	util.Success(c, http.StatusCreated, user)
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login accepts a JSON body {email, password} or an OAuth2 password form
// (username, password).
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if !bindJSON(c, &req) {
			return
		}
	} else {
		req.Email = c.PostForm("username")
		req.Password = c.PostForm("password")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	util.Success(c, http.StatusOK, token)
}

// ---------- session ----------

func (h *AuthHandler) Me(c *gin.Context) {
	util.Success(c, http.StatusOK, currentUser(c))
}

// Logout revokes the session behind the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetString(CtxSessionKey)); err != nil {
		h.fail(c, err, "Session")
		return
	}
	c.Status(http.StatusNoContent)
}
