// Package handler holds the gin handlers. Handlers parse and bind input,
// call the store with the caller's id as owner, and map store errors to
// HTTP statuses in one place (fail).
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"finflow/internal/auth"
	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/report"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware. CtxUserDeletedKey is set once
// the current user has been removed during the request.
const (
	CtxUserKey        = "currentUser"
	CtxSessionKey     = "sessionID"
	CtxUserDeletedKey = "userDeleted"
)

// base carries what every resource handler needs.
type base struct {
	log             *logging.Logger
	defaultPageSize int
}

func newBase(log *logging.Logger, defaultPageSize int) base {
	if log == nil {
		log = logging.Discard()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 100
	}
	return base{log: log.WithComponent(logging.ComponentHTTP), defaultPageSize: defaultPageSize}
}

// currentUser returns the user the auth middleware resolved. Routes using it
// are always behind that middleware.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// parsePage reads skip/limit. Bounds are checked by the store.
func (b base) parsePage(c *gin.Context) (store.Page, bool) {
	p := store.Page{Limit: b.defaultPageSize}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "skip must be an integer")
			return p, false
		}
		p.Offset = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "limit must be an integer")
			return p, false
		}
		p.Limit = n
	}
	return p, true
}

func parseDateQuery(c *gin.Context, name string) (*models.Date, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	d, err := models.ParseDate(v)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, fmt.Sprintf("%s must be YYYY-MM-DD", name))
		return nil, false
	}
	return &d, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail maps an error from the store, auth or report layer to a response.
// resource names the entity in not-found messages.
func (b base) fail(c *gin.Context, err error, resource string) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, ve.Error())
	case errors.Is(err, store.ErrInvalidReference):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidRef, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, report.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, resource+" not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		util.Error(c, http.StatusBadRequest, util.CodeDuplicate, "Email already registered")
	case errors.Is(err, store.ErrRestricted):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, store.ErrBadCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Incorrect email or password")
	case errors.Is(err, store.ErrLocked):
		c.Header("WWW-Authenticate", "Bearer")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Account temporarily locked, try again later")
	case errors.Is(err, auth.ErrInvalidToken):
		c.Header("WWW-Authenticate", "Bearer")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Could not validate credentials")
	case errors.Is(err, store.ErrInactiveUser):
		util.Error(c, http.StatusBadRequest, util.CodeInactive, "Inactive user")
	case errors.Is(err, report.ErrUnavailable):
		util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, err.Error())
	default:
		b.log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal server error")
	}
}

// Fail is fail for code outside the package (middleware).
func Fail(c *gin.Context, log *logging.Logger, err error) {
	newBase(log, 0).fail(c, err, "Resource")
}
