package handler

import (
	"context"
	"net/http"

	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// ownedStore is the CRUD surface every ownership-scoped store offers.
type ownedStore[T, In, P any] interface {
	List(ctx context.Context, owner uint, p store.Page) ([]T, error)
	Get(ctx context.Context, owner, id uint) (*T, error)
	Create(ctx context.Context, owner uint, in In) (*T, error)
	Update(ctx context.Context, owner, id uint, p P) (*T, error)
	Delete(ctx context.Context, owner, id uint) error
}

// resource serves list/get/create/update/delete for one ownedStore.
type resource[T, In, P any] struct {
	base
	store ownedStore[T, In, P]
	name  string
}

func (r resource[T, In, P]) List(c *gin.Context) {
	page, ok := r.parsePage(c)
	if !ok {
		return
	}
	items, err := r.store.List(c.Request.Context(), currentUser(c).ID, page)
	if err != nil {
		r.fail(c, err, r.name)
		return
	}
	util.Success(c, http.StatusOK, items)
}

func (r resource[T, In, P]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := r.store.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		r.fail(c, err, r.name)
		return
	}
	util.Success(c, http.StatusOK, item)
}

func (r resource[T, In, P]) Create(c *gin.Context) {
	var in In
	if !bindJSON(c, &in) {
		return
	}
	item, err := r.store.Create(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		r.fail(c, err, r.name)
		return
	}
	util.Success(c, http.StatusCreated, item)
}

func (r resource[T, In, P]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch P
	if !bindJSON(c, &patch) {
		return
	}
	item, err := r.store.Update(c.Request.Context(), currentUser(c).ID, id, patch)
	if err != nil {
		r.fail(c, err, r.name)
		return
	}
	util.Success(c, http.StatusOK, item)
}

func (r resource[T, In, P]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.store.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		r.fail(c, err, r.name)
		return
	}
	c.Status(http.StatusNoContent)
}
