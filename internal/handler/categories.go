package handler

import (
	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"
)

type CategoryHandler struct {
	resource[models.Category, store.CategoryInput, store.CategoryPatch]
}

func NewCategoryHandler(s *store.CategoryStore, log *logging.Logger, pageSize int) *CategoryHandler {
	return &CategoryHandler{
		resource: resource[models.Category, store.CategoryInput, store.CategoryPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Category",
		},
	}
}

type TagHandler struct {
	resource[models.Tag, store.TagInput, store.TagPatch]
}

func NewTagHandler(s *store.TagStore, log *logging.Logger, pageSize int) *TagHandler {
	return &TagHandler{
		resource: resource[models.Tag, store.TagInput, store.TagPatch]{
			base:  newBase(log, pageSize),
			store: s,
			name:  "Tag",
		},
	}
}
