package store

import (
	"context"
	"strings"

	"finflow/internal/models"
	"finflow/internal/util"
)

type TagInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type TagPatch struct {
	Name  Optional[string] `json:"name"`
	Color Optional[string] `json:"color"`
}

type TagStore struct {
	scoped[models.Tag]
}

func (s *TagStore) List(ctx context.Context, owner uint, p Page) ([]models.Tag, error) {
	return s.list(ctx, owner, p)
}

func (s *TagStore) Get(ctx context.Context, owner, id uint) (*models.Tag, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *TagStore) Create(ctx context.Context, owner uint, in TagInput) (*models.Tag, error) {
	t := &models.Tag{UserID: owner, Name: strings.TrimSpace(in.Name), Color: in.Color}
	if err := validateTag(t); err != nil {
		return nil, err
	}
	if err := s.create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TagStore) Update(ctx context.Context, owner, id uint, p TagPatch) (*models.Tag, error) {
	t, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}
	if err := assign("name", &t.Name, p.Name); err != nil {
		return nil, err
	}
	assignPtr(&t.Color, p.Color)

	t.Name = strings.TrimSpace(t.Name)
	if err := validateTag(t); err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.db, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete also drops the tag from every transaction carrying it.
func (s *TagStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

func validateTag(t *models.Tag) error {
	if err := util.ValidateName(t.Name, 100); err != nil {
		return invalid("name", err)
	}
	if t.Color != nil {
		if err := util.ValidateColor(*t.Color); err != nil {
			return invalid("color", err)
		}
	}
	return nil
}
