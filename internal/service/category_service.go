package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"github.com/iliyamo/atelier-booking/internal/docstore"
	"github.com/iliyamo/atelier-booking/internal/model"
	"github.com/iliyamo/atelier-booking/internal/repository"
)

// CategoryService manages workshop categories.  Slugs are unique; the
// check runs inside the transaction that writes, so two admins adding the
// same name at once cannot both succeed.
type CategoryService struct {
	Base
	Categories *repository.CategoryRepo
}

func NewCategoryService(b Base, categories *repository.CategoryRepo) *CategoryService {
	b.mustBeWired("category service")
	if categories == nil {
		panic("category service: nil category repo")
	}
	return &CategoryService{Base: b, Categories: categories}
}

func categoryName(raw string) (name, s string, err error) {
	name = strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < 2 {
		return "", "", invalid("name must be at least 2 characters", "name")
	}
	s = slug.Make(name)
	if s == "" {
		return "", "", invalid("name has no usable characters", "name")
	}
	return name, s, nil
}

// Add creates a category, failing with ErrConflict if its slug is taken.
func (s *CategoryService) Add(ctx context.Context, rawName string) (model.Category, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.Category{}, err
	}
	name, sl, err := categoryName(rawName)
	if err != nil {
		return model.Category{}, err
	}
	now := s.now()
	c := model.Category{ID: s.newID(), Name: name, Slug: sl, CreatedAt: now, UpdatedAt: now}
	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		if err := s.Categories.EnsureSlugFreeTx(ctx, tx, sl, ""); err != nil {
			return err
		}
		return s.Categories.CreateTx(tx, c)
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// Update renames a category.  The new slug may equal its own current one.
func (s *CategoryService) Update(ctx context.Context, id, rawName string) (model.Category, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return model.Category{}, err
	}
	name, sl, err := categoryName(rawName)
	if err != nil {
		return model.Category{}, err
	}
	var out model.Category
	err = s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		c, err := s.Categories.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.Categories.EnsureSlugFreeTx(ctx, tx, sl, id); err != nil {
			return err
		}
		c.Name, c.Slug, c.UpdatedAt = name, sl, s.now()
		out = c
		return s.Categories.PutTx(tx, c)
	})
	if err != nil {
		return model.Category{}, err
	}
	return out, nil
}

// Delete removes a category.  Workshops keep the category name they were
// saved with.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return err
	}
	return s.Store.RunTransaction(ctx, func(ctx context.Context, tx *docstore.Tx) error {
		if _, err := s.Categories.GetTx(ctx, tx, id); err != nil {
			return err
		}
		s.Categories.DeleteTx(tx, id)
		return nil
	})
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	if _, err := s.Guard.EnsureAdmin(ctx); err != nil {
		return nil, err
	}
	return s.Categories.List(ctx)
}
