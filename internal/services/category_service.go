package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"panini/internal/core"
	"panini/internal/storage"
)

// CategoryService manages spending categories.
type CategoryService struct {
	repo  *storage.SQLiteRepository
	now   func() time.Time
	newID func() string
}

// NewCategoryService creates a category service.
func NewCategoryService(repo *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{repo: repo, now: time.Now, newID: uuid.NewString}
}

func normalizeCategory(c core.Category) core.Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	c.Icon = strings.TrimSpace(c.Icon)
	return c
}

// Create validates c and stores it under a new id.
func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c = normalizeCategory(c)
	if errs := c.Validate(); len(errs) > 0 {
		return core.Category{}, errs
	}
	c.ID = s.newID()
	if err := s.repo.CreateCategory(ctx, c, s.now()); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// Update replaces the fields of an existing category.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	c = normalizeCategory(c)
	if errs := c.Validate(); len(errs) > 0 {
		return core.Category{}, errs
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// Delete fails with core.ErrInUse while transactions reference the category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// Get returns core.ErrNotFound for unknown ids.
func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.repo.ListCategories(ctx)
}
