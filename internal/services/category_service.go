package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwatch/internal/core"
)

// CategoryService manages user categories. Default categories are
// visible to everyone but cannot be renamed or deleted.
type CategoryService struct {
	categories CategoryStore
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.categories.ListCategories(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.categories.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := s.categories.GetCategoryByName(ctx, c.UserID, c.Name); err == nil {
		return core.ErrDuplicateName
	} else if !errors.Is(err, core.ErrCategoryNotFound) {
		return fmt.Errorf("check category name: %w", err)
	}

	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID, "user_id", c.UserID, "name", c.Name)
	return nil
}

func (s *CategoryService) Update(ctx context.Context, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}

	existing, err := s.categories.GetCategory(ctx, c.UserID, c.ID)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return core.ErrCategoryImmutable
	}
	if c.Name != existing.Name {
		if _, err := s.categories.GetCategoryByName(ctx, c.UserID, c.Name); err == nil {
			return core.ErrDuplicateName
		} else if !errors.Is(err, core.ErrCategoryNotFound) {
			return fmt.Errorf("check category name: %w", err)
		}
	}

	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category updated", "id", c.ID, "user_id", c.UserID)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	existing, err := s.categories.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return core.ErrCategoryImmutable
	}

	inUse, err := s.categories.CategoryInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if inUse {
		return core.ErrCategoryInUse
	}

	if err := s.categories.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id, "user_id", userID)
	return nil
}
