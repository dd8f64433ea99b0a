package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shellnote/internal/db"
	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
	"shellnote/internal/repository"
)

// CategoryService handles per-user note categories. Every operation requires
// the categories schema; on a database without the migration it refuses with
// ErrMigrationRequired instead of failing mid-query.
type CategoryService interface {
	List(ctx context.Context, ownerID uint) ([]model.Category, error)
	Create(ctx context.Context, ownerID uint, name string) (*model.Category, error)
	Rename(ctx context.Context, ownerID, categoryID uint, name string) error
	Delete(ctx context.Context, ownerID, categoryID uint) error
}

type categoryService struct {
	categories repository.CategoryRepository
	caps       db.Capabilities
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories repository.CategoryRepository, caps db.Capabilities) CategoryService {
	return &categoryService{
		categories: categories,
		caps:       caps,
	}
}

func (s *categoryService) List(ctx context.Context, ownerID uint) ([]model.Category, error) {
	if !s.caps.Categories {
		return nil, apperrors.ErrMigrationRequired
	}
	return s.categories.ListByOwner(ctx, ownerID)
}

func (s *categoryService) Create(ctx context.Context, ownerID uint, name string) (*model.Category, error) {
	if !s.caps.Categories {
		return nil, apperrors.ErrMigrationRequired
	}
	name, err := parseCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &model.Category{UserID: ownerID, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, ownerID, categoryID uint, name string) error {
	if !s.caps.Categories {
		return apperrors.ErrMigrationRequired
	}
	name, err := parseCategoryName(name)
	if err != nil {
		return err
	}

	if err := s.categories.Rename(ctx, ownerID, categoryID, name); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.ErrCategoryNotFound
		case errors.Is(err, apperrors.ErrDuplicateKey):
			return apperrors.ErrCategoryExists
		}
		return fmt.Errorf("rename category: %w", err)
	}
	return nil
}

// Delete removes the category. Notes under it are detached, never deleted;
// the repository guarantees detach-before-delete in one transaction.
func (s *categoryService) Delete(ctx context.Context, ownerID, categoryID uint) error {
	if !s.caps.Categories {
		return apperrors.ErrMigrationRequired
	}
	if err := s.categories.DeleteDetaching(ctx, ownerID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func parseCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrCategoryNameRequired
	}
	if len([]rune(name)) > model.MaxCategoryNameLen {
		return "", apperrors.ErrCategoryNameTooLong
	}
	return name, nil
}
