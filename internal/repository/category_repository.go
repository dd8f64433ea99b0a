package repository

import (
	"context"

	"gorm.io/gorm"

	"shellnote/internal/model"
)

// CategoryRepository defines category persistence operations. All lookups are
// owner-scoped; a category of another user is indistinguishable from a
// missing one.
type CategoryRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error)
	FindByOwner(ctx context.Context, ownerID, categoryID uint) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Rename(ctx context.Context, ownerID, categoryID uint, name string) error
	DeleteDetaching(ctx context.Context, ownerID, categoryID uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository builds a GORM-backed repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("name ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByOwner(ctx context.Context, ownerID, categoryID uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, ownerID).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a category. The (owner, name) unique index is the
// authoritative conflict signal; it comes back as ErrDuplicateKey.
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

// Rename updates the category name, reporting name collisions as
// ErrDuplicateKey and a missing/foreign category as gorm.ErrRecordNotFound.
func (r *categoryRepository) Rename(ctx context.Context, ownerID, categoryID uint, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND user_id = ?", categoryID, ownerID).
		Update("name", name)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// Either absent or a no-op rename to the same value; distinguish.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Category{}).
			Where("id = ? AND user_id = ?", categoryID, ownerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// DeleteDetaching detaches all notes under the category and deletes the row
// in one transaction. Detach-before-delete guarantees no dangling reference
// survives even without a database-level cascade.
func (r *categoryRepository) DeleteDetaching(ctx context.Context, ownerID, categoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.Where("id = ? AND user_id = ?", categoryID, ownerID).
			First(&category).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Note{}).
			Where("user_id = ? AND category_id = ?", ownerID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&category).Error
	})
}
