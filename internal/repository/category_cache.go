package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shellnote/internal/model"
)

const categoryCacheTTL = 5 * time.Minute

// categoryKV is the slice of the cache client the repository needs.
type categoryKV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedCategoryRepository serves ListByOwner from the cache. Category lists
// are read on every note listing but change rarely, so every write simply
// drops the owner's entry. The cache is fail-safe: a miss, a stale payload,
// or unreachable Redis falls through to the database.
type cachedCategoryRepository struct {
	inner CategoryRepository
	kv    categoryKV
}

// NewCachedCategoryRepository wraps a repository with per-owner list caching.
func NewCachedCategoryRepository(inner CategoryRepository, kv categoryKV) CategoryRepository {
	return &cachedCategoryRepository{inner: inner, kv: kv}
}

func categoryCacheKey(ownerID uint) string {
	return fmt.Sprintf("categories:%d", ownerID)
}

func (r *cachedCategoryRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error) {
	key := categoryCacheKey(ownerID)
	if data, err := r.kv.Get(ctx, key); err == nil && data != nil {
		var categories []model.Category
		if json.Unmarshal(data, &categories) == nil {
			return categories, nil
		}
	}

	categories, err := r.inner.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(categories); err == nil {
		_ = r.kv.Set(ctx, key, data, categoryCacheTTL)
	}
	return categories, nil
}

func (r *cachedCategoryRepository) FindByOwner(ctx context.Context, ownerID, categoryID uint) (*model.Category, error) {
	return r.inner.FindByOwner(ctx, ownerID, categoryID)
}

func (r *cachedCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.inner.Create(ctx, category); err != nil {
		return err
	}
	_ = r.kv.Delete(ctx, categoryCacheKey(category.UserID))
	return nil
}

func (r *cachedCategoryRepository) Rename(ctx context.Context, ownerID, categoryID uint, name string) error {
	if err := r.inner.Rename(ctx, ownerID, categoryID, name); err != nil {
		return err
	}
	_ = r.kv.Delete(ctx, categoryCacheKey(ownerID))
	return nil
}

func (r *cachedCategoryRepository) DeleteDetaching(ctx context.Context, ownerID, categoryID uint) error {
	if err := r.inner.DeleteDetaching(ctx, ownerID, categoryID); err != nil {
		return err
	}
	_ = r.kv.Delete(ctx, categoryCacheKey(ownerID))
	return nil
}
