package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shellnote/internal/model"
)

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByOwner(ctx context.Context, ownerID, categoryID uint) (*model.Category, error) {
	args := m.Called(ctx, ownerID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Rename(ctx context.Context, ownerID, categoryID uint, name string) error {
	args := m.Called(ctx, ownerID, categoryID, name)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteDetaching(ctx context.Context, ownerID, categoryID uint) error {
	args := m.Called(ctx, ownerID, categoryID)
	return args.Error(0)
}

// memoryKV is an in-process stand-in for the fail-safe Redis wrapper.
type memoryKV struct {
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (kv *memoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	return kv.data[key], nil
}

func (kv *memoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	kv.data[key] = value
	return nil
}

func (kv *memoryKV) Delete(ctx context.Context, key string) error {
	delete(kv.data, key)
	return nil
}

func TestCachedCategoryRepository_ListIsServedFromCache(t *testing.T) {
	inner := new(MockCategoryRepository)
	kv := newMemoryKV()
	categories := []model.Category{{ID: 1, UserID: 7, Name: "work"}}

	// The database is hit exactly once; the second listing comes from cache.
	inner.On("ListByOwner", mock.Anything, uint(7)).Return(categories, nil).Once()

	repo := NewCachedCategoryRepository(inner, kv)
	first, err := repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)
	second, err := repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)

	assert.Equal(t, categories, first)
	assert.Equal(t, categories, second)
	inner.AssertExpectations(t)
}

func TestCachedCategoryRepository_WritesInvalidate(t *testing.T) {
	inner := new(MockCategoryRepository)
	kv := newMemoryKV()

	inner.On("ListByOwner", mock.Anything, uint(7)).Return([]model.Category{}, nil).Twice()
	inner.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	repo := NewCachedCategoryRepository(inner, kv)
	_, err := repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)

	err = repo.Create(context.Background(), &model.Category{UserID: 7, Name: "life"})
	assert.NoError(t, err)

	// The entry was dropped, so the next listing goes back to the database.
	_, err = repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)
	inner.AssertExpectations(t)
}

func TestCachedCategoryRepository_FailedWriteKeepsCache(t *testing.T) {
	inner := new(MockCategoryRepository)
	kv := newMemoryKV()

	inner.On("ListByOwner", mock.Anything, uint(7)).Return([]model.Category{}, nil).Once()
	inner.On("Rename", mock.Anything, uint(7), uint(3), "life").Return(errors.New("boom"))

	repo := NewCachedCategoryRepository(inner, kv)
	_, err := repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)

	err = repo.Rename(context.Background(), 7, 3, "life")
	assert.Error(t, err)

	// Nothing changed in the database, so the cached entry is still good.
	_, err = repo.ListByOwner(context.Background(), 7)
	assert.NoError(t, err)
	inner.AssertExpectations(t)
}

func TestCachedCategoryRepository_GarbagePayloadFallsThrough(t *testing.T) {
	inner := new(MockCategoryRepository)
	kv := newMemoryKV()
	kv.data[categoryCacheKey(7)] = []byte("not json")

	inner.On("ListByOwner", mock.Anything, uint(7)).Return([]model.Category{{ID: 1, UserID: 7, Name: "work"}}, nil).Once()

	repo := NewCachedCategoryRepository(inner, kv)
	categories, err := repo.ListByOwner(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, categories, 1)
	inner.AssertExpectations(t)
}
