package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
)

// MockFileRepository is a mock implementation of FileRepository.
type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) FindForOwner(ctx context.Context, ownerID, fileID uint) (*model.NoteFile, error) {
	args := m.Called(ctx, ownerID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NoteFile), args.Error(1)
}

func TestFileService_Download(t *testing.T) {
	mockFiles := new(MockFileRepository)
	store := newTestBlobStore(t)

	storedName, err := store.Save(strings.NewReader("contents"), "report.pdf")
	assert.NoError(t, err)

	mockFiles.On("FindForOwner", mock.Anything, uint(1), uint(5)).Return(&model.NoteFile{
		ID:           5,
		OriginalName: "report.pdf",
		StoredName:   storedName,
	}, nil)

	svc := NewFileService(mockFiles, store)
	path, downloadName, err := svc.Download(context.Background(), 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, store.Path(storedName), path)
	assert.Equal(t, "report.pdf", downloadName)
}

func TestFileService_Download_UnknownOrForeignFile(t *testing.T) {
	mockFiles := new(MockFileRepository)
	mockFiles.On("FindForOwner", mock.Anything, uint(1), uint(5)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewFileService(mockFiles, newTestBlobStore(t))
	_, _, err := svc.Download(context.Background(), 1, 5)

	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestFileService_Download_MissingBlob(t *testing.T) {
	mockFiles := new(MockFileRepository)
	mockFiles.On("FindForOwner", mock.Anything, uint(1), uint(5)).Return(&model.NoteFile{
		ID:           5,
		OriginalName: "report.pdf",
		StoredName:   "gone.pdf",
	}, nil)

	// The row exists but the blob is gone; the caller sees a plain not-found.
	svc := NewFileService(mockFiles, newTestBlobStore(t))
	_, _, err := svc.Download(context.Background(), 1, 5)

	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}
