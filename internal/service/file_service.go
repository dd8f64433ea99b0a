package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "shellnote/internal/errors"
	"shellnote/internal/repository"
	"shellnote/internal/storage"
)

// FileService resolves attachment downloads. Access is always through the
// owning note, so someone else's file id behaves like a missing one.
type FileService interface {
	// Download returns the on-disk path of the blob and the name the file
	// should be served under.
	Download(ctx context.Context, ownerID, fileID uint) (path, downloadName string, err error)
}

type fileService struct {
	files repository.FileRepository
	blobs storage.BlobStore
}

// NewFileService creates a new file service.
func NewFileService(files repository.FileRepository, blobs storage.BlobStore) FileService {
	return &fileService{
		files: files,
		blobs: blobs,
	}
}

func (s *fileService) Download(ctx context.Context, ownerID, fileID uint) (string, string, error) {
	file, err := s.files.FindForOwner(ctx, ownerID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrFileNotFound
		}
		return "", "", fmt.Errorf("find file: %w", err)
	}

	// A row without a blob is a corrupt attachment; to the caller it is gone.
	if !s.blobs.Exists(file.StoredName) {
		return "", "", apperrors.ErrFileNotFound
	}
	return s.blobs.Path(file.StoredName), file.OriginalName, nil
}
