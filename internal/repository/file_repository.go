package repository

import (
	"context"

	"gorm.io/gorm"

	"shellnote/internal/model"
)

// FileRepository defines attachment lookups. Attachments are only reachable
// through the owning note, so every query joins the notes table for the
// owner check.
type FileRepository interface {
	FindForOwner(ctx context.Context, ownerID, fileID uint) (*model.NoteFile, error)
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository builds a GORM-backed repository.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) FindForOwner(ctx context.Context, ownerID, fileID uint) (*model.NoteFile, error) {
	var file model.NoteFile
	if err := r.db.WithContext(ctx).
		Joins("INNER JOIN notes ON notes.id = note_files.note_id").
		Where("note_files.id = ? AND notes.user_id = ?", fileID, ownerID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}
