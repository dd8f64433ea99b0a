package repository

import (
	"context"

	"gorm.io/gorm"

	"shellnote/internal/model"
)

// NoteFilter narrows a note listing by category.
type NoteFilter int

const (
	// FilterAll returns every note of the owner.
	FilterAll NoteFilter = iota
	// FilterUncategorized returns notes with no category.
	FilterUncategorized
	// FilterByCategory returns notes in one concrete category.
	FilterByCategory
)

// legacyNoteColumns are the note columns that exist before the categories
// migration; queries against a degraded schema must not touch category_id.
var legacyNoteColumns = []string{"id", "user_id", "title", "content", "theme", "created_at", "updated_at"}

// NoteRepository defines note persistence operations, including the
// pre-category query shapes used while the categories migration is absent.
type NoteRepository interface {
	List(ctx context.Context, ownerID uint, filter NoteFilter, categoryID uint, withCategory bool) ([]model.Note, error)
	FindByOwner(ctx context.Context, ownerID, noteID uint, withCategory bool) (*model.Note, error)
	Create(ctx context.Context, note *model.Note, withCategory bool) error
	Update(ctx context.Context, note *model.Note, newFiles []model.NoteFile, withCategory bool) error
	// Delete removes the note and its attachment rows in one transaction and
	// returns the stored names of the blobs the caller must remove from disk.
	Delete(ctx context.Context, ownerID, noteID uint) ([]string, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository builds a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func attachmentsInIDOrder(db *gorm.DB) *gorm.DB {
	return db.Order("note_files.id ASC")
}

func (r *noteRepository) List(ctx context.Context, ownerID uint, filter NoteFilter, categoryID uint, withCategory bool) ([]model.Note, error) {
	q := r.db.WithContext(ctx).
		Preload("Files", attachmentsInIDOrder).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC")

	if !withCategory {
		q = q.Select(legacyNoteColumns)
	}

	switch filter {
	case FilterUncategorized:
		q = q.Where("category_id IS NULL")
	case FilterByCategory:
		q = q.Where("category_id = ?", categoryID)
	}

	var notes []model.Note
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) FindByOwner(ctx context.Context, ownerID, noteID uint, withCategory bool) (*model.Note, error) {
	q := r.db.WithContext(ctx).
		Preload("Files", attachmentsInIDOrder).
		Where("id = ? AND user_id = ?", noteID, ownerID)

	if !withCategory {
		q = q.Select(legacyNoteColumns)
	}

	var note model.Note
	if err := q.First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Create inserts the note row and all attachment rows in one transaction.
// On a degraded schema the category column is omitted from the insert.
func (r *noteRepository) Create(ctx context.Context, note *model.Note, withCategory bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Omit("Files")
		if !withCategory {
			insert = insert.Omit("CategoryID")
		}
		if err := insert.Create(note).Error; err != nil {
			return err
		}

		for i := range note.Files {
			note.Files[i].NoteID = note.ID
		}
		if len(note.Files) > 0 {
			if err := tx.Create(&note.Files).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update rewrites the note fields and appends new attachment rows in one
// transaction. updated_at refreshes via GORM's autoUpdateTime.
func (r *noteRepository) Update(ctx context.Context, note *model.Note, newFiles []model.NoteFile, withCategory bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := map[string]interface{}{
			"title":   note.Title,
			"content": note.Content,
			"theme":   note.Theme,
		}
		if withCategory {
			columns["category_id"] = note.CategoryID
		}
		if err := tx.Model(&model.Note{}).
			Where("id = ? AND user_id = ?", note.ID, note.UserID).
			Updates(columns).Error; err != nil {
			return err
		}

		for i := range newFiles {
			newFiles[i].NoteID = note.ID
		}
		if len(newFiles) > 0 {
			if err := tx.Create(&newFiles).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes attachment rows and the note row together, so a crash can
// leave at most orphaned blobs on disk, never a note pointing at deleted
// attachments.
func (r *noteRepository) Delete(ctx context.Context, ownerID, noteID uint) ([]string, error) {
	var storedNames []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note model.Note
		if err := tx.Select(legacyNoteColumns).
			Where("id = ? AND user_id = ?", noteID, ownerID).
			First(&note).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.NoteFile{}).
			Where("note_id = ?", noteID).
			Pluck("stored_name", &storedNames).Error; err != nil {
			return err
		}

		if err := tx.Where("note_id = ?", noteID).Delete(&model.NoteFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Note{}, noteID).Error
	})
	if err != nil {
		return nil, err
	}
	return storedNames, nil
}
