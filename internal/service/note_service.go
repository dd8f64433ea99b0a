package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shellnote/internal/db"
	apperrors "shellnote/internal/errors"
	"shellnote/internal/model"
	"shellnote/internal/repository"
	"shellnote/internal/storage"
)

// titleTimestampLayout formats the default title for untitled notes.
const titleTimestampLayout = "2006-01-02 15:04:05"

// NoteInput carries the writable note fields as they arrive from a multipart
// form; CategoryID stays raw because "", "none", and a number all mean
// different things.
type NoteInput struct {
	Title      string
	Content    string
	Theme      string
	CategoryID string
}

// Upload is one incoming file with lazily-opened content.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// NoteService handles per-user notes and their attachments.
type NoteService interface {
	List(ctx context.Context, ownerID uint, rawCategoryFilter string) ([]model.Note, error)
	Get(ctx context.Context, ownerID, noteID uint) (*model.Note, error)
	Create(ctx context.Context, ownerID uint, input NoteInput, uploads []Upload) (uint, error)
	Update(ctx context.Context, ownerID, noteID uint, input NoteInput, uploads []Upload) error
	Delete(ctx context.Context, ownerID, noteID uint) error
}

type noteService struct {
	notes      repository.NoteRepository
	categories repository.CategoryRepository
	blobs      storage.BlobStore
	caps       db.Capabilities
}

// NewNoteService creates a new note service.
func NewNoteService(
	notes repository.NoteRepository,
	categories repository.CategoryRepository,
	blobs storage.BlobStore,
	caps db.Capabilities,
) NoteService {
	return &noteService{
		notes:      notes,
		categories: categories,
		blobs:      blobs,
		caps:       caps,
	}
}

// List returns the owner's notes, most recently updated first. The raw
// filter is "" for all notes, "none" for uncategorized ones, or a category
// id. Category filters on an unmigrated schema fail with
// ErrMigrationRequired rather than a broken query.
func (s *noteService) List(ctx context.Context, ownerID uint, rawCategoryFilter string) ([]model.Note, error) {
	filter, categoryID, err := parseCategoryFilter(rawCategoryFilter)
	if err != nil {
		return nil, err
	}
	if filter != repository.FilterAll && !s.caps.Categories {
		return nil, apperrors.ErrMigrationRequired
	}

	notes, err := s.notes.List(ctx, ownerID, filter, categoryID, s.caps.Categories)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var names map[uint]string
	if s.caps.Categories {
		names, err = s.categoryNames(ctx, ownerID)
		if err != nil {
			return nil, err
		}
	}
	for i := range notes {
		s.decorate(&notes[i], names)
	}
	return notes, nil
}

func (s *noteService) Get(ctx context.Context, ownerID, noteID uint) (*model.Note, error) {
	note, err := s.notes.FindByOwner(ctx, ownerID, noteID, s.caps.Categories)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}

	var names map[uint]string
	if s.caps.Categories && note.CategoryID != nil {
		names, err = s.categoryNames(ctx, ownerID)
		if err != nil {
			return nil, err
		}
	}
	s.decorate(note, names)
	return note, nil
}

// Create validates uploads before anything is persisted, so a rejected file
// leaves no note row, no attachment row, and no blob behind.
func (s *noteService) Create(ctx context.Context, ownerID uint, input NoteInput, uploads []Upload) (uint, error) {
	if err := checkUploadPolicy(uploads); err != nil {
		return 0, err
	}
	categoryID, err := s.resolveCategory(ctx, ownerID, input.CategoryID)
	if err != nil {
		return 0, err
	}

	note := &model.Note{
		UserID:     ownerID,
		CategoryID: categoryID,
		Title:      normalizeTitle(input.Title),
		Content:    input.Content,
		Theme:      model.NormalizeTheme(input.Theme),
	}

	files, err := s.saveBlobs(uploads)
	if err != nil {
		return 0, err
	}
	note.Files = files

	if err := s.notes.Create(ctx, note, s.caps.Categories); err != nil {
		s.removeBlobs(files)
		return 0, fmt.Errorf("create note: %w", err)
	}
	return note.ID, nil
}

// Update rewrites the note and appends any new uploads to the existing
// attachments; it never replaces them.
func (s *noteService) Update(ctx context.Context, ownerID, noteID uint, input NoteInput, uploads []Upload) error {
	if err := checkUploadPolicy(uploads); err != nil {
		return err
	}
	categoryID, err := s.resolveCategory(ctx, ownerID, input.CategoryID)
	if err != nil {
		return err
	}

	note, err := s.notes.FindByOwner(ctx, ownerID, noteID, s.caps.Categories)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoteNotFound
		}
		return fmt.Errorf("find note: %w", err)
	}

	note.CategoryID = categoryID
	note.Title = normalizeTitle(input.Title)
	note.Content = input.Content
	note.Theme = model.NormalizeTheme(input.Theme)

	files, err := s.saveBlobs(uploads)
	if err != nil {
		return err
	}

	if err := s.notes.Update(ctx, note, files, s.caps.Categories); err != nil {
		s.removeBlobs(files)
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// Delete removes the note with its attachment rows, then the blobs. A blob
// already missing from disk is logged and tolerated.
func (s *noteService) Delete(ctx context.Context, ownerID, noteID uint) error {
	storedNames, err := s.notes.Delete(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	for _, name := range storedNames {
		if err := s.blobs.Remove(name); err != nil {
			if os.IsNotExist(err) {
				logrus.WithField("blob", name).Warn("attachment blob already missing during note deletion")
				continue
			}
			logrus.WithError(err).WithField("blob", name).Error("failed to remove attachment blob")
		}
	}
	return nil
}

// resolveCategory turns the raw form value into a category reference.
// "" and "none" mean no category; a number must resolve to a category owned
// by the caller. Any concrete value on an unmigrated schema needs the
// migration first.
func (s *noteService) resolveCategory(ctx context.Context, ownerID uint, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "none" {
		return nil, nil
	}
	if !s.caps.Categories {
		return nil, apperrors.ErrMigrationRequired
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.ErrInvalidCategoryID
	}
	categoryID := uint(id)

	if _, err := s.categories.FindByOwner(ctx, ownerID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotUsable
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return &categoryID, nil
}

func (s *noteService) categoryNames(ctx context.Context, ownerID uint) (map[uint]string, error) {
	categories, err := s.categories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// decorate fills response-only fields: download URLs, an always-present
// files array, and the denormalized category name.
func (s *noteService) decorate(note *model.Note, categoryNames map[uint]string) {
	if note.Files == nil {
		note.Files = []model.NoteFile{}
	}
	for i := range note.Files {
		note.Files[i].FillURL()
	}
	if note.CategoryID != nil {
		if name, ok := categoryNames[*note.CategoryID]; ok {
			note.CategoryName = &name
		}
	}
}

func (s *noteService) saveBlobs(uploads []Upload) ([]model.NoteFile, error) {
	files := make([]model.NoteFile, 0, len(uploads))
	for _, u := range uploads {
		src, err := u.Open()
		if err != nil {
			s.removeBlobs(files)
			return nil, fmt.Errorf("open upload %q: %w", u.OriginalName, err)
		}
		storedName, err := s.blobs.Save(src, u.OriginalName)
		src.Close()
		if err != nil {
			s.removeBlobs(files)
			return nil, fmt.Errorf("store upload %q: %w", u.OriginalName, err)
		}
		files = append(files, model.NoteFile{
			OriginalName: u.OriginalName,
			StoredName:   storedName,
			MimeType:     u.MimeType,
			Size:         u.Size,
		})
	}
	return files, nil
}

// removeBlobs is best-effort cleanup after a failed create/update.
func (s *noteService) removeBlobs(files []model.NoteFile) {
	for _, f := range files {
		if err := s.blobs.Remove(f.StoredName); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("blob", f.StoredName).Warn("failed to clean up blob after aborted write")
		}
	}
}

func checkUploadPolicy(uploads []Upload) error {
	checks := make([]storage.Upload, 0, len(uploads))
	for _, u := range uploads {
		checks = append(checks, storage.Upload{
			OriginalName: u.OriginalName,
			MimeType:     u.MimeType,
			Size:         u.Size,
		})
	}
	return storage.CheckUploads(checks)
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return time.Now().Format(titleTimestampLayout)
	}
	return title
}

// parseCategoryFilter interprets the categoryId query parameter.
func parseCategoryFilter(raw string) (repository.NoteFilter, uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return repository.FilterAll, 0, nil
	}
	if raw == "none" {
		return repository.FilterUncategorized, 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, 0, apperrors.ErrInvalidCategoryID
	}
	return repository.FilterByCategory, uint(id), nil
}
