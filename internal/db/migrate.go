package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"shellnote/internal/model"
)

// Capabilities describes optional schema features resolved once at startup.
// The note and category services branch on this flag deliberately instead of
// retrying failed queries against a possibly missing schema.
type Capabilities struct {
	// Categories is true when the note_categories table and the
	// notes.category_id column both exist.
	Categories bool
}

// legacyNote mirrors model.Note before the categories migration. It exists
// only so the base migration can create the notes table without the
// category_id column.
type legacyNote struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:longtext"`
	Theme     string `gorm:"size:10;not null;default:light"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (legacyNote) TableName() string {
	return "notes"
}

// MigrateBase creates the schema every deployment needs: users, notes without
// category support, attachments, and reset tokens.
func MigrateBase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&legacyNote{},
		&model.NoteFile{},
		&model.PasswordResetToken{},
	); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}
	return nil
}

// MigrateCategories applies the optional categories migration: the
// note_categories table and the notes.category_id column. It is idempotent.
// Notes are detached in application code on category deletion, so no
// database-level cascade is required.
func MigrateCategories(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Category{}, &model.Note{}); err != nil {
		return fmt.Errorf("migrate categories schema: %w", err)
	}
	return nil
}

// Probe resolves schema capabilities by inspecting the live database.
func Probe(db *gorm.DB) Capabilities {
	m := db.Migrator()
	return Capabilities{
		Categories: m.HasTable(&model.Category{}) && m.HasColumn(&model.Note{}, "category_id"),
	}
}
