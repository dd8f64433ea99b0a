package model

import "fmt"

// NoteFile is an upload bound to exactly one note. Rows are immutable once
// created and only removed together with the parent note.
type NoteFile struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	NoteID       uint   `json:"-" gorm:"not null;index"`
	OriginalName string `json:"originalName" gorm:"size:255;not null"`
	StoredName   string `json:"storedName" gorm:"size:255;not null"`
	MimeType     string `json:"mimeType" gorm:"size:127;not null"`
	Size         int64  `json:"size" gorm:"not null"`

	// URL is the download route; files are never served by stored name.
	URL string `json:"url" gorm:"-"`
}

// TableName keeps the table name from the pre-Go schema.
func (NoteFile) TableName() string {
	return "note_files"
}

// FillURL sets the ownership-checked download location.
func (f *NoteFile) FillURL() {
	f.URL = fmt.Sprintf("/api/files/%d", f.ID)
}
