package model

import "time"

// Note themes. Anything else normalizes to ThemeLight.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NormalizeTheme maps arbitrary input onto a valid theme, defaulting to light.
func NormalizeTheme(theme string) string {
	if theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Note is a rich-text document owned by a single user. CategoryID is nil for
// uncategorized notes and stays nil on databases where the categories
// migration has not been applied.
type Note struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"-" gorm:"not null;index"`
	CategoryID *uint      `json:"categoryId,omitempty" gorm:"index"`
	Title      string     `json:"title" gorm:"size:255;not null"`
	Content    string     `json:"content" gorm:"type:longtext"`
	Theme      string     `json:"theme" gorm:"size:10;not null;default:light"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// CategoryName is denormalized into responses when the category resolves.
	CategoryName *string `json:"categoryName,omitempty" gorm:"-"`

	Files []NoteFile `json:"files" gorm:"foreignKey:NoteID"`
}
