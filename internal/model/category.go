package model

import "time"

// MaxCategoryNameLen is the longest accepted category name.
const MaxCategoryNameLen = 60

// Category is a per-user named grouping of notes. The (user_id, name) pair is
// unique; deleting a category detaches its notes instead of deleting them.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;index;uniqueIndex:uniq_note_categories_user_name"`
	Name      string    `json:"name" gorm:"size:60;not null;uniqueIndex:uniq_note_categories_user_name"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the table name from the pre-Go schema.
func (Category) TableName() string {
	return "note_categories"
}
