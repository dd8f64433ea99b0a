package model

import "time"

// PasswordResetToken stores the SHA-256 hash of a single-use reset token. The
// raw token only ever travels in the reset URL. Multiple live rows per user
// are allowed; the most recent match wins on consumption.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;index"`
	TokenHash string     `gorm:"size:64;not null;index"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time `gorm:""`
	CreatedAt time.Time
}

// TableName keeps the table name from the pre-Go schema.
func (PasswordResetToken) TableName() string {
	return "password_resets"
}

// Usable reports whether the token can still be consumed at the given time.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
