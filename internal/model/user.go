package model

import "time"

// User represents a registered account.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	AgreePrivacy   bool      `json:"agreePrivacy" gorm:"not null;default:false"`
	AgreeTerms     bool      `json:"agreeTerms" gorm:"not null;default:false"`
	AgreeMarketing bool      `json:"agreeMarketing" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicUser is the subset of User returned by auth endpoints.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips everything clients must not see, most importantly the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
