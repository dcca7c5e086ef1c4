package models

import "time"

// User represents an authenticated user. Authentication gates every route
// except login/signup; there is no role system.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
