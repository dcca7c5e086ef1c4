package models

import "time"

// Customer is billed through invoices but only referenced by id: deleting a
// customer never touches its invoices.
type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" validate:"omitempty,uuid4"`
	Name      string    `gorm:"not null;index" json:"name" validate:"required,min=2"`
	Email     string    `gorm:"not null" json:"email" validate:"required,email"`
	Address   string    `gorm:"not null" json:"address" validate:"required,min=5"`
	VATNumber string    `gorm:"not null" json:"vatNumber" validate:"required,min=5"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
