package models

import "time"

type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" validate:"omitempty,uuid4"`
	Name        string    `gorm:"not null;index" json:"name" validate:"required,min=2"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price" validate:"gte=0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
