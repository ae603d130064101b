package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact is an address-book entry owned by exactly one user. Every query
// against contacts is filtered by OwnerID; a contact id belonging to a
// different owner behaves as if it did not exist.
type Contact struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	FirstName      string     `json:"first_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	LastName       string     `json:"last_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Email          string     `json:"email" gorm:"type:varchar(255)" validate:"omitempty,email"`
	PhoneNumber    string     `json:"phone_number" gorm:"type:varchar(50)"`
	Birthday       *time.Time `json:"birthday"`
	AdditionalInfo string     `json:"additional_info" gorm:"type:text"`
	OwnerID        string     `json:"-" gorm:"index;type:varchar(36);not null"`
	gorm.Model     `json:"-"`
}
