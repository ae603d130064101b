package models

import "gorm.io/gorm"

// Role names form a closed set; rows are seeded at startup and never
// created through the API.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Role is a named role referenced by many users.
type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(20)"`
}

// User represents an account. It is created inactive on registration and
// activated by email verification; it is never hard-deleted.
type User struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string  `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string  `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string  `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Avatar     *string `json:"avatar" gorm:"type:varchar(512)"`
	IsActive   bool    `json:"is_active" gorm:"default:false"`
	RoleID     uint    `json:"-"`
	Role       Role    `json:"role"`
	gorm.Model `json:"-"`
}
