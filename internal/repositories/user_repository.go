package repositories

import "kontak/internal/models"

// UserRepository defines the interface for user and role data access.
// Lookups return (nil, nil) when no row matches; callers decide whether
// absence is an error.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Activate(user *models.User) error
	UpdateAvatar(email, url string) (*models.User, error)
	GetRoleByName(name string) (*models.Role, error)
}
