package repositories

import (
	"errors"
	"fmt"

	"kontak/internal/apperrors"
	"kontak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create persists a new user. The unique indexes on email and username make
// a concurrent duplicate registration surface as gorm.ErrDuplicatedKey
// instead of a second row.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username, with the role preloaded.
// Returns (nil, nil) when no such user exists.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Role").First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, with the role preloaded.
// Returns (nil, nil) when no such user exists.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Role").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Activate sets the active flag and persists it. Activating an already
// active user is a no-op.
func (r *GORMUserRepository) Activate(user *models.User) error {
	if user.IsActive {
		return nil
	}
	user.IsActive = true
	if err := r.db.Model(user).Update("is_active", true).Error; err != nil {
		return fmt.Errorf("failed to activate user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateAvatar loads the user by email, sets the avatar URL and persists it.
func (r *GORMUserRepository) UpdateAvatar(email, url string) (*models.User, error) {
	user, err := r.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user with email %s", apperrors.ErrNotFound, email)
	}
	user.Avatar = &url
	if err := r.db.Model(user).Update("avatar", url).Error; err != nil {
		return nil, fmt.Errorf("failed to update avatar for %s: %w", email, err)
	}
	return user, nil
}

// GetRoleByName retrieves a role by its name. Returns (nil, nil) when the
// role is not seeded.
func (r *GORMUserRepository) GetRoleByName(name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.First(&role, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role %s: %w", name, err)
	}
	return &role, nil
}
