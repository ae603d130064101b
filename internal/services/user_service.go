package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"kontak/internal/apperrors"
	"kontak/internal/models"
	"kontak/internal/repositories"
)

// ImageStore uploads images to an external host and builds the public URL
// they are served from.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (version string, err error)
	PublicURL(key, version string) string
}

// UserService handles the profile flow: reading the current user is a
// handler passthrough, so the only logic here is the avatar update.
type UserService struct {
	userRepo repositories.UserRepository
	images   ImageStore
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, images ImageStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		images:   images,
	}
}

// UpdateAvatar uploads the image under a key derived from the username, so
// repeated uploads overwrite the previous one, then persists the versioned
// public URL. Upload failures surface as ErrUploadFailed.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, file io.Reader, contentType string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	key := fmt.Sprintf("avatars/%s", user.Username)
	version, err := s.images.Upload(ctx, key, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
	}
	url := s.images.PublicURL(key, version)

	updated, err := s.userRepo.UpdateAvatar(user.Email, url)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
