package services

import (
	"errors"
	"fmt"
	"log"

	"kontak/internal/apperrors"
	"kontak/internal/models"
	"kontak/internal/repositories"
	"kontak/pkg/mailer"
	"kontak/pkg/queue"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EmailPublisher hands an email job off to the background delivery queue.
type EmailPublisher interface {
	PublishEmail(job queue.EmailJob) error
}

// AvatarResolver derives an avatar URL for an email address. It never
// fails; on any lookup problem it returns a default URL.
type AvatarResolver interface {
	Lookup(email string) string
}

// TokenPair is the response shape for login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService handles registration, email verification, login and token
// refresh.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokens    *TokenService
	publisher EmailPublisher
	avatars   AvatarResolver
	baseURL   string
}

// NewAuthService creates a new AuthService. publisher may be nil, in which
// case verification emails are skipped with a log line.
func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *TokenService,
	publisher EmailPublisher,
	avatars AvatarResolver,
	baseURL string,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		publisher: publisher,
		avatars:   avatars,
		baseURL:   baseURL,
	}
}

// Register creates a new inactive user and enqueues a verification email.
// A duplicate email yields apperrors.ErrConflict; enqueue failures are
// logged and never fail the registration.
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account already registered", apperrors.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role, err := s.userRepo.GetRoleByName(models.RoleUser)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("role %s is not seeded", models.RoleUser)
	}

	avatar := s.avatars.Lookup(email)
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Avatar:   &avatar,
		IsActive: false,
		RoleID:   role.ID,
		Role:     *role,
	}
	if err := s.userRepo.Create(user); err != nil {
		// The read-then-write duplicate check is racy; the unique index
		// turns the race into a conflict instead of a second row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: account already registered", apperrors.ErrConflict)
		}
		return nil, err
	}

	s.enqueueVerificationEmail(user.Email)
	return user, nil
}

// enqueueVerificationEmail mints a verification token, renders the email
// body and hands delivery off to the queue. The request path never waits on
// delivery and never fails because of it.
func (s *AuthService) enqueueVerificationEmail(email string) {
	token, err := s.tokens.CreateVerificationToken(email)
	if err != nil {
		log.Printf("Failed to mint verification token for %s: %v", email, err)
		return
	}
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token)
	body, err := mailer.RenderVerificationEmail(link)
	if err != nil {
		log.Printf("Failed to render verification email for %s: %v", email, err)
		return
	}
	if s.publisher == nil {
		log.Println("Email queue is not configured. Skipping verification email.")
		return
	}
	job := queue.EmailJob{To: email, Subject: "Verify your email", Body: body}
	if err := s.publisher.PublishEmail(job); err != nil {
		log.Printf("Warning: failed to enqueue verification email for %s: %v", email, err)
	}
}

// VerifyEmail decodes a verification token and activates the referenced
// user. Activating an already active user is a no-op.
func (s *AuthService) VerifyEmail(token string) error {
	email, err := s.tokens.DecodeVerificationToken(token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
	}
	return s.userRepo.Activate(user)
}

// Login authenticates by username and password and returns a fresh token
// pair. Unknown username, wrong password and an unverified account all
// yield the same generic unauthorized error, so callers cannot probe for
// account existence.
func (s *AuthService) Login(username, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
	}
	return s.mintPair(user.Username)
}

// Refresh decodes a refresh token (same claim shape as access), resolves
// the user and mints a fresh pair. The old refresh token stays valid until
// it expires; there is no revocation list.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	username, err := s.tokens.DecodeAccessToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
	}
	return s.mintPair(user.Username)
}

// CurrentUser resolves the user referenced by an access token for use as
// the current user in protected endpoints.
func (s *AuthService) CurrentUser(accessToken string) (*models.User, error) {
	username, err := s.tokens.DecodeAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", apperrors.ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) mintPair(username string) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
