package services_test

import (
	"testing"

	"kontak/internal/apperrors"
	"kontak/internal/models"
	"kontak/internal/services"
	"kontak/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Activate(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatar(email, url string) (*models.User, error) {
	args := m.Called(email, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetRoleByName(name string) (*models.Role, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

// stubAvatarResolver always resolves the same URL.
type stubAvatarResolver struct{ url string }

func (s *stubAvatarResolver) Lookup(string) string { return s.url }

// recordingPublisher captures enqueued email jobs.
type recordingPublisher struct {
	jobs []queue.EmailJob
	err  error
}

func (p *recordingPublisher) PublishEmail(job queue.EmailJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func newAuthService(repo *MockUserRepository, publisher services.EmailPublisher) *services.AuthService {
	tokens := services.NewTokenService(testJWTConfig())
	return services.NewAuthService(repo, tokens, publisher, &stubAvatarResolver{url: "https://avatars.test/a.png"}, "http://localhost:8000")
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}
	authService := newAuthService(mockRepo, publisher)

	userRole := &models.Role{ID: 2, Name: models.RoleUser}
	mockRepo.On("GetByEmail", "new@example.com").Return(nil, nil).Once()
	mockRepo.On("GetRoleByName", models.RoleUser).Return(userRole, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.Register("newuser", "new@example.com", "password123")
	assert.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, userRole.ID, user.RoleID)
	if assert.NotNil(t, user.Avatar) {
		assert.Equal(t, "https://avatars.test/a.png", *user.Avatar)
	}
	// Password is stored hashed, never as plaintext.
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	// The verification email was enqueued, addressed to the new account.
	if assert.Len(t, publisher.jobs, 1) {
		assert.Equal(t, "new@example.com", publisher.jobs[0].To)
		assert.Contains(t, publisher.jobs[0].Body, "/auth/verify-email?token=")
	}
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := &recordingPublisher{}
	authService := newAuthService(mockRepo, publisher)

	mockRepo.On("GetByEmail", "taken@example.com").Return(&models.User{ID: "u-1"}, nil).Once()

	_, err := authService.Register("someone", "taken@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, publisher.jobs)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterSurvivesEnqueueFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	publisher := &recordingPublisher{err: assert.AnError}
	authService := newAuthService(mockRepo, publisher)

	mockRepo.On("GetByEmail", "new@example.com").Return(nil, nil).Once()
	mockRepo.On("GetRoleByName", models.RoleUser).Return(&models.Role{ID: 2, Name: models.RoleUser}, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	// A broken email queue must not fail the registration response.
	user, err := authService.Register("newuser", "new@example.com", "password123")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	mockRepo.AssertExpectations(t)
}

func activeUser(username, password string) *models.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &models.User{
		ID:       "user-123",
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		IsActive: true,
		Role:     models.Role{ID: 2, Name: models.RoleUser},
	}
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)
	user := activeUser("alice", "password123")

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()

	pair, err := authService.Login("alice", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)
	user := activeUser("alice", "password123")

	// Wrong password.
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	_, errWrongPassword := authService.Login("alice", "not-the-password")
	assert.ErrorIs(t, errWrongPassword, apperrors.ErrUnauthorized)

	// Unknown username.
	mockRepo.On("GetByUsername", "nobody").Return(nil, nil).Once()
	_, errUnknownUser := authService.Login("nobody", "password123")
	assert.ErrorIs(t, errUnknownUser, apperrors.ErrUnauthorized)

	// Same message either way, so account existence does not leak.
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginRejectsInactiveUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)
	user := activeUser("alice", "password123")
	user.IsActive = false

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()

	_, err := authService.Login("alice", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")

	user := &models.User{ID: "u-1", Email: "alice@example.com"}
	token, err := tokens.CreateVerificationToken("alice@example.com")
	assert.NoError(t, err)

	mockRepo.On("GetByEmail", "alice@example.com").Return(user, nil).Twice()
	mockRepo.On("Activate", user).Return(nil).Twice()

	assert.NoError(t, authService.VerifyEmail(token))
	// Verifying twice is a no-op, not an error.
	assert.NoError(t, authService.VerifyEmail(token))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmailUnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")

	token, err := tokens.CreateVerificationToken("ghost@example.com")
	assert.NoError(t, err)
	mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, nil).Once()

	assert.ErrorIs(t, authService.VerifyEmail(token), apperrors.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmailRejectsAccessToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")

	access, err := tokens.CreateAccessToken("alice")
	assert.NoError(t, err)

	assert.ErrorIs(t, authService.VerifyEmail(access), apperrors.ErrInvalidToken)
}

func TestAuthService_Refresh(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")
	user := activeUser("alice", "password123")

	refresh, err := tokens.CreateRefreshToken("alice")
	assert.NoError(t, err)
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()

	pair, err := authService.Refresh(refresh)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RefreshRejectsVanishedUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")

	refresh, err := tokens.CreateRefreshToken("deleted")
	assert.NoError(t, err)
	mockRepo.On("GetByUsername", "deleted").Return(nil, nil).Once()

	_, err = authService.Refresh(refresh)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_CurrentUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokens := services.NewTokenService(testJWTConfig())
	authService := services.NewAuthService(mockRepo, tokens, nil, &stubAvatarResolver{}, "http://localhost:8000")
	user := activeUser("alice", "password123")

	access, err := tokens.CreateAccessToken("alice")
	assert.NoError(t, err)

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	resolved, err := authService.CurrentUser(access)
	assert.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	// The same token is useless once the user is gone.
	mockRepo.On("GetByUsername", "alice").Return(nil, nil).Once()
	_, err = authService.CurrentUser(access)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
}
