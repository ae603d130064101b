package handlers

import (
	"errors"
	"fmt"
	"log"

	"kontak/internal/apperrors"
	"kontak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	limiter     fiber.Handler
}

// NewAuthHandler creates a new AuthHandler. limiter is applied to the
// registration route.
func NewAuthHandler(authService *services.AuthService, limiter fiber.Handler) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		limiter:     limiter,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.limiter, h.HandleRegister)
	authRoutes.Get("/verify-email", h.HandleVerifyEmail)
	authRoutes.Post("/token", h.HandleToken)
	authRoutes.Post("/refresh_token", h.HandleRefreshToken)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration. The user is created
// inactive; the verification email goes out in the background and its fate
// never affects the response.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		if errors.Is(err, apperrors.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   "Account already registered",
			})
		}
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleVerifyEmail activates the account referenced by a verification
// token. Re-verifying an already active account succeeds.
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "token query parameter is required",
		})
	}

	if err := h.authService.VerifyEmail(token); err != nil {
		log.Printf("Email verification failed: %v", err)
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		if errors.Is(err, apperrors.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not verify email",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Email verified successfully",
	})
}

// HandleToken handles the credentials login with form fields username and
// password. The error shape is identical for unknown users and wrong
// passwords.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "username and password are required",
		})
	}

	pair, err := h.authService.Login(username, password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", username, err)
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return unauthorizedCredentials(c)
		}
		return internalError(c)
	}

	return c.JSON(pair)
}

// RefreshRequest represents the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// HandleRefreshToken mints a fresh access+refresh pair from a valid refresh
// token. The old refresh token is not invalidated.
func (h *AuthHandler) HandleRefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		log.Printf("Error refreshing token: %v", err)
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrInvalidToken) {
			return unauthorizedCredentials(c)
		}
		return internalError(c)
	}

	return c.JSON(pair)
}

func unauthorizedCredentials(c *fiber.Ctx) error {
	c.Set("WWW-Authenticate", "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Incorrect username or password",
	})
}

// validationErrorResponse renders a per-field error map for a failed
// validator.Struct call.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
