package handlers

import (
	"errors"
	"log"

	"kontak/internal/apperrors"
	"kontak/internal/middleware"
	"kontak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the current user's profile.
type UserHandler struct {
	userService *services.UserService
	limiter     fiber.Handler
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, limiter fiber.Handler) *UserHandler {
	return &UserHandler{
		userService: userService,
		limiter:     limiter,
	}
}

// RegisterRoutes registers the user profile routes. The router must
// already carry AuthRequired.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/me", h.HandleMe)
	users.Patch("/avatar", h.limiter, h.HandleUpdateAvatar)
}

// HandleMe returns the resolved current user.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// HandleUpdateAvatar uploads the posted image to the external image host
// and persists the resulting URL on the current user.
func (h *UserHandler) HandleUpdateAvatar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "file upload is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not read uploaded file",
		})
	}
	defer file.Close()

	updated, err := h.userService.UpdateAvatar(c.Context(), user, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("Error updating avatar for %s: %v", user.Username, err)
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		if errors.Is(err, apperrors.ErrUploadFailed) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error uploading avatar",
			})
		}
		return internalError(c)
	}

	return c.JSON(updated)
}
