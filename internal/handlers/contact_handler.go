package handlers

import (
	"errors"
	"log"
	"time"

	"kontak/internal/apperrors"
	"kontak/internal/middleware"
	"kontak/internal/models"
	"kontak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles HTTP requests for the owner-scoped contacts.
type ContactHandler struct {
	contactService *services.ContactService
	validate       *validator.Validate
	limiter        fiber.Handler
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *services.ContactService, limiter fiber.Handler) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validate:       validator.New(),
		limiter:        limiter,
	}
}

// RegisterRoutes registers the contact routes. The router must already
// carry AuthRequired. The fixed-path routes are registered before /:id so
// Fiber matches them first.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	contacts := router.Group("/contacts")
	contacts.Get("/search", h.limiter, h.HandleSearch)
	contacts.Get("/upcoming_birthdays", h.limiter, h.HandleUpcomingBirthdays)
	contacts.Post("/", h.limiter, h.HandleCreate)
	contacts.Get("/", h.limiter, middleware.RoleRequired(models.RoleAdmin, models.RoleUser), h.HandleGetAll)
	contacts.Get("/:id", h.limiter, h.HandleGet)
	contacts.Put("/:id", h.limiter, h.HandleUpdate)
	contacts.Delete("/:id", h.limiter, h.HandleDelete)
}

// ContactRequest represents the request body for creating or fully
// replacing a contact.
type ContactRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Email          string     `json:"email" validate:"omitempty,email"`
	PhoneNumber    string     `json:"phone_number" validate:"max=50"`
	Birthday       *time.Time `json:"birthday"`
	AdditionalInfo string     `json:"additional_info"`
}

func (r *ContactRequest) toModel() *models.Contact {
	return &models.Contact{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Birthday:       r.Birthday,
		AdditionalInfo: r.AdditionalInfo,
	}
}

// HandleSearch matches contacts on any combination of first name, last
// name and email. A request with no filter at all is rejected with 404,
// matching the behavior clients already depend on.
func (h *ContactHandler) HandleSearch(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	firstName := c.Query("first_name")
	lastName := c.Query("last_name")
	email := c.Query("email")

	contacts, err := h.contactService.Search(user.ID, firstName, lastName, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrBadRequest) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "At least one search parameter is required",
			})
		}
		log.Printf("Error searching contacts: %v", err)
		return internalError(c)
	}

	return c.JSON(contacts)
}

// HandleUpcomingBirthdays lists contacts with a birthday in the next 7
// days. An empty week is reported as 404, matching the behavior clients
// already depend on.
func (h *ContactHandler) HandleUpcomingBirthdays(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	birthdays, err := h.contactService.UpcomingBirthdays(user.ID, time.Now())
	if err != nil {
		log.Printf("Error computing upcoming birthdays: %v", err)
		return internalError(c)
	}
	if len(birthdays) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No contacts with birthdays in the next 7 days",
		})
	}

	return c.JSON(birthdays)
}

// HandleCreate persists a new contact owned by the current user.
func (h *ContactHandler) HandleCreate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	contact, err := h.contactService.Create(req.toModel(), user.ID)
	if err != nil {
		log.Printf("Error creating contact: %v", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(contact)
}

// HandleGet retrieves one contact. An id owned by someone else reads as
// not found.
func (h *ContactHandler) HandleGet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return contactNotFound(c)
	}

	contact, err := h.contactService.Get(uint(id), user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return contactNotFound(c)
		}
		log.Printf("Error getting contact %d: %v", id, err)
		return internalError(c)
	}

	return c.JSON(contact)
}

// HandleGetAll lists every contact owned by the current user. The route is
// role-gated at registration time.
func (h *ContactHandler) HandleGetAll(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	contacts, err := h.contactService.GetAll(user.ID)
	if err != nil {
		log.Printf("Error listing contacts: %v", err)
		return internalError(c)
	}

	return c.JSON(contacts)
}

// HandleUpdate fully replaces the mutable fields of a contact.
func (h *ContactHandler) HandleUpdate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return contactNotFound(c)
	}

	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	contact, err := h.contactService.Update(uint(id), req.toModel(), user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return contactNotFound(c)
		}
		log.Printf("Error updating contact %d: %v", id, err)
		return internalError(c)
	}

	return c.JSON(contact)
}

// HandleDelete removes a contact, answering 204 on success.
func (h *ContactHandler) HandleDelete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return contactNotFound(c)
	}

	if err := h.contactService.Delete(uint(id), user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return contactNotFound(c)
		}
		log.Printf("Error deleting contact %d: %v", id, err)
		return internalError(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func contactNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "Contact not found",
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
