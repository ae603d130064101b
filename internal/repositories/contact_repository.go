package repositories

import (
	"time"

	"kontak/internal/models"
)

// ContactRepository defines the interface for owner-scoped contact data
// access. Every query is filtered by owner id; a contact id that belongs to
// a different owner yields an absent result, never a row.
type ContactRepository interface {
	Create(contact *models.Contact) error
	GetByID(id uint, ownerID string) (*models.Contact, error)
	GetAll(ownerID string) ([]models.Contact, error)
	Update(id uint, data *models.Contact, ownerID string) (*models.Contact, error)
	Delete(id uint, ownerID string) (bool, error)
	Search(ownerID, firstName, lastName, email string) ([]models.Contact, error)
	GetUpcomingBirthdays(ownerID string, today time.Time) ([]UpcomingBirthday, error)
}

// UpcomingBirthday is a contact whose birthday falls within the next week,
// carrying the date the birthday should be celebrated on this year.
type UpcomingBirthday struct {
	ID             uint      `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Birthday       time.Time `json:"birthday"`
	AdditionalInfo string    `json:"additional_info"`
}
