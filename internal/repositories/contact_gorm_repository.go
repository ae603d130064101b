package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kontak/internal/models"

	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

// Create persists a new contact. The owner id must already be set by the
// caller; contact fields carry no uniqueness constraint.
func (r *GORMContactRepository) Create(contact *models.Contact) error {
	if err := r.db.Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetByID retrieves a single contact under the given owner. Returns
// (nil, nil) when the id does not exist or belongs to another owner.
func (r *GORMContactRepository) GetByID(id uint, ownerID string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.First(&contact, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact %d: %w", id, err)
	}
	return &contact, nil
}

// GetAll retrieves every contact owned by the given user.
func (r *GORMContactRepository) GetAll(ownerID string) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.Find(&contacts, "owner_id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Update replaces the mutable fields of a contact when it exists under the
// given owner. Returns (nil, nil) otherwise.
func (r *GORMContactRepository) Update(id uint, data *models.Contact, ownerID string) (*models.Contact, error) {
	contact, err := r.GetByID(id, ownerID)
	if err != nil || contact == nil {
		return nil, err
	}
	contact.FirstName = data.FirstName
	contact.LastName = data.LastName
	contact.Email = data.Email
	contact.PhoneNumber = data.PhoneNumber
	contact.Birthday = data.Birthday
	contact.AdditionalInfo = data.AdditionalInfo
	if err := r.db.Save(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact %d: %w", id, err)
	}
	return contact, nil
}

// Delete removes a contact under the given owner. Returns false when the id
// does not exist or belongs to another owner.
func (r *GORMContactRepository) Delete(id uint, ownerID string) (bool, error) {
	res := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Contact{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete contact %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Search performs a case-insensitive substring match on any combination of
// first name, last name and email, ANDed together and always scoped to the
// owner. With no filters supplied it returns the full owned set; callers
// are expected to guard against that one layer up.
func (r *GORMContactRepository) Search(ownerID, firstName, lastName, email string) ([]models.Contact, error) {
	query := r.db.Where("owner_id = ?", ownerID)
	if firstName != "" {
		query = query.Where("LOWER(first_name) LIKE ?", "%"+strings.ToLower(firstName)+"%")
	}
	if lastName != "" {
		query = query.Where("LOWER(last_name) LIKE ?", "%"+strings.ToLower(lastName)+"%")
	}
	if email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	var contacts []models.Contact
	if err := query.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	return contacts, nil
}

// GetUpcomingBirthdays fetches the owner's contacts that have a birthday
// set and projects them onto the inclusive 7-day window starting today.
func (r *GORMContactRepository) GetUpcomingBirthdays(ownerID string, today time.Time) ([]UpcomingBirthday, error) {
	var contacts []models.Contact
	if err := r.db.Find(&contacts, "owner_id = ? AND birthday IS NOT NULL", ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch contacts for birthday lookup: %w", err)
	}
	return ProjectUpcomingBirthdays(contacts, today), nil
}
