package services

import (
	"fmt"
	"time"

	"kontak/internal/apperrors"
	"kontak/internal/models"
	"kontak/internal/repositories"
)

// ContactService handles business logic for owner-scoped contacts.
type ContactService struct {
	contactRepo repositories.ContactRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contactRepo repositories.ContactRepository) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
	}
}

// Create persists a new contact for the owner.
func (s *ContactService) Create(contact *models.Contact, ownerID string) (*models.Contact, error) {
	contact.OwnerID = ownerID
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Get retrieves a single contact under the owner. An id belonging to a
// different owner yields ErrNotFound, not a permission error, so existence
// is not leaked.
func (s *ContactService) Get(id uint, ownerID string) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, fmt.Errorf("%w: contact not found", apperrors.ErrNotFound)
	}
	return contact, nil
}

// GetAll lists every contact owned by the user.
func (s *ContactService) GetAll(ownerID string) ([]models.Contact, error) {
	return s.contactRepo.GetAll(ownerID)
}

// Update replaces the mutable fields of a contact under the owner.
func (s *ContactService) Update(id uint, data *models.Contact, ownerID string) (*models.Contact, error) {
	contact, err := s.contactRepo.Update(id, data, ownerID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, fmt.Errorf("%w: contact not found", apperrors.ErrNotFound)
	}
	return contact, nil
}

// Delete removes a contact under the owner.
func (s *ContactService) Delete(id uint, ownerID string) error {
	deleted, err := s.contactRepo.Delete(id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: contact not found", apperrors.ErrNotFound)
	}
	return nil
}

// Search matches contacts on any combination of the three optional filters.
// At least one filter must be supplied; the repository would otherwise
// return the full owned set.
func (s *ContactService) Search(ownerID, firstName, lastName, email string) ([]models.Contact, error) {
	if firstName == "" && lastName == "" && email == "" {
		return nil, fmt.Errorf("%w: at least one search parameter is required", apperrors.ErrBadRequest)
	}
	return s.contactRepo.Search(ownerID, firstName, lastName, email)
}

// UpcomingBirthdays returns the owner's contacts with a birthday in the
// inclusive 7-day window starting today.
func (s *ContactService) UpcomingBirthdays(ownerID string, today time.Time) ([]repositories.UpcomingBirthday, error) {
	return s.contactRepo.GetUpcomingBirthdays(ownerID, today)
}
