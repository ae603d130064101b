package repositories

import (
	"time"

	"kontak/internal/models"
)

// ProjectUpcomingBirthdays projects each contact's birthday onto the
// current year (or the next, when it has already passed) and keeps it when
// the projected date falls inside the inclusive 7-day window starting
// today. A projected date landing on a weekend is reported as the following
// Monday, while the original date still decides whether the contact is in
// the window. The result carries no particular order.
func ProjectUpcomingBirthdays(contacts []models.Contact, today time.Time) []UpcomingBirthday {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := today.AddDate(0, 0, 7)

	var upcoming []UpcomingBirthday
	for _, contact := range contacts {
		if contact.Birthday == nil {
			continue
		}
		birthday := time.Date(today.Year(), contact.Birthday.Month(), contact.Birthday.Day(), 0, 0, 0, 0, time.UTC)
		if birthday.Before(today) {
			birthday = birthday.AddDate(1, 0, 0)
		}
		if birthday.After(windowEnd) {
			continue
		}

		reported := birthday
		switch birthday.Weekday() {
		case time.Saturday:
			reported = birthday.AddDate(0, 0, 2)
		case time.Sunday:
			reported = birthday.AddDate(0, 0, 1)
		}

		upcoming = append(upcoming, UpcomingBirthday{
			ID:             contact.ID,
			FirstName:      contact.FirstName,
			LastName:       contact.LastName,
			Email:          contact.Email,
			PhoneNumber:    contact.PhoneNumber,
			Birthday:       reported,
			AdditionalInfo: contact.AdditionalInfo,
		})
	}
	return upcoming
}
