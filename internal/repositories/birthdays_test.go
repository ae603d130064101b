package repositories_test

import (
	"testing"
	"time"

	"kontak/internal/models"
	"kontak/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func contactWithBirthday(id uint, name string, birthday time.Time) models.Contact {
	return models.Contact{
		ID:        id,
		FirstName: name,
		LastName:  "Tester",
		Birthday:  &birthday,
	}
}

func TestProjectUpcomingBirthdays_Window(t *testing.T) {
	// Wednesday.
	today := date(2024, time.July, 10)
	contacts := []models.Contact{
		contactWithBirthday(1, "Today", date(1990, time.July, 10)),
		contactWithBirthday(2, "SevenDays", date(1985, time.July, 17)),
		contactWithBirthday(3, "EightDays", date(1985, time.July, 18)),
		contactWithBirthday(4, "Yesterday", date(1992, time.July, 9)),
		{ID: 5, FirstName: "NoBirthday", LastName: "Tester"},
	}

	upcoming := repositories.ProjectUpcomingBirthdays(contacts, today)

	names := make([]string, 0, len(upcoming))
	for _, b := range upcoming {
		names = append(names, b.FirstName)
	}
	// Exactly 7 days out is included, 8 days is not, and a birthday that
	// passed yesterday waits until next year.
	assert.ElementsMatch(t, []string{"Today", "SevenDays"}, names)
}

func TestProjectUpcomingBirthdays_NextYearWrap(t *testing.T) {
	// Monday, end of December.
	today := date(2024, time.December, 30)
	contacts := []models.Contact{
		contactWithBirthday(1, "January", date(1990, time.January, 2)),
		contactWithBirthday(2, "February", date(1990, time.February, 2)),
	}

	upcoming := repositories.ProjectUpcomingBirthdays(contacts, today)

	if assert.Len(t, upcoming, 1) {
		assert.Equal(t, "January", upcoming[0].FirstName)
		assert.Equal(t, date(2025, time.January, 2), upcoming[0].Birthday)
	}
}

func TestProjectUpcomingBirthdays_WeekendShift(t *testing.T) {
	// Wednesday; the 13th is a Saturday and the 14th a Sunday.
	today := date(2024, time.July, 10)
	contacts := []models.Contact{
		contactWithBirthday(1, "OnSaturday", date(1990, time.July, 13)),
		contactWithBirthday(2, "OnSunday", date(1990, time.July, 14)),
		contactWithBirthday(3, "OnMonday", date(1990, time.July, 15)),
	}

	upcoming := repositories.ProjectUpcomingBirthdays(contacts, today)

	assert.Len(t, upcoming, 3)
	byName := make(map[string]time.Time)
	for _, b := range upcoming {
		byName[b.FirstName] = b.Birthday
	}
	// Weekend birthdays are reported on the following Monday; the original
	// date only decides membership in the window.
	monday := date(2024, time.July, 15)
	assert.Equal(t, monday, byName["OnSaturday"])
	assert.Equal(t, monday, byName["OnSunday"])
	assert.Equal(t, monday, byName["OnMonday"])
}

func TestProjectUpcomingBirthdays_WeekendShiftKeepsWindowMembership(t *testing.T) {
	// Friday; the following Saturday is exactly 8 days out once shifted,
	// but membership is decided before the shift.
	today := date(2024, time.July, 12)
	contacts := []models.Contact{
		// July 19 is a Friday, exactly 7 days out.
		contactWithBirthday(1, "EdgeFriday", date(1990, time.July, 19)),
		// July 20 is a Saturday, 8 days out: excluded even though the shifted
		// Monday rule would not apply to it.
		contactWithBirthday(2, "TooFar", date(1990, time.July, 20)),
	}

	upcoming := repositories.ProjectUpcomingBirthdays(contacts, today)

	if assert.Len(t, upcoming, 1) {
		assert.Equal(t, "EdgeFriday", upcoming[0].FirstName)
	}
}

func TestProjectUpcomingBirthdays_Empty(t *testing.T) {
	assert.Empty(t, repositories.ProjectUpcomingBirthdays(nil, date(2024, time.July, 10)))
}
