package holidays

import (
	"time"

	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Matches reports whether the holiday falls on the given date. Recurring
// holidays match on (month, day) every year regardless of the stored year.
func Matches(holiday models.Holiday, date time.Time) bool {
	if !holiday.IsActive {
		return false
	}
	date = calendar.DayOf(date)
	if holiday.IsRecurring {
		return int(date.Month()) == holiday.RecurringMonth && date.Day() == holiday.RecurringDay
	}
	return calendar.SameDay(holiday.HolidayDate, date)
}

// MatchOn returns every holiday in the set that falls on the given date.
func MatchOn(set []models.Holiday, date time.Time) []models.Holiday {
	var matched []models.Holiday
	for _, h := range set {
		if Matches(h, date) {
			matched = append(matched, h)
		}
	}
	return matched
}
