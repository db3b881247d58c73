package calendar

import (
	"fmt"
	"time"
)

// MaxRangeDays caps inclusive day ranges for bulk meal operations.
const MaxRangeDays = 31

// DayOf normalizes a timestamp to its UTC day boundary.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// Days builds the inclusive day sequence from start through end.
// Returns nil when end precedes start.
func Days(start, end time.Time) []time.Time {
	start = DayOf(start)
	end = DayOf(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// RangeDays counts the inclusive days between start and end, day-normalized.
func RangeDays(start, end time.Time) int {
	start = DayOf(start)
	end = DayOf(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// ValidateRange rejects inverted or over-long inclusive day ranges.
func ValidateRange(start, end time.Time, maxDays int) error {
	if maxDays <= 0 {
		maxDays = MaxRangeDays
	}
	n := RangeDays(start, end)
	if n == 0 {
		return fmt.Errorf("end date precedes start date")
	}
	if n > maxDays {
		return fmt.Errorf("date range spans %d days, maximum is %d", n, maxDays)
	}
	return nil
}

// MonthWindow returns the first and last day of the given calendar month.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// WeekdayIndex returns the 0=Sunday weekday index used by weekend policies
// and day-of-week rate rules.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday())
}
