package holidays

import (
	"testing"
	"time"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMatchesExactDate(t *testing.T) {
	h := models.Holiday{
		HolidayDate: day(2025, time.March, 26),
		Name:        "Independence Day",
		Type:        enums.HolidayTypeGovernment,
		IsActive:    true,
	}

	if !Matches(h, day(2025, time.March, 26)) {
		t.Fatal("expected match on the stored date")
	}
	if Matches(h, day(2026, time.March, 26)) {
		t.Fatal("non-recurring holiday must not match other years")
	}
	if Matches(h, day(2025, time.March, 27)) {
		t.Fatal("must not match the following day")
	}
}

func TestMatchesRecurring(t *testing.T) {
	h := models.Holiday{
		HolidayDate:    day(2024, time.December, 25),
		Name:           "Christmas",
		Type:           enums.HolidayTypeReligious,
		IsRecurring:    true,
		RecurringMonth: 12,
		RecurringDay:   25,
		IsActive:       true,
	}

	for _, year := range []int{2024, 2025, 2030} {
		if !Matches(h, day(year, time.December, 25)) {
			t.Fatalf("expected recurring match in %d", year)
		}
	}
	if Matches(h, day(2025, time.December, 24)) {
		t.Fatal("recurring holiday must not match a different day")
	}
}

func TestMatchesInactive(t *testing.T) {
	h := models.Holiday{
		HolidayDate: day(2025, time.March, 26),
		Name:        "Retired",
		Type:        enums.HolidayTypeOptional,
		IsActive:    false,
	}
	if Matches(h, day(2025, time.March, 26)) {
		t.Fatal("inactive holidays must never match")
	}
}

func TestMatchOn(t *testing.T) {
	set := []models.Holiday{
		{HolidayDate: day(2025, time.March, 26), Name: "Independence Day", Type: enums.HolidayTypeGovernment, IsActive: true},
		{HolidayDate: day(2024, time.May, 1), Name: "May Day", Type: enums.HolidayTypeGovernment, IsRecurring: true, RecurringMonth: 5, RecurringDay: 1, IsActive: true},
		{HolidayDate: day(2025, time.March, 26), Name: "Disabled", Type: enums.HolidayTypeOptional, IsActive: false},
	}

	got := MatchOn(set, day(2025, time.March, 26))
	if len(got) != 1 || got[0].Name != "Independence Day" {
		t.Fatalf("unexpected matches: %+v", got)
	}

	got = MatchOn(set, day(2027, time.May, 1))
	if len(got) != 1 || got[0].Name != "May Day" {
		t.Fatalf("unexpected recurring matches: %+v", got)
	}

	if got = MatchOn(set, day(2025, time.June, 2)); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
