package dbtypes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// WeekendPolicy marks which weekdays default a meal to off.
// Days use 0=Sunday indexing, matching time.Weekday.
type WeekendPolicy struct {
	Enabled bool  `json:"enabled"`
	Days    []int `json:"days"`
}

// Matches reports whether the weekday is a configured weekend day.
func (w WeekendPolicy) Matches(weekday int) bool {
	if !w.Enabled {
		return false
	}
	for _, day := range w.Days {
		if day == weekday {
			return true
		}
	}
	return false
}

// HolidayPolicy controls whether holidays suppress meals, optionally narrowed
// to specific holiday types. An empty Types list means every type suppresses.
type HolidayPolicy struct {
	Enabled bool                `json:"enabled"`
	Types   []enums.HolidayType `json:"types"`
}

// Suppresses reports whether a holiday of the given type turns meals off.
func (h HolidayPolicy) Suppresses(holidayType enums.HolidayType) bool {
	if !h.Enabled {
		return false
	}
	if len(h.Types) == 0 {
		return true
	}
	for _, t := range h.Types {
		if t == holidayType {
			return true
		}
	}
	return false
}

// CutoffTimes holds the per-meal toggle deadline as "HH:MM" local wall time.
type CutoffTimes struct {
	Lunch  string `json:"lunch"`
	Dinner string `json:"dinner"`
}

// For returns the raw cutoff string for the meal type.
func (c CutoffTimes) For(meal enums.MealType) string {
	switch meal {
	case enums.MealTypeLunch:
		return c.Lunch
	case enums.MealTypeDinner:
		return c.Dinner
	default:
		return ""
	}
}

// ParseCutoff splits an "HH:MM" cutoff into hour and minute components.
func ParseCutoff(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cutoff time %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid cutoff hour %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid cutoff minute %q", value)
	}
	return hour, minute, nil
}
