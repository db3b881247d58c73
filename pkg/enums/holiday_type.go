package enums

import (
	"fmt"
	"strings"
)

// HolidayType classifies entries in the holiday directory.
type HolidayType string

const (
	HolidayTypeGovernment HolidayType = "government"
	HolidayTypeOptional   HolidayType = "optional"
	HolidayTypeReligious  HolidayType = "religious"
)

var validHolidayTypes = []HolidayType{
	HolidayTypeGovernment,
	HolidayTypeOptional,
	HolidayTypeReligious,
}

// String implements fmt.Stringer.
func (h HolidayType) String() string {
	return string(h)
}

// IsValid reports whether the value is a known holiday type.
func (h HolidayType) IsValid() bool {
	for _, candidate := range validHolidayTypes {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHolidayType converts raw input into a HolidayType.
func ParseHolidayType(value string) (HolidayType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validHolidayTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid holiday type %q", value)
}
