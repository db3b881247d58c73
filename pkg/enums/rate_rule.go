package enums

import (
	"fmt"
	"strings"
)

// RateConditionType names the condition a rate rule evaluates.
type RateConditionType string

const (
	RateConditionDayOfWeek    RateConditionType = "day_of_week"
	RateConditionDateRange    RateConditionType = "date_range"
	RateConditionHoliday      RateConditionType = "holiday"
	RateConditionUserCount    RateConditionType = "user_count"
	RateConditionSpecialEvent RateConditionType = "special_event"
)

var validRateConditionTypes = []RateConditionType{
	RateConditionDayOfWeek,
	RateConditionDateRange,
	RateConditionHoliday,
	RateConditionUserCount,
	RateConditionSpecialEvent,
}

// IsValid reports whether the value is a known condition type.
func (c RateConditionType) IsValid() bool {
	for _, candidate := range validRateConditionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// RateAdjustmentType names how a matching rule rewrites the rate.
type RateAdjustmentType string

const (
	RateAdjustmentFixed      RateAdjustmentType = "fixed"
	RateAdjustmentPercentage RateAdjustmentType = "percentage"
	RateAdjustmentMultiplier RateAdjustmentType = "multiplier"
)

var validRateAdjustmentTypes = []RateAdjustmentType{
	RateAdjustmentFixed,
	RateAdjustmentPercentage,
	RateAdjustmentMultiplier,
}

// IsValid reports whether the value is a known adjustment type.
func (a RateAdjustmentType) IsValid() bool {
	for _, candidate := range validRateAdjustmentTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// RateApplyTo scopes a rule to one or both toggleable meals.
type RateApplyTo string

const (
	RateApplyToLunch  RateApplyTo = "lunch"
	RateApplyToDinner RateApplyTo = "dinner"
	RateApplyToBoth   RateApplyTo = "both"
)

// IsValid reports whether the value is a known apply-to scope.
func (a RateApplyTo) IsValid() bool {
	return a == RateApplyToLunch || a == RateApplyToDinner || a == RateApplyToBoth
}

// Covers reports whether the scope includes the given meal type.
func (a RateApplyTo) Covers(meal MealType) bool {
	if a == RateApplyToBoth {
		return true
	}
	return string(a) == string(meal)
}

// ParseRateConditionType converts raw input into a RateConditionType.
func ParseRateConditionType(value string) (RateConditionType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRateConditionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rate condition type %q", value)
}
