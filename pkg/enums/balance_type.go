package enums

import (
	"fmt"
	"strings"
)

// BalanceType partitions a user's prepaid funds per meal category.
type BalanceType string

const (
	BalanceTypeBreakfast BalanceType = "breakfast"
	BalanceTypeLunch     BalanceType = "lunch"
	BalanceTypeDinner    BalanceType = "dinner"
)

var validBalanceTypes = []BalanceType{
	BalanceTypeBreakfast,
	BalanceTypeLunch,
	BalanceTypeDinner,
}

// AllBalanceTypes returns every balance category in declaration order.
func AllBalanceTypes() []BalanceType {
	out := make([]BalanceType, len(validBalanceTypes))
	copy(out, validBalanceTypes)
	return out
}

// String implements fmt.Stringer.
func (b BalanceType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known balance type.
func (b BalanceType) IsValid() bool {
	for _, candidate := range validBalanceTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBalanceType converts raw input into a BalanceType.
func ParseBalanceType(value string) (BalanceType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validBalanceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid balance type %q", value)
}
