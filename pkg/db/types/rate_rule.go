package dbtypes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// RateRuleSet is the persisted conditional pricing configuration.
type RateRuleSet struct {
	Enabled bool       `json:"enabled"`
	Rules   []RateRule `json:"rules"`
}

// RateRule is one prioritized conditional price adjustment. Rules are
// evaluated in descending priority; ties keep their configured order.
type RateRule struct {
	Name            string                  `json:"name"`
	IsActive        bool                    `json:"is_active"`
	Priority        int                     `json:"priority"`
	ConditionType   enums.RateConditionType `json:"condition_type"`
	ConditionParams RateConditionParams     `json:"condition_params"`
	Adjustment      RateAdjustment          `json:"adjustment"`
	ValidFrom       *time.Time              `json:"valid_from,omitempty"`
	ValidUntil      *time.Time              `json:"valid_until,omitempty"`
}

// ValidOn reports whether the rule's validity window covers the date.
// A missing bound is unbounded on that side.
func (r RateRule) ValidOn(date time.Time) bool {
	if r.ValidFrom != nil && date.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && date.After(*r.ValidUntil) {
		return false
	}
	return true
}

// RateConditionParams carries the per-condition-type inputs. Only the fields
// relevant to the rule's condition type are consulted.
type RateConditionParams struct {
	// day_of_week: weekday indexes with 0=Sunday.
	Days []int `json:"days,omitempty"`
	// date_range: missing bound = unbounded.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	// holiday: empty list means any holiday matches.
	HolidayTypes []enums.HolidayType `json:"holiday_types,omitempty"`
	// user_count: MaxUsers defaults to unbounded.
	MinUsers *int `json:"min_users,omitempty"`
	MaxUsers *int `json:"max_users,omitempty"`
	// special_event: windows are scoped via ValidFrom/ValidUntil.
	EventName string `json:"event_name,omitempty"`
}

// RateAdjustment rewrites the running rate when its rule matches.
type RateAdjustment struct {
	Type    enums.RateAdjustmentType `json:"type"`
	Value   decimal.Decimal          `json:"value"`
	ApplyTo enums.RateApplyTo        `json:"apply_to"`
}
