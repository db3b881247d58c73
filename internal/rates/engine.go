package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajidkarim/messmate-backend/internal/holidays"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	dbtypes "github.com/sajidkarim/messmate-backend/pkg/db/types"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Input is everything the engine needs to price one date.
type Input struct {
	Date       time.Time
	BaseLunch  decimal.Decimal
	BaseDinner decimal.Decimal
	Rules      dbtypes.RateRuleSet
	// Holidays active on Date, pre-filtered by the caller.
	Holidays []models.Holiday
	// ActiveUsers is nil when the caller has no headcount; user_count
	// rules then never match.
	ActiveUsers *int
}

// AppliedRule records one rule that fired, for the resolution trail.
type AppliedRule struct {
	Name       string                   `json:"name"`
	Priority   int                      `json:"priority"`
	Type       enums.RateAdjustmentType `json:"type"`
	Value      decimal.Decimal          `json:"value"`
	ApplyTo    enums.RateApplyTo        `json:"apply_to"`
	LunchRate  decimal.Decimal          `json:"lunch_rate"`
	DinnerRate decimal.Decimal          `json:"dinner_rate"`
}

// Resolution is the priced outcome for one date.
type Resolution struct {
	Date    time.Time
	Lunch   decimal.Decimal
	Dinner  decimal.Decimal
	Applied []AppliedRule
}

// Resolve prices a single date. Rules run in descending priority and every
// adjustment is computed from the base rate, so when several rules cover the
// same meal the one applied last determines the final rate.
func Resolve(in Input) Resolution {
	out := Resolution{Date: in.Date, Lunch: in.BaseLunch, Dinner: in.BaseDinner}
	if !in.Rules.Enabled {
		return out
	}

	for _, rule := range sortedByPriority(in.Rules.Rules) {
		if !rule.IsActive || !rule.ValidOn(in.Date) {
			continue
		}
		if !conditionMatches(rule, in) {
			continue
		}

		if rule.Adjustment.ApplyTo.Covers(enums.MealTypeLunch) {
			out.Lunch = adjust(in.BaseLunch, rule.Adjustment)
		}
		if rule.Adjustment.ApplyTo.Covers(enums.MealTypeDinner) {
			out.Dinner = adjust(in.BaseDinner, rule.Adjustment)
		}
		out.Applied = append(out.Applied, AppliedRule{
			Name:       rule.Name,
			Priority:   rule.Priority,
			Type:       rule.Adjustment.Type,
			Value:      rule.Adjustment.Value,
			ApplyTo:    rule.Adjustment.ApplyTo,
			LunchRate:  out.Lunch,
			DinnerRate: out.Dinner,
		})
	}
	return out
}

func sortedByPriority(rules []dbtypes.RateRule) []dbtypes.RateRule {
	out := make([]dbtypes.RateRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

func conditionMatches(rule dbtypes.RateRule, in Input) bool {
	params := rule.ConditionParams
	switch rule.ConditionType {
	case enums.RateConditionDayOfWeek:
		weekday := calendar.WeekdayIndex(in.Date)
		for _, day := range params.Days {
			if day == weekday {
				return true
			}
		}
		return false

	case enums.RateConditionDateRange:
		day := calendar.DayOf(in.Date)
		if params.StartDate != nil && day.Before(calendar.DayOf(*params.StartDate)) {
			return false
		}
		if params.EndDate != nil && day.After(calendar.DayOf(*params.EndDate)) {
			return false
		}
		return true

	case enums.RateConditionHoliday:
		for _, h := range in.Holidays {
			if !holidays.Matches(h, in.Date) {
				continue
			}
			if len(params.HolidayTypes) == 0 {
				return true
			}
			for _, t := range params.HolidayTypes {
				if h.Type == t {
					return true
				}
			}
		}
		return false

	case enums.RateConditionUserCount:
		if in.ActiveUsers == nil {
			return false
		}
		if params.MinUsers != nil && *in.ActiveUsers < *params.MinUsers {
			return false
		}
		if params.MaxUsers != nil && *in.ActiveUsers > *params.MaxUsers {
			return false
		}
		return true

	case enums.RateConditionSpecialEvent:
		// Event windows live on ValidFrom/ValidUntil, already checked.
		return params.EventName != ""

	default:
		return false
	}
}

func adjust(base decimal.Decimal, adjustment dbtypes.RateAdjustment) decimal.Decimal {
	switch adjustment.Type {
	case enums.RateAdjustmentFixed:
		return adjustment.Value
	case enums.RateAdjustmentPercentage:
		return base.Add(base.Mul(adjustment.Value).Div(decimal.NewFromInt(100)))
	case enums.RateAdjustmentMultiplier:
		return base.Mul(adjustment.Value)
	default:
		return base
	}
}
