package rates

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	dbtypes "github.com/sajidkarim/messmate-backend/pkg/db/types"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseInput(date time.Time, rules dbtypes.RateRuleSet) Input {
	return Input{
		Date:       date,
		BaseLunch:  decimal.NewFromInt(60),
		BaseDinner: decimal.NewFromInt(70),
		Rules:      rules,
	}
}

func fridayRule(adj dbtypes.RateAdjustment, priority int) dbtypes.RateRule {
	return dbtypes.RateRule{
		Name:            "friday",
		IsActive:        true,
		Priority:        priority,
		ConditionType:   enums.RateConditionDayOfWeek,
		ConditionParams: dbtypes.RateConditionParams{Days: []int{5}},
		Adjustment:      adj,
	}
}

func TestResolveDisabledSetReturnsBase(t *testing.T) {
	res := Resolve(baseInput(day(2025, time.June, 6), dbtypes.RateRuleSet{
		Enabled: false,
		Rules: []dbtypes.RateRule{fridayRule(dbtypes.RateAdjustment{
			Type: enums.RateAdjustmentFixed, Value: decimal.NewFromInt(100), ApplyTo: enums.RateApplyToBoth,
		}, 1)},
	}))

	if !res.Lunch.Equal(decimal.NewFromInt(60)) || !res.Dinner.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("disabled set must return base rates, got lunch=%s dinner=%s", res.Lunch, res.Dinner)
	}
	if len(res.Applied) != 0 {
		t.Fatalf("disabled set must record no applied rules, got %+v", res.Applied)
	}
}

func TestResolveDayOfWeekFixed(t *testing.T) {
	// 2025-06-06 is a Friday.
	res := Resolve(baseInput(day(2025, time.June, 6), dbtypes.RateRuleSet{
		Enabled: true,
		Rules: []dbtypes.RateRule{fridayRule(dbtypes.RateAdjustment{
			Type: enums.RateAdjustmentFixed, Value: decimal.NewFromInt(100), ApplyTo: enums.RateApplyToLunch,
		}, 1)},
	}))

	if !res.Lunch.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("fixed lunch adjustment not applied, got %s", res.Lunch)
	}
	if !res.Dinner.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("dinner must stay at base, got %s", res.Dinner)
	}
	if len(res.Applied) != 1 || res.Applied[0].Name != "friday" {
		t.Fatalf("applied trail missing: %+v", res.Applied)
	}

	// The same rule must not fire on a Thursday.
	res = Resolve(baseInput(day(2025, time.June, 5), dbtypes.RateRuleSet{
		Enabled: true,
		Rules: []dbtypes.RateRule{fridayRule(dbtypes.RateAdjustment{
			Type: enums.RateAdjustmentFixed, Value: decimal.NewFromInt(100), ApplyTo: enums.RateApplyToLunch,
		}, 1)},
	}))
	if !res.Lunch.Equal(decimal.NewFromInt(60)) || len(res.Applied) != 0 {
		t.Fatalf("rule fired on wrong weekday: %+v", res)
	}
}

func TestResolvePercentageAndMultiplierComputeFromBase(t *testing.T) {
	// Both rules match; the lower-priority percentage rule applies last and
	// recomputes from the base rate, discarding the multiplier's result.
	res := Resolve(baseInput(day(2025, time.June, 6), dbtypes.RateRuleSet{
		Enabled: true,
		Rules: []dbtypes.RateRule{
			fridayRule(dbtypes.RateAdjustment{
				Type: enums.RateAdjustmentPercentage, Value: decimal.NewFromInt(50), ApplyTo: enums.RateApplyToBoth,
			}, 1),
			fridayRule(dbtypes.RateAdjustment{
				Type: enums.RateAdjustmentMultiplier, Value: decimal.NewFromInt(3), ApplyTo: enums.RateApplyToBoth,
			}, 10),
		},
	}))

	if !res.Lunch.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected lunch 60 * 1.5 = 90, got %s", res.Lunch)
	}
	if !res.Dinner.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("expected dinner 70 * 1.5 = 105, got %s", res.Dinner)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("both matching rules must be recorded, got %+v", res.Applied)
	}
	if res.Applied[0].Priority != 10 || res.Applied[1].Priority != 1 {
		t.Fatalf("trail must follow descending priority, got %+v", res.Applied)
	}
	if !res.Applied[0].LunchRate.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("multiplier intermediate rate must be recorded, got %s", res.Applied[0].LunchRate)
	}
}

func TestResolveValidityWindow(t *testing.T) {
	from := day(2025, time.June, 1)
	until := day(2025, time.June, 30)
	rule := fridayRule(dbtypes.RateAdjustment{
		Type: enums.RateAdjustmentFixed, Value: decimal.NewFromInt(100), ApplyTo: enums.RateApplyToBoth,
	}, 1)
	rule.ValidFrom = &from
	rule.ValidUntil = &until
	set := dbtypes.RateRuleSet{Enabled: true, Rules: []dbtypes.RateRule{rule}}

	if res := Resolve(baseInput(day(2025, time.June, 6), set)); !res.Lunch.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("rule must fire inside its window, got %s", res.Lunch)
	}
	// 2025-07-04 is a Friday outside the window.
	if res := Resolve(baseInput(day(2025, time.July, 4), set)); !res.Lunch.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expired rule must not fire, got %s", res.Lunch)
	}
}

func TestResolveHolidayCondition(t *testing.T) {
	rule := dbtypes.RateRule{
		Name:          "eid-special",
		IsActive:      true,
		Priority:      5,
		ConditionType: enums.RateConditionHoliday,
		ConditionParams: dbtypes.RateConditionParams{
			HolidayTypes: []enums.HolidayType{enums.HolidayTypeReligious},
		},
		Adjustment: dbtypes.RateAdjustment{
			Type: enums.RateAdjustmentMultiplier, Value: decimal.NewFromInt(2), ApplyTo: enums.RateApplyToDinner,
		},
	}
	set := dbtypes.RateRuleSet{Enabled: true, Rules: []dbtypes.RateRule{rule}}

	in := baseInput(day(2025, time.March, 31), set)
	in.Holidays = []models.Holiday{{
		HolidayDate: day(2025, time.March, 31),
		Name:        "Eid",
		Type:        enums.HolidayTypeReligious,
		IsActive:    true,
	}}
	if res := Resolve(in); !res.Dinner.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("holiday rule must double dinner, got %s", res.Dinner)
	}

	// A government holiday does not satisfy a religious-only rule.
	in.Holidays[0].Type = enums.HolidayTypeGovernment
	if res := Resolve(in); !res.Dinner.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("type-narrowed rule must not fire, got %s", res.Dinner)
	}
}

func TestResolveUserCountInapplicableWithoutHeadcount(t *testing.T) {
	min := 10
	rule := dbtypes.RateRule{
		Name:            "bulk-discount",
		IsActive:        true,
		Priority:        1,
		ConditionType:   enums.RateConditionUserCount,
		ConditionParams: dbtypes.RateConditionParams{MinUsers: &min},
		Adjustment: dbtypes.RateAdjustment{
			Type: enums.RateAdjustmentPercentage, Value: decimal.NewFromInt(-10), ApplyTo: enums.RateApplyToBoth,
		},
	}
	set := dbtypes.RateRuleSet{Enabled: true, Rules: []dbtypes.RateRule{rule}}

	if res := Resolve(baseInput(day(2025, time.June, 6), set)); len(res.Applied) != 0 {
		t.Fatalf("user_count rule must not match without a headcount: %+v", res.Applied)
	}

	in := baseInput(day(2025, time.June, 6), set)
	count := 25
	in.ActiveUsers = &count
	res := Resolve(in)
	if !res.Lunch.Equal(decimal.NewFromInt(54)) {
		t.Fatalf("expected lunch 60 * 0.9 = 54, got %s", res.Lunch)
	}
}

func TestResolveInactiveRuleSkipped(t *testing.T) {
	rule := fridayRule(dbtypes.RateAdjustment{
		Type: enums.RateAdjustmentFixed, Value: decimal.NewFromInt(100), ApplyTo: enums.RateApplyToBoth,
	}, 1)
	rule.IsActive = false

	res := Resolve(baseInput(day(2025, time.June, 6), dbtypes.RateRuleSet{Enabled: true, Rules: []dbtypes.RateRule{rule}}))
	if len(res.Applied) != 0 || !res.Lunch.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("inactive rule must be skipped: %+v", res)
	}
}
