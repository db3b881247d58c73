package meals

import (
	"fmt"
	"time"

	"github.com/sajidkarim/messmate-backend/internal/holidays"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Source tells whether an effective status came from an explicit record or
// from policy defaults.
type Source string

const (
	SourceManual  Source = "manual"
	SourceDefault Source = "default"
)

// EffectiveStatus is the resolved on/off state for one user, date and meal.
type EffectiveStatus struct {
	IsOn   bool
	Count  int
	Source Source
	// Reason is set only for default-off days: "weekend" or "holiday:<name>".
	Reason string
}

// OffReason explains why a date defaults to no meal.
type OffReason struct {
	Off    bool
	Reason string
}

// DefaultOff decides whether a date defaults to meal-off under the current
// policy and holiday set, with the display reason. The off decision and the
// reason are computed in one pass so they cannot diverge.
func DefaultOff(date time.Time, active []models.Holiday, settings *models.PolicySettings) OffReason {
	if settings == nil {
		return OffReason{}
	}
	if settings.WeekendPolicy.Matches(calendar.WeekdayIndex(date)) {
		return OffReason{Off: true, Reason: "weekend"}
	}
	if settings.HolidayPolicy.Enabled {
		for _, h := range holidays.MatchOn(active, date) {
			if settings.HolidayPolicy.Suppresses(h.Type) {
				return OffReason{Off: true, Reason: fmt.Sprintf("holiday:%s", h.Name)}
			}
		}
	}
	return OffReason{}
}

// Resolve computes the effective status for a date. A manual record is
// authoritative; otherwise the policy default applies. Absence of a record is
// a valid state, not an error.
func Resolve(date time.Time, record *models.MealRecord, active []models.Holiday, settings *models.PolicySettings) EffectiveStatus {
	if record != nil {
		return EffectiveStatus{
			IsOn:   record.IsOn,
			Count:  record.Count,
			Source: SourceManual,
		}
	}

	off := DefaultOff(date, active, settings)
	status := EffectiveStatus{Source: SourceDefault, Reason: off.Reason}
	if !off.Off {
		status.IsOn = settings == nil || settings.DefaultMealStatus
		if status.IsOn {
			status.Count = 1
		}
	}
	return status
}
