package months

import (
	"time"

	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Resolved is a month settings read. A month that was only queried, never
// configured, resolves as an unpersisted preview with zero rates; only a
// persisted month may be finalized or carried forward.
type Resolved struct {
	Settings  models.MonthSettings
	Persisted bool
}

// State derives the lifecycle position.
func (r Resolved) State() enums.MonthState {
	switch {
	case !r.Persisted:
		return enums.MonthStateDraft
	case r.Settings.IsCarriedForward:
		return enums.MonthStateCarriedForward
	case r.Settings.IsFinalized:
		return enums.MonthStateFinalized
	default:
		return enums.MonthStateOpen
	}
}

// Window returns the billing window, inclusive on both ends.
func (r Resolved) Window() (start, end time.Time) {
	return r.Settings.StartDate, r.Settings.EndDate
}

// preview materializes default settings for an unconfigured month.
func preview(year int, month time.Month) Resolved {
	start, end := calendar.MonthWindow(year, month)
	return Resolved{
		Settings: models.MonthSettings{
			Year:      year,
			Month:     int(month),
			StartDate: start,
			EndDate:   end,
		},
	}
}
