package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthSettings is the persisted billing month: window, rates, and the
// lifecycle flags. Force updates are recorded in the audit log, not embedded.
type MonthSettings struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Year             int             `gorm:"column:year;not null;uniqueIndex:idx_month_settings_year_month,priority:1"`
	Month            int             `gorm:"column:month;not null;uniqueIndex:idx_month_settings_year_month,priority:2"`
	StartDate        time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate          time.Time       `gorm:"column:end_date;type:date;not null"`
	LunchRate        decimal.Decimal `gorm:"column:lunch_rate;type:numeric(12,2);not null"`
	DinnerRate       decimal.Decimal `gorm:"column:dinner_rate;type:numeric(12,2);not null"`
	IsFinalized      bool            `gorm:"column:is_finalized;not null;default:false"`
	IsCarriedForward bool            `gorm:"column:is_carried_forward;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
