package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Holiday is a directory entry that can suppress meals by policy.
// Recurring holidays match every year on (RecurringMonth, RecurringDay)
// regardless of the stored date's year.
type Holiday struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HolidayDate    time.Time         `gorm:"column:holiday_date;type:date;not null"`
	Name           string            `gorm:"column:name;not null"`
	Type           enums.HolidayType `gorm:"column:type;not null"`
	IsRecurring    bool              `gorm:"column:is_recurring;not null;default:false"`
	RecurringMonth int               `gorm:"column:recurring_month;not null;default:0"`
	RecurringDay   int               `gorm:"column:recurring_day;not null;default:0"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
