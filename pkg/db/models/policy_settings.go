package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/sajidkarim/messmate-backend/pkg/db/types"
)

// PolicySettings is the process-wide configuration document. At most one row
// is active; readers get-or-create it lazily.
type PolicySettings struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WeekendPolicy     dbtypes.WeekendPolicy `gorm:"column:weekend_policy;type:jsonb;serializer:json"`
	HolidayPolicy     dbtypes.HolidayPolicy `gorm:"column:holiday_policy;type:jsonb;serializer:json"`
	CutoffTimes       dbtypes.CutoffTimes   `gorm:"column:cutoff_times;type:jsonb;serializer:json"`
	DefaultMealStatus bool                  `gorm:"column:default_meal_status;not null;default:true"`
	RateRules         dbtypes.RateRuleSet   `gorm:"column:rate_rules;type:jsonb;serializer:json"`
	IsActive          bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
