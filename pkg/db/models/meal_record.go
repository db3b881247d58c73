package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// MealRecord is a manual override for one (user, date, meal type) cell.
// Absence of a row is a valid state: the eligibility defaults apply.
type MealRecord struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_meal_records_natural_key,priority:1"`
	MealDate      time.Time      `gorm:"column:meal_date;type:date;not null;uniqueIndex:idx_meal_records_natural_key,priority:2"`
	MealType      enums.MealType `gorm:"column:meal_type;not null;uniqueIndex:idx_meal_records_natural_key,priority:3"`
	IsOn          bool           `gorm:"column:is_on;not null"`
	Count         int            `gorm:"column:count;not null;default:0"`
	IsManuallySet bool           `gorm:"column:is_manually_set;not null;default:false"`
	ModifiedBy    uuid.UUID      `gorm:"column:modified_by;type:uuid;not null"`
	Notes         string         `gorm:"column:notes"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
