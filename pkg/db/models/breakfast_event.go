package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BreakfastEvent is a per-event cost split, unlike the per-day toggle model
// of lunch and dinner. Each participant carries their share of the cost.
type BreakfastEvent struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventDate    time.Time              `gorm:"column:event_date;type:date;not null;index"`
	Name         string                 `gorm:"column:name;not null"`
	TotalCost    decimal.Decimal        `gorm:"column:total_cost;type:numeric(12,2);not null"`
	Participants []BreakfastParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// BreakfastParticipant links a user to a breakfast event with their share.
type BreakfastParticipant struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     uuid.UUID       `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_breakfast_participants_event_user,priority:1"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_breakfast_participants_event_user,priority:2"`
	ShareAmount decimal.Decimal `gorm:"column:share_amount;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
