package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Repository handles breakfast event persistence. Lunch and dinner billing
// read through the meal and ledger repositories; only the per-event breakfast
// model lives here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEvent(ctx context.Context, event *models.BreakfastEvent) error
	FindEvent(ctx context.Context, id uuid.UUID) (*models.BreakfastEvent, error)
	ListEventsInRange(ctx context.Context, from, to time.Time) ([]models.BreakfastEvent, error)
	ListParticipations(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.BreakfastParticipant, error)
	SumParticipantShares(ctx context.Context, userID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.BreakfastEvent) error {
	event.EventDate = calendar.DayOf(event.EventDate)
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindEvent(ctx context.Context, id uuid.UUID) (*models.BreakfastEvent, error) {
	var event models.BreakfastEvent
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListEventsInRange(ctx context.Context, from, to time.Time) ([]models.BreakfastEvent, error) {
	var events []models.BreakfastEvent
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("event_date >= ? AND event_date <= ?", calendar.DayOf(from), calendar.DayOf(to)).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) ListParticipations(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.BreakfastParticipant, error) {
	var participations []models.BreakfastParticipant
	err := r.db.WithContext(ctx).
		Model(&models.BreakfastParticipant{}).
		Joins("JOIN breakfast_events ON breakfast_events.id = breakfast_participants.event_id").
		Where("breakfast_participants.user_id = ?", userID).
		Where("breakfast_events.event_date >= ? AND breakfast_events.event_date <= ?",
			calendar.DayOf(from), calendar.DayOf(to)).
		Order("breakfast_events.event_date ASC").
		Find(&participations).Error
	if err != nil {
		return nil, err
	}
	return participations, nil
}

func (r *repository) SumParticipantShares(ctx context.Context, userID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	// Scanned as a string so numeric survives both postgres and sqlite.
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.BreakfastParticipant{}).
		Joins("JOIN breakfast_events ON breakfast_events.id = breakfast_participants.event_id").
		Where("breakfast_participants.user_id = ?", userID).
		Where("breakfast_events.event_date >= ? AND breakfast_events.event_date <= ?",
			calendar.DayOf(from), calendar.DayOf(to)).
		Select("SUM(breakfast_participants.share_amount)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
