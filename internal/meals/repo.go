package meals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Repository persists manual meal records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Upsert writes the record as a single atomic statement keyed on
	// (user, date, meal type), so concurrent toggles cannot lose updates.
	Upsert(ctx context.Context, record *models.MealRecord) error
	Find(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (*models.MealRecord, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.MealRecord, error)
	ListManualInRange(ctx context.Context, from, to time.Time) ([]models.MealRecord, error)
	DeleteManualInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed meal record repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, record *models.MealRecord) error {
	record.MealDate = calendar.DayOf(record.MealDate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "meal_date"}, {Name: "meal_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_on", "count", "is_manually_set", "modified_by", "notes", "updated_at",
			}),
		}).
		Create(record).Error
}

func (r *repository) Find(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (*models.MealRecord, error) {
	var record models.MealRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND meal_date = ? AND meal_type = ?", userID, calendar.DayOf(date), meal).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.MealRecord, error) {
	var records []models.MealRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND meal_date >= ? AND meal_date <= ?", userID, calendar.DayOf(from), calendar.DayOf(to)).
		Order("meal_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListManualInRange(ctx context.Context, from, to time.Time) ([]models.MealRecord, error) {
	var records []models.MealRecord
	err := r.db.WithContext(ctx).
		Where("is_manually_set = ? AND meal_date >= ? AND meal_date <= ?", true, calendar.DayOf(from), calendar.DayOf(to)).
		Order("meal_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) DeleteManualInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND is_manually_set = ? AND meal_date >= ? AND meal_date <= ?", userID, true, calendar.DayOf(from), calendar.DayOf(to)).
		Delete(&models.MealRecord{})
	return res.RowsAffected, res.Error
}
