package months

import (
	"context"

	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Repository persists month settings rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, year, month int) (*models.MonthSettings, error)
	Create(ctx context.Context, settings *models.MonthSettings) error
	Save(ctx context.Context, settings *models.MonthSettings) error
	List(ctx context.Context) ([]models.MonthSettings, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed month settings repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, year, month int) (*models.MonthSettings, error) {
	var settings models.MonthSettings
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *models.MonthSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Save(ctx context.Context, settings *models.MonthSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *repository) List(ctx context.Context) ([]models.MonthSettings, error) {
	var settings []models.MonthSettings
	err := r.db.WithContext(ctx).
		Order("year ASC, month ASC").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}
