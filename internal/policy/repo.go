package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Repository persists the singleton settings document.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActive(ctx context.Context) (*models.PolicySettings, error)
	Create(ctx context.Context, settings *models.PolicySettings) error
	Save(ctx context.Context, settings *models.PolicySettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed policy settings repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindActive returns the single active settings row, or gorm.ErrRecordNotFound
// when none has been created yet.
func (r *repository) FindActive(ctx context.Context) (*models.PolicySettings, error) {
	var settings models.PolicySettings
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *models.PolicySettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Save(ctx context.Context, settings *models.PolicySettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
