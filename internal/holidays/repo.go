package holidays

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
)

// Repository manages persistence for holiday directory entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, holiday *models.Holiday) error
	Save(ctx context.Context, holiday *models.Holiday) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Holiday, error)
	ListActive(ctx context.Context) ([]models.Holiday, error)
	List(ctx context.Context) ([]models.Holiday, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a holiday repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, holiday *models.Holiday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

func (r *repository) Save(ctx context.Context, holiday *models.Holiday) error {
	return r.db.WithContext(ctx).Save(holiday).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Holiday, error) {
	var holiday models.Holiday
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&holiday).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("holiday_date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (r *repository) List(ctx context.Context) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := r.db.WithContext(ctx).
		Order("holiday_date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}
