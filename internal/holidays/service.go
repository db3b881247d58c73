package holidays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/types"
	"github.com/sajidkarim/messmate-backend/pkg/validation"
)

// Service is the holiday directory surface.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Holiday, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Holiday, error)
	Deactivate(ctx context.Context, actor types.Actor, id uuid.UUID, reason string) (*models.Holiday, error)
	List(ctx context.Context) ([]models.Holiday, error)
	ListActive(ctx context.Context) ([]models.Holiday, error)
	ActiveOn(ctx context.Context, date time.Time) ([]models.Holiday, error)
}

// CreateInput captures a new directory entry.
type CreateInput struct {
	Date           time.Time         `validate:"required"`
	Name           string            `validate:"required"`
	Type           enums.HolidayType `validate:"required"`
	IsRecurring    bool
	RecurringMonth int
	RecurringDay   int
}

// UpdateInput mutates an existing entry. Nil fields are left untouched.
type UpdateInput struct {
	Date           *time.Time
	Name           *string
	Type           *enums.HolidayType
	IsRecurring    *bool
	RecurringMonth *int
	RecurringDay   *int
	IsActive       *bool
}

type service struct {
	repo  Repository
	audit audit.Service
}

// NewService wires a holiday service.
func NewService(repo Repository, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("holiday repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, audit: auditSvc}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Holiday, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid holiday type %q", input.Type))
	}
	if input.IsRecurring && (input.RecurringMonth < 1 || input.RecurringMonth > 12 || input.RecurringDay < 1 || input.RecurringDay > 31) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recurring holidays need a valid month and day")
	}

	holiday := &models.Holiday{
		HolidayDate:    calendar.DayOf(input.Date),
		Name:           input.Name,
		Type:           input.Type,
		IsRecurring:    input.IsRecurring,
		RecurringMonth: input.RecurringMonth,
		RecurringDay:   input.RecurringDay,
		IsActive:       true,
	}
	if holiday.IsRecurring && holiday.RecurringMonth == 0 {
		holiday.RecurringMonth = int(holiday.HolidayDate.Month())
		holiday.RecurringDay = holiday.HolidayDate.Day()
	}

	if err := s.repo.Create(ctx, holiday); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create holiday")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityHoliday,
		EntityID:   holiday.ID.String(),
		Action:     enums.AuditActionHolidayCreate,
		Actor:      actor,
		After:      holiday,
	}); err != nil {
		return nil, err
	}
	return holiday, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Holiday, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holiday id required")
	}

	holiday, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "holiday not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load holiday")
	}
	before := *holiday

	if input.Date != nil {
		holiday.HolidayDate = calendar.DayOf(*input.Date)
	}
	if input.Name != nil {
		holiday.Name = *input.Name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid holiday type %q", *input.Type))
		}
		holiday.Type = *input.Type
	}
	if input.IsRecurring != nil {
		holiday.IsRecurring = *input.IsRecurring
	}
	if input.RecurringMonth != nil {
		holiday.RecurringMonth = *input.RecurringMonth
	}
	if input.RecurringDay != nil {
		holiday.RecurringDay = *input.RecurringDay
	}
	if input.IsActive != nil {
		holiday.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, holiday); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save holiday")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityHoliday,
		EntityID:   holiday.ID.String(),
		Action:     enums.AuditActionHolidayUpdate,
		Actor:      actor,
		Before:     before,
		After:      holiday,
	}); err != nil {
		return nil, err
	}
	return holiday, nil
}

func (s *service) Deactivate(ctx context.Context, actor types.Actor, id uuid.UUID, reason string) (*models.Holiday, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	inactive := false
	holiday, err := s.Update(ctx, actor, id, UpdateInput{IsActive: &inactive})
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityHoliday,
		EntityID:   holiday.ID.String(),
		Action:     enums.AuditActionHolidayDisable,
		Actor:      actor,
		Reason:     reason,
	}); err != nil {
		return nil, err
	}
	return holiday, nil
}

func (s *service) List(ctx context.Context) ([]models.Holiday, error) {
	return s.repo.List(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]models.Holiday, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ActiveOn(ctx context.Context, date time.Time) ([]models.Holiday, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holidays")
	}
	return MatchOn(active, date), nil
}
