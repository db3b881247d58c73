package meals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/internal/holidays"
	"github.com/sajidkarim/messmate-backend/internal/policy"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/clock"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	dbtypes "github.com/sajidkarim/messmate-backend/pkg/db/types"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/types"
	"github.com/sajidkarim/messmate-backend/pkg/validation"
)

// MonthInfo is the lifecycle position of the billing month covering a date.
type MonthInfo struct {
	State enums.MonthState
	Start time.Time
	End   time.Time
}

// MonthSource reports month lifecycle state without pulling in the month
// service itself.
type MonthSource interface {
	MonthFor(ctx context.Context, date time.Time) (MonthInfo, error)
}

// Service is the per-user meal surface: effective status reads, toggle
// permission checks, and single/bulk toggles.
type Service interface {
	Status(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (EffectiveStatus, error)
	RangeStatus(ctx context.Context, userID uuid.UUID, from, to time.Time, meal enums.MealType) ([]DayStatus, error)
	CanToggle(ctx context.Context, actor types.Actor, userID uuid.UUID, date time.Time, meal enums.MealType) error
	Toggle(ctx context.Context, actor types.Actor, input ToggleInput) (*models.MealRecord, error)
	BulkToggle(ctx context.Context, actor types.Actor, input BulkToggleInput) (*BulkToggleResult, error)
}

// DayStatus pairs one date with its resolved status.
type DayStatus struct {
	Date   time.Time
	Status EffectiveStatus
}

// ToggleInput sets one (user, date, meal) cell.
type ToggleInput struct {
	UserID uuid.UUID      `validate:"required"`
	Date   time.Time      `validate:"required"`
	Meal   enums.MealType `validate:"required"`
	IsOn   bool
	Count  int `validate:"gte=0"`
	Notes  string
}

// BulkToggleInput applies the same toggle across a date range.
type BulkToggleInput struct {
	UserID uuid.UUID `validate:"required"`
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required"`
	Meal   enums.MealType
	IsOn   bool
	Count  int `validate:"gte=0"`
	Notes  string
}

// BulkToggleResult enumerates per-date outcomes. Dates fail independently.
type BulkToggleResult struct {
	Applied []time.Time
	Failed  []BulkFailure
}

// BulkFailure records one date that could not be toggled and why.
type BulkFailure struct {
	Date   time.Time
	Reason string
}

type service struct {
	repo      Repository
	policySvc policy.Service
	holidays  holidays.Service
	months    MonthSource
	audit     audit.Service
	clk       clock.Clock
}

// NewService wires the meal service.
func NewService(repo Repository, policySvc policy.Service, holidaySvc holidays.Service, months MonthSource, auditSvc audit.Service, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("meal repository required")
	}
	if policySvc == nil {
		return nil, fmt.Errorf("policy service required")
	}
	if holidaySvc == nil {
		return nil, fmt.Errorf("holiday service required")
	}
	if months == nil {
		return nil, fmt.Errorf("month source required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		repo:      repo,
		policySvc: policySvc,
		holidays:  holidaySvc,
		months:    months,
		audit:     auditSvc,
		clk:       clk,
	}, nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID, date time.Time, meal enums.MealType) (EffectiveStatus, error) {
	if !meal.IsValid() {
		return EffectiveStatus{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid meal type %q", meal))
	}

	settings, err := s.policySvc.Get(ctx)
	if err != nil {
		return EffectiveStatus{}, err
	}
	active, err := s.holidays.ListActive(ctx)
	if err != nil {
		return EffectiveStatus{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holidays")
	}

	record, err := s.repo.Find(ctx, userID, date, meal)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return EffectiveStatus{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find meal record")
	}
	return Resolve(date, record, active, settings), nil
}

func (s *service) RangeStatus(ctx context.Context, userID uuid.UUID, from, to time.Time, meal enums.MealType) ([]DayStatus, error) {
	if !meal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid meal type %q", meal))
	}
	if err := calendar.ValidateRange(from, to, calendar.MaxRangeDays); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, err.Error())
	}

	settings, err := s.policySvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.holidays.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holidays")
	}
	records, err := s.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list meal records")
	}

	byKey := make(map[string]*models.MealRecord, len(records))
	for i := range records {
		r := &records[i]
		byKey[dayKey(r.MealDate, r.MealType)] = r
	}

	var out []DayStatus
	for _, day := range calendar.Days(from, to) {
		record := byKey[dayKey(day, meal)]
		out = append(out, DayStatus{Date: day, Status: Resolve(day, record, active, settings)})
	}
	return out, nil
}

// CanToggle enforces the toggle permission rules: ordinary users may only
// toggle strictly future dates relative to the meal's cutoff time, managers
// may additionally toggle any date inside an open month's configured window,
// and nobody may toggle once the month is finalized. A manager acting outside
// an open window falls back to the ordinary cutoff rule. Violations carry a
// structured reason.
func (s *service) CanToggle(ctx context.Context, actor types.Actor, userID uuid.UUID, date time.Time, meal enums.MealType) error {
	if !actor.Valid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	if !meal.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid meal type %q", meal))
	}
	if !actor.Role.AtLeastManager() && !actor.IsSelf(userID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "users may only toggle their own meals")
	}

	month, err := s.months.MonthFor(ctx, date)
	if err != nil {
		return err
	}
	if month.State == enums.MonthStateFinalized || month.State == enums.MonthStateCarriedForward {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "month is finalized")
	}

	if actor.Role.AtLeastManager() && month.State == enums.MonthStateOpen {
		day := calendar.DayOf(date)
		if !day.Before(month.Start) && !day.After(month.End) {
			return nil
		}
	}

	settings, err := s.policySvc.Get(ctx)
	if err != nil {
		return err
	}
	deadline, err := cutoffInstant(date, meal, settings.CutoffTimes)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !s.clk.Now().Before(deadline) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cutoff passed for %s on %s", meal, calendar.DayOf(date).Format("2006-01-02")))
	}
	return nil
}

// Toggle writes the meal record even when the value is unchanged: state
// transitions are audited regardless, and billing recomputes from current
// state rather than from toggle events, so a same-value write never
// double-charges.
func (s *service) Toggle(ctx context.Context, actor types.Actor, input ToggleInput) (*models.MealRecord, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := s.validateToggle(input.Meal, input.Count); err != nil {
		return nil, err
	}
	if err := s.CanToggle(ctx, actor, input.UserID, input.Date, input.Meal); err != nil {
		return nil, err
	}
	return s.writeToggle(ctx, actor, input, enums.AuditActionMealToggle)
}

func (s *service) BulkToggle(ctx context.Context, actor types.Actor, input BulkToggleInput) (*BulkToggleResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := s.validateToggle(input.Meal, input.Count); err != nil {
		return nil, err
	}
	if err := calendar.ValidateRange(input.From, input.To, calendar.MaxRangeDays); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, err.Error())
	}

	result := &BulkToggleResult{}
	var errs error
	for _, day := range calendar.Days(input.From, input.To) {
		if err := s.CanToggle(ctx, actor, input.UserID, day, input.Meal); err != nil {
			result.Failed = append(result.Failed, BulkFailure{Date: day, Reason: err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", day.Format("2006-01-02"), err))
			continue
		}
		if _, err := s.writeToggle(ctx, actor, ToggleInput{
			UserID: input.UserID,
			Date:   day,
			Meal:   input.Meal,
			IsOn:   input.IsOn,
			Count:  input.Count,
			Notes:  input.Notes,
		}, enums.AuditActionMealBulkToggle); err != nil {
			result.Failed = append(result.Failed, BulkFailure{Date: day, Reason: err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", day.Format("2006-01-02"), err))
			continue
		}
		result.Applied = append(result.Applied, day)
	}

	// Partial success is a success: failures are enumerated in the result.
	// The aggregate error is returned only when nothing applied.
	if len(result.Applied) == 0 && errs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeStateConflict, errs, "no dates could be toggled")
	}
	return result, nil
}

func (s *service) writeToggle(ctx context.Context, actor types.Actor, input ToggleInput, action enums.AuditAction) (*models.MealRecord, error) {
	before, err := s.repo.Find(ctx, input.UserID, input.Date, input.Meal)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find meal record")
	}

	record := &models.MealRecord{
		UserID:        input.UserID,
		MealDate:      calendar.DayOf(input.Date),
		MealType:      input.Meal,
		IsOn:          input.IsOn,
		Count:         input.Count,
		IsManuallySet: true,
		ModifiedBy:    actor.UserID,
		Notes:         input.Notes,
	}
	if record.IsOn && record.Count == 0 {
		record.Count = 1
	}
	if !record.IsOn {
		record.Count = 0
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert meal record")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMealRecord,
		EntityID:   mealEntityID(input.UserID, record.MealDate, input.Meal),
		Action:     action,
		Actor:      actor,
		Before:     before,
		After:      record,
	}); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) validateToggle(meal enums.MealType, count int) error {
	if !meal.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid meal type %q", meal))
	}
	if count < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "count must not be negative")
	}
	return nil
}

// cutoffInstant anchors the policy's "HH:MM" cutoff on the meal date itself.
func cutoffInstant(date time.Time, meal enums.MealType, cutoffs dbtypes.CutoffTimes) (time.Time, error) {
	raw := cutoffs.For(meal)
	if raw == "" {
		// No cutoff configured: the whole meal day is toggleable.
		day := calendar.DayOf(date)
		return day.AddDate(0, 0, 1), nil
	}
	hour, minute, err := dbtypes.ParseCutoff(raw)
	if err != nil {
		return time.Time{}, err
	}
	day := calendar.DayOf(date)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), nil
}

func mealEntityID(userID uuid.UUID, date time.Time, meal enums.MealType) string {
	return fmt.Sprintf("%s:%s:%s", userID, date.Format("2006-01-02"), meal)
}

func dayKey(date time.Time, meal enums.MealType) string {
	return fmt.Sprintf("%s:%s", calendar.DayOf(date).Format("2006-01-02"), meal)
}
