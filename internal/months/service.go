package months

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/internal/holidays"
	"github.com/sajidkarim/messmate-backend/internal/meals"
	"github.com/sajidkarim/messmate-backend/internal/policy"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/types"
	"github.com/sajidkarim/messmate-backend/pkg/validation"
)

// ledgerGate is the slice of the ledger the month lifecycle needs.
type ledgerGate interface {
	UserIDs(ctx context.Context) ([]uuid.UUID, error)
	Balances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error)
	RecordCarryForward(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, carried decimal.Decimal, reference string) (*models.Transaction, error)
}

// Service drives the billing month lifecycle: Draft, Open, Finalized,
// CarriedForward.
type Service interface {
	Resolve(ctx context.Context, year, month int) (Resolved, error)
	Configure(ctx context.Context, actor types.Actor, input ConfigureInput) (*models.MonthSettings, error)
	Finalize(ctx context.Context, actor types.Actor, year, month int) (*models.MonthSettings, error)
	CarryForward(ctx context.Context, actor types.Actor, year, month int) (*CarryForwardResult, error)
	ForceUpdate(ctx context.Context, actor types.Actor, year, month int, input ConfigureInput, reason string) (*models.MonthSettings, error)
	ForceUnfinalize(ctx context.Context, actor types.Actor, year, month int, reason string) (*models.MonthSettings, error)
	Recalculate(ctx context.Context, actor types.Actor, year, month int) (*RecalculateResult, error)
	ResetToDefault(ctx context.Context, actor types.Actor, userID uuid.UUID, from, to time.Time) (int64, error)

	// MonthFor reports the lifecycle position of the month covering a date.
	MonthFor(ctx context.Context, date time.Time) (meals.MonthInfo, error)
}

// ConfigureInput sets a month's window and rates. Zero dates default to the
// calendar month boundaries.
type ConfigureInput struct {
	Year       int `validate:"required,gte=2000,lte=2100"`
	Month      int `validate:"required,gte=1,lte=12"`
	StartDate  time.Time
	EndDate    time.Time
	LunchRate  decimal.Decimal
	DinnerRate decimal.Decimal
}

// CarryForwardResult enumerates the provenance entries written.
type CarryForwardResult struct {
	Entries []models.Transaction
	Skipped int
}

// RecalculateResult summarizes a month recalculation. Dates fail
// independently; failures are enumerated rather than aborting the run.
type RecalculateResult struct {
	Materialized int
	Preserved    int
	Failures     []string
}

type service struct {
	repo      Repository
	mealRepo  meals.Repository
	policySvc policy.Service
	holidays  holidays.Service
	ledger    ledgerGate
	audit     audit.Service
}

// NewService wires the month lifecycle service.
func NewService(repo Repository, mealRepo meals.Repository, policySvc policy.Service, holidaySvc holidays.Service, ledger ledgerGate, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("month repository required")
	}
	if mealRepo == nil {
		return nil, fmt.Errorf("meal repository required")
	}
	if policySvc == nil {
		return nil, fmt.Errorf("policy service required")
	}
	if holidaySvc == nil {
		return nil, fmt.Errorf("holiday service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger gate required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{
		repo:      repo,
		mealRepo:  mealRepo,
		policySvc: policySvc,
		holidays:  holidaySvc,
		ledger:    ledger,
		audit:     auditSvc,
	}, nil
}

func (s *service) Resolve(ctx context.Context, year, month int) (Resolved, error) {
	if month < 1 || month > 12 {
		return Resolved{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid month %d", month))
	}
	settings, err := s.repo.Find(ctx, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return preview(year, time.Month(month)), nil
		}
		return Resolved{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find month settings")
	}
	return Resolved{Settings: *settings, Persisted: true}, nil
}

func (s *service) Configure(ctx context.Context, actor types.Actor, input ConfigureInput) (*models.MonthSettings, error) {
	return s.configure(ctx, actor, input, false, "")
}

// ForceUpdate bypasses the finalized gate. Superadmin only, reason required.
func (s *service) ForceUpdate(ctx context.Context, actor types.Actor, year, month int, input ConfigureInput, reason string) (*models.MonthSettings, error) {
	if actor.Role != enums.RoleSuperadmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin role required")
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	input.Year = year
	input.Month = month
	return s.configure(ctx, actor, input, true, reason)
}

func (s *service) configure(ctx context.Context, actor types.Actor, input ConfigureInput, force bool, reason string) (*models.MonthSettings, error) {
	if !force && !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := validateConfigure(&input); err != nil {
		return nil, err
	}

	resolved, err := s.Resolve(ctx, input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	state := resolved.State()
	if !force && (state == enums.MonthStateFinalized || state == enums.MonthStateCarriedForward) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month is finalized")
	}

	settings := resolved.Settings
	before := settings
	settings.StartDate = input.StartDate
	settings.EndDate = input.EndDate
	settings.LunchRate = input.LunchRate
	settings.DinnerRate = input.DinnerRate

	if resolved.Persisted {
		if err := s.repo.Save(ctx, &settings); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save month settings")
		}
	} else {
		if err := s.repo.Create(ctx, &settings); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create month settings")
		}
	}

	action := enums.AuditActionMonthConfigure
	if force {
		action = enums.AuditActionMonthForceUpdate
	}
	record := audit.RecordInput{
		EntityType: audit.EntityMonthSettings,
		EntityID:   settings.ID.String(),
		Action:     action,
		Actor:      actor,
		Reason:     reason,
		After:      settings,
	}
	if resolved.Persisted {
		record.Before = before
	}
	if err := s.audit.Record(ctx, record); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *service) Finalize(ctx context.Context, actor types.Actor, year, month int) (*models.MonthSettings, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}

	resolved, err := s.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if !resolved.Persisted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month has never been configured")
	}
	if resolved.Settings.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month already finalized")
	}

	settings := resolved.Settings
	before := settings
	settings.IsFinalized = true
	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save month settings")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMonthSettings,
		EntityID:   settings.ID.String(),
		Action:     enums.AuditActionMonthFinalize,
		Actor:      actor,
		Before:     before,
		After:      settings,
	}); err != nil {
		return nil, err
	}
	return &settings, nil
}

// CarryForward documents balance continuity into the next month: one
// zero-amount adjustment per user per non-zero balance type. Balances are
// untouched; the flag makes the operation idempotent-guarded.
func (s *service) CarryForward(ctx context.Context, actor types.Actor, year, month int) (*CarryForwardResult, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}

	resolved, err := s.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if !resolved.Persisted || !resolved.Settings.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only a finalized month can be carried forward")
	}
	if resolved.Settings.IsCarriedForward {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month already carried forward")
	}

	userIDs, err := s.ledger.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &CarryForwardResult{}
	reference := fmt.Sprintf("carry-forward:%04d-%02d", year, month)
	var errs error
	for _, userID := range userIDs {
		balances, err := s.ledger.Balances(ctx, userID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		for _, balance := range balances {
			if balance.Amount.IsZero() {
				result.Skipped++
				continue
			}
			entry, err := s.ledger.RecordCarryForward(ctx, actor, userID, balance.BalanceType, balance.Amount, reference)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("user %s %s: %w", userID, balance.BalanceType, err))
				continue
			}
			result.Entries = append(result.Entries, *entry)
		}
	}
	if errs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "carry-forward incomplete")
	}

	settings := resolved.Settings
	before := settings
	settings.IsCarriedForward = true
	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save month settings")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMonthSettings,
		EntityID:   settings.ID.String(),
		Action:     enums.AuditActionMonthCarry,
		Actor:      actor,
		Before:     before,
		After:      settings,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ForceUnfinalize(ctx context.Context, actor types.Actor, year, month int, reason string) (*models.MonthSettings, error) {
	if actor.Role != enums.RoleSuperadmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin role required")
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	resolved, err := s.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if !resolved.Persisted || !resolved.Settings.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month is not finalized")
	}

	settings := resolved.Settings
	before := settings
	settings.IsFinalized = false
	settings.IsCarriedForward = false
	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save month settings")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMonthSettings,
		EntityID:   settings.ID.String(),
		Action:     enums.AuditActionMonthUnfinalize,
		Actor:      actor,
		Reason:     reason,
		Before:     before,
		After:      settings,
	}); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Recalculate rematerializes default meal records for every user and day of
// an open month. Manually-set records are never touched.
func (s *service) Recalculate(ctx context.Context, actor types.Actor, year, month int) (*RecalculateResult, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}

	resolved, err := s.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	state := resolved.State()
	if state == enums.MonthStateFinalized || state == enums.MonthStateCarriedForward {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "month is finalized")
	}

	settings, err := s.policySvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.holidays.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holidays")
	}
	userIDs, err := s.ledger.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	start, end := resolved.Window()
	result := &RecalculateResult{}
	for _, userID := range userIDs {
		records, err := s.mealRepo.ListRange(ctx, userID, start, end)
		if err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("user %s: %v", userID, err))
			continue
		}
		manual := make(map[string]bool, len(records))
		for _, r := range records {
			if r.IsManuallySet {
				manual[recordKey(r.MealDate, r.MealType)] = true
			}
		}

		for _, day := range calendar.Days(start, end) {
			for _, mealType := range []enums.MealType{enums.MealTypeLunch, enums.MealTypeDinner} {
				if manual[recordKey(day, mealType)] {
					result.Preserved++
					continue
				}
				status := meals.Resolve(day, nil, active, settings)
				record := &models.MealRecord{
					UserID:     userID,
					MealDate:   day,
					MealType:   mealType,
					IsOn:       status.IsOn,
					Count:      status.Count,
					ModifiedBy: actor.UserID,
				}
				if err := s.mealRepo.Upsert(ctx, record); err != nil {
					result.Failures = append(result.Failures,
						fmt.Sprintf("user %s %s %s: %v", userID, day.Format("2006-01-02"), mealType, err))
					continue
				}
				result.Materialized++
			}
		}
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMonthSettings,
		EntityID:   fmt.Sprintf("%04d-%02d", year, month),
		Action:     enums.AuditActionMealRecalculate,
		Actor:      actor,
		After:      result,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ResetToDefault deletes a user's manual records in range, letting defaults
// re-emerge. Open months only, and never across more than 31 days.
func (s *service) ResetToDefault(ctx context.Context, actor types.Actor, userID uuid.UUID, from, to time.Time) (int64, error) {
	if !actor.Role.AtLeastManager() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := calendar.ValidateRange(from, to, calendar.MaxRangeDays); err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, err.Error())
	}

	for _, date := range []time.Time{from, to} {
		resolved, err := s.Resolve(ctx, date.Year(), int(date.Month()))
		if err != nil {
			return 0, err
		}
		state := resolved.State()
		if state == enums.MonthStateFinalized || state == enums.MonthStateCarriedForward {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "month is finalized")
		}
	}

	deleted, err := s.mealRepo.DeleteManualInRange(ctx, userID, from, to)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete manual records")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityMealRecord,
		EntityID:   userID.String(),
		Action:     enums.AuditActionMealReset,
		Actor:      actor,
		After: map[string]any{
			"from":    calendar.DayOf(from).Format("2006-01-02"),
			"to":      calendar.DayOf(to).Format("2006-01-02"),
			"deleted": deleted,
		},
	}); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *service) MonthFor(ctx context.Context, date time.Time) (meals.MonthInfo, error) {
	resolved, err := s.Resolve(ctx, date.Year(), int(date.Month()))
	if err != nil {
		return meals.MonthInfo{}, err
	}
	start, end := resolved.Window()
	return meals.MonthInfo{State: resolved.State(), Start: start, End: end}, nil
}

func validateConfigure(input *ConfigureInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	start, end := calendar.MonthWindow(input.Year, time.Month(input.Month))
	if input.StartDate.IsZero() {
		input.StartDate = start
	} else {
		input.StartDate = calendar.DayOf(input.StartDate)
	}
	if input.EndDate.IsZero() {
		input.EndDate = end
	} else {
		input.EndDate = calendar.DayOf(input.EndDate)
	}
	if input.EndDate.Before(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}
	if input.LunchRate.IsNegative() || input.DinnerRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "rates must not be negative")
	}
	return nil
}

func recordKey(date time.Time, meal enums.MealType) string {
	return calendar.DayOf(date).Format("2006-01-02") + ":" + string(meal)
}
