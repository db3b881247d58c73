package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/internal/holidays"
	"github.com/sajidkarim/messmate-backend/internal/meals"
	"github.com/sajidkarim/messmate-backend/internal/months"
	"github.com/sajidkarim/messmate-backend/internal/policy"
	"github.com/sajidkarim/messmate-backend/internal/rates"
	"github.com/sajidkarim/messmate-backend/pkg/calendar"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/types"
	"github.com/sajidkarim/messmate-backend/pkg/validation"
)

// monthSource is the slice of the month lifecycle the aggregator needs.
type monthSource interface {
	Resolve(ctx context.Context, year, month int) (months.Resolved, error)
}

// balanceSource is the slice of the ledger the aggregator needs.
type balanceSource interface {
	Balance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error)
	UserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Service folds eligibility, rates and balances into billing summaries, and
// manages breakfast events.
type Service interface {
	MonthlySummary(ctx context.Context, userID uuid.UUID, year, month int, balanceType enums.BalanceType) (*MonthlySummary, error)
	OverallSummary(ctx context.Context, userID uuid.UUID, year, month int) (*OverallSummary, error)
	CreateEvent(ctx context.Context, actor types.Actor, input CreateEventInput) (*models.BreakfastEvent, error)
	ListEvents(ctx context.Context, year, month int) ([]models.BreakfastEvent, error)
}

// MonthlySummary is the billing position of one user for one meal category
// over one billing month.
type MonthlySummary struct {
	UserID      uuid.UUID         `json:"user_id"`
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	BalanceType enums.BalanceType `json:"balance_type"`
	TotalMeals  int               `json:"total_meals"`
	TotalCharge decimal.Decimal   `json:"total_charge"`
	Balance     decimal.Decimal   `json:"balance"`
	Due         decimal.Decimal   `json:"due"`
	Status      enums.DueStatus   `json:"status"`
}

// OverallSummary combines every meal category for one user and month.
type OverallSummary struct {
	UserID      uuid.UUID        `json:"user_id"`
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	Categories  []MonthlySummary `json:"categories"`
	TotalCharge decimal.Decimal  `json:"total_charge"`
	Balance     decimal.Decimal  `json:"balance"`
	Due         decimal.Decimal  `json:"due"`
	Status      enums.DueStatus  `json:"status"`
}

// CreateEventInput describes one breakfast event. Shares may be left nil to
// split the total cost evenly across participants.
type CreateEventInput struct {
	Name         string    `validate:"required"`
	EventDate    time.Time `validate:"required"`
	TotalCost    decimal.Decimal
	Participants []ParticipantInput `validate:"required,min=1"`
}

// ParticipantInput names one participant and, optionally, their share.
type ParticipantInput struct {
	UserID uuid.UUID
	Share  *decimal.Decimal
}

type service struct {
	repo       Repository
	mealRepo   meals.Repository
	policySvc  policy.Service
	holidaySvc holidays.Service
	monthSvc   monthSource
	ledger     balanceSource
	audit      audit.Service
}

// NewService wires the billing aggregator.
func NewService(repo Repository, mealRepo meals.Repository, policySvc policy.Service, holidaySvc holidays.Service, monthSvc monthSource, ledger balanceSource, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
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
	if monthSvc == nil {
		return nil, fmt.Errorf("month source required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("balance source required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{
		repo:       repo,
		mealRepo:   mealRepo,
		policySvc:  policySvc,
		holidaySvc: holidaySvc,
		monthSvc:   monthSvc,
		ledger:     ledger,
		audit:      auditSvc,
	}, nil
}

func (s *service) MonthlySummary(ctx context.Context, userID uuid.UUID, year, month int, balanceType enums.BalanceType) (*MonthlySummary, error) {
	if !balanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", balanceType))
	}

	resolved, err := s.monthSvc.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	start, end := resolved.Window()

	summary := &MonthlySummary{
		UserID:      userID,
		Year:        year,
		Month:       month,
		BalanceType: balanceType,
	}

	if balanceType == enums.BalanceTypeBreakfast {
		if err := s.breakfastCharges(ctx, userID, start, end, summary); err != nil {
			return nil, err
		}
	} else {
		if err := s.mealCharges(ctx, userID, resolved, balanceType, summary); err != nil {
			return nil, err
		}
	}

	balance, err := s.ledger.Balance(ctx, userID, balanceType)
	if err != nil {
		return nil, err
	}
	summary.Balance = balance.Amount
	summary.Due = summary.TotalCharge.Sub(summary.Balance)
	summary.Status = classify(summary.Due)
	return summary, nil
}

func (s *service) OverallSummary(ctx context.Context, userID uuid.UUID, year, month int) (*OverallSummary, error) {
	overall := &OverallSummary{UserID: userID, Year: year, Month: month}
	for _, balanceType := range enums.AllBalanceTypes() {
		summary, err := s.MonthlySummary(ctx, userID, year, month, balanceType)
		if err != nil {
			return nil, err
		}
		overall.Categories = append(overall.Categories, *summary)
		overall.TotalCharge = overall.TotalCharge.Add(summary.TotalCharge)
		overall.Balance = overall.Balance.Add(summary.Balance)
	}
	overall.Due = overall.TotalCharge.Sub(overall.Balance)
	overall.Status = classify(overall.Due)
	return overall, nil
}

// mealCharges folds per-day eligibility across the month window. The charge
// for each day is count times the day's rate: the fixed month rate, or the
// rule engine's resolution when rate rules are enabled.
func (s *service) mealCharges(ctx context.Context, userID uuid.UUID, resolved months.Resolved, balanceType enums.BalanceType, summary *MonthlySummary) error {
	mealType := enums.MealTypeLunch
	if balanceType == enums.BalanceTypeDinner {
		mealType = enums.MealTypeDinner
	}

	settings, err := s.policySvc.Get(ctx)
	if err != nil {
		return err
	}
	active, err := s.holidaySvc.ListActive(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holidays")
	}

	start, end := resolved.Window()
	records, err := s.mealRepo.ListRange(ctx, userID, start, end)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list meal records")
	}
	byDay := make(map[string]*models.MealRecord, len(records))
	for i := range records {
		if records[i].MealType == mealType {
			byDay[dayKey(records[i].MealDate)] = &records[i]
		}
	}

	// Headcount feeds the user_count rule condition; ledger presence is the
	// active-user proxy since there is no separate membership roster.
	var activeUsers *int
	if settings.RateRules.Enabled {
		ids, err := s.ledger.UserIDs(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active users")
		}
		count := len(ids)
		activeUsers = &count
	}

	for _, day := range calendar.Days(start, end) {
		status := meals.Resolve(day, byDay[dayKey(day)], active, settings)
		if !status.IsOn || status.Count == 0 {
			continue
		}

		rate := resolved.Settings.LunchRate
		if mealType == enums.MealTypeDinner {
			rate = resolved.Settings.DinnerRate
		}
		if settings.RateRules.Enabled {
			resolution := rates.Resolve(rates.Input{
				Date:        day,
				BaseLunch:   resolved.Settings.LunchRate,
				BaseDinner:  resolved.Settings.DinnerRate,
				Rules:       settings.RateRules,
				Holidays:    holidays.MatchOn(active, day),
				ActiveUsers: activeUsers,
			})
			rate = resolution.Lunch
			if mealType == enums.MealTypeDinner {
				rate = resolution.Dinner
			}
		}

		summary.TotalMeals += status.Count
		summary.TotalCharge = summary.TotalCharge.Add(rate.Mul(decimal.NewFromInt(int64(status.Count))))
	}
	return nil
}

// breakfastCharges sums the user's per-event shares instead of a rate times
// count product.
func (s *service) breakfastCharges(ctx context.Context, userID uuid.UUID, start, end time.Time, summary *MonthlySummary) error {
	participations, err := s.repo.ListParticipations(ctx, userID, start, end)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list breakfast participations")
	}
	for _, participation := range participations {
		summary.TotalMeals++
		summary.TotalCharge = summary.TotalCharge.Add(participation.ShareAmount)
	}
	return nil
}

func (s *service) CreateEvent(ctx context.Context, actor types.Actor, input CreateEventInput) (*models.BreakfastEvent, error) {
	if !actor.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := validateEvent(input); err != nil {
		return nil, err
	}

	event := &models.BreakfastEvent{
		EventDate:    calendar.DayOf(input.EventDate),
		Name:         input.Name,
		TotalCost:    input.TotalCost,
		Participants: splitShares(input),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create breakfast event")
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityBreakfastEvent,
		EntityID:   event.ID.String(),
		Action:     enums.AuditActionBreakfastCreate,
		Actor:      actor,
		After:      event,
	}); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) ListEvents(ctx context.Context, year, month int) ([]models.BreakfastEvent, error) {
	resolved, err := s.monthSvc.Resolve(ctx, year, month)
	if err != nil {
		return nil, err
	}
	start, end := resolved.Window()
	events, err := s.repo.ListEventsInRange(ctx, start, end)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list breakfast events")
	}
	return events, nil
}

func validateEvent(input CreateEventInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	if input.TotalCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total cost must not be negative")
	}
	if len(input.Participants) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one participant required")
	}

	seen := make(map[uuid.UUID]bool, len(input.Participants))
	explicit := 0
	total := decimal.Zero
	for _, p := range input.Participants {
		if p.UserID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "participant user id required")
		}
		if seen[p.UserID] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate participant %s", p.UserID))
		}
		seen[p.UserID] = true
		if p.Share != nil {
			if p.Share.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "participant share must not be negative")
			}
			explicit++
			total = total.Add(*p.Share)
		}
	}
	// Shares are all explicit or all derived; a mix is ambiguous.
	if explicit != 0 && explicit != len(input.Participants) {
		return pkgerrors.New(pkgerrors.CodeValidation, "either every share is explicit or none is")
	}
	if explicit == len(input.Participants) && !total.Equal(input.TotalCost) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("shares sum to %s, total cost is %s", total, input.TotalCost))
	}
	return nil
}

// splitShares builds participant rows. When no explicit shares are given the
// total cost is divided evenly, with the rounding remainder folded into the
// last participant so the shares always sum to the total.
func splitShares(input CreateEventInput) []models.BreakfastParticipant {
	participants := make([]models.BreakfastParticipant, 0, len(input.Participants))
	if input.Participants[0].Share != nil {
		for _, p := range input.Participants {
			participants = append(participants, models.BreakfastParticipant{
				UserID:      p.UserID,
				ShareAmount: *p.Share,
			})
		}
		return participants
	}

	count := int64(len(input.Participants))
	share := input.TotalCost.DivRound(decimal.NewFromInt(count), 2)
	allocated := decimal.Zero
	for i, p := range input.Participants {
		amount := share
		if i == len(input.Participants)-1 {
			amount = input.TotalCost.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		participants = append(participants, models.BreakfastParticipant{
			UserID:      p.UserID,
			ShareAmount: amount,
		})
	}
	return participants
}

func classify(due decimal.Decimal) enums.DueStatus {
	switch {
	case due.IsPositive():
		return enums.DueStatusDue
	case due.IsNegative():
		return enums.DueStatusAdvance
	default:
		return enums.DueStatusSettled
	}
}

func dayKey(date time.Time) string {
	return calendar.DayOf(date).Format("2006-01-02")
}
