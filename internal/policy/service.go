package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	dbpkg "github.com/sajidkarim/messmate-backend/pkg/db"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	dbtypes "github.com/sajidkarim/messmate-backend/pkg/db/types"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

// Service is the policy store surface. Reads are lazy get-or-create; writes
// invalidate the cache so the next read repopulates from the database.
type Service interface {
	Get(ctx context.Context) (*models.PolicySettings, error)
	Update(ctx context.Context, actor types.Actor, input UpdateInput) (*models.PolicySettings, error)
	UpdateRateRules(ctx context.Context, actor types.Actor, rules dbtypes.RateRuleSet) (*models.PolicySettings, error)
}

// UpdateInput mutates individual policy sections. Nil sections stay as-is.
type UpdateInput struct {
	WeekendPolicy     *dbtypes.WeekendPolicy
	HolidayPolicy     *dbtypes.HolidayPolicy
	CutoffTimes       *dbtypes.CutoffTimes
	DefaultMealStatus *bool
}

type service struct {
	repo  Repository
	cache Cache
	audit audit.Service
}

// NewService wires the policy store.
func NewService(repo Repository, cache Cache, auditSvc audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("policy repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &service{repo: repo, cache: cache, audit: auditSvc}, nil
}

// Defaults returns the settings document used when none exists yet:
// meals default on, Friday is the weekend, all holiday types suppress.
func Defaults() models.PolicySettings {
	return models.PolicySettings{
		WeekendPolicy:     dbtypes.WeekendPolicy{Enabled: true, Days: []int{5}},
		HolidayPolicy:     dbtypes.HolidayPolicy{Enabled: true},
		CutoffTimes:       dbtypes.CutoffTimes{Lunch: "09:00", Dinner: "16:00"},
		DefaultMealStatus: true,
		RateRules:         dbtypes.RateRuleSet{},
		IsActive:          true,
	}
}

func (s *service) Get(ctx context.Context) (*models.PolicySettings, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	settings, err := s.repo.FindActive(ctx)
	if err == nil {
		s.cache.Set(ctx, settings)
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy settings")
	}

	created := Defaults()
	if err := s.repo.Create(ctx, &created); err != nil {
		// Another writer may have created the row concurrently.
		if dbpkg.IsUniqueViolation(err, "idx_policy_settings_single_active") {
			settings, ferr := s.repo.FindActive(ctx)
			if ferr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "load policy settings")
			}
			s.cache.Set(ctx, settings)
			return settings, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default policy settings")
	}
	s.cache.Set(ctx, &created)
	return &created, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, input UpdateInput) (*models.PolicySettings, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	before := *settings

	if input.WeekendPolicy != nil {
		settings.WeekendPolicy = *input.WeekendPolicy
	}
	if input.HolidayPolicy != nil {
		settings.HolidayPolicy = *input.HolidayPolicy
	}
	if input.CutoffTimes != nil {
		settings.CutoffTimes = *input.CutoffTimes
	}
	if input.DefaultMealStatus != nil {
		settings.DefaultMealStatus = *input.DefaultMealStatus
	}

	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityPolicySettings,
		EntityID:   settings.ID.String(),
		Action:     enums.AuditActionSettingsUpdate,
		Actor:      actor,
		Before:     before,
		After:      settings,
	}); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *service) UpdateRateRules(ctx context.Context, actor types.Actor, rules dbtypes.RateRuleSet) (*models.PolicySettings, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	for i, rule := range rules.Rules {
		if rule.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rate rule %d missing name", i))
		}
		if !rule.ConditionType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rate rule %q has invalid condition type %q", rule.Name, rule.ConditionType))
		}
		if !rule.Adjustment.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rate rule %q has invalid adjustment type %q", rule.Name, rule.Adjustment.Type))
		}
		if !rule.Adjustment.ApplyTo.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rate rule %q has invalid apply_to %q", rule.Name, rule.Adjustment.ApplyTo))
		}
		if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rate rule %q validity window is inverted", rule.Name))
		}
	}

	// Stored in evaluation order so readers never re-sort.
	sort.SliceStable(rules.Rules, func(i, j int) bool {
		return rules.Rules[i].Priority > rules.Rules[j].Priority
	})

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	before := *settings
	settings.RateRules = rules

	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, audit.RecordInput{
		EntityType: audit.EntityPolicySettings,
		EntityID:   settings.ID.String(),
		Action:     enums.AuditActionRateRulesUpdate,
		Actor:      actor,
		Before:     before,
		After:      settings,
	}); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *service) save(ctx context.Context, settings *models.PolicySettings) error {
	if err := s.repo.Save(ctx, settings); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save policy settings")
	}
	s.cache.Invalidate(ctx)
	return nil
}

func validateUpdate(input UpdateInput) error {
	if input.WeekendPolicy != nil {
		for _, day := range input.WeekendPolicy.Days {
			if day < 0 || day > 6 {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("weekend day %d out of range", day))
			}
		}
	}
	if input.HolidayPolicy != nil {
		for _, t := range input.HolidayPolicy.Types {
			if !t.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid holiday type %q", t))
			}
		}
	}
	if input.CutoffTimes != nil {
		for _, cutoff := range []string{input.CutoffTimes.Lunch, input.CutoffTimes.Dinner} {
			if cutoff == "" {
				continue
			}
			if _, _, err := dbtypes.ParseCutoff(cutoff); err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
			}
		}
	}
	return nil
}
