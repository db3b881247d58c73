package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

// Entity type labels used across the audit log.
const (
	EntityMealRecord     = "meal_record"
	EntityMonthSettings  = "month_settings"
	EntityTransaction    = "transaction"
	EntityBalance        = "balance"
	EntityPolicySettings = "policy_settings"
	EntityHoliday        = "holiday"
	EntityBreakfastEvent = "breakfast_event"
)

// Service records audit entries for every mutating core operation.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditEntry, error)
}

// RecordInput captures one audit event. Before and After are snapshotted to
// JSON when present; either may be nil.
type RecordInput struct {
	EntityType string
	EntityID   string
	Action     enums.AuditAction
	Actor      types.Actor
	Reason     string
	Before     any
	After      any
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) error {
	return s.RecordTx(ctx, nil, input)
}

func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if input.EntityType == "" || input.EntityID == "" {
		return fmt.Errorf("audit entity reference required")
	}
	if input.Action == "" {
		return fmt.Errorf("audit action required")
	}
	if !input.Actor.Valid() {
		return fmt.Errorf("audit actor required")
	}

	entry := &models.AuditEntry{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Action:     input.Action,
		ActorID:    input.Actor.UserID,
		ActorRole:  input.Actor.Role,
		Reason:     input.Reason,
	}

	var err error
	if entry.Before, err = snapshot(input.Before); err != nil {
		return fmt.Errorf("snapshot before state: %w", err)
	}
	if entry.After, err = snapshot(input.After); err != nil {
		return fmt.Errorf("snapshot after state: %w", err)
	}

	return s.repo.WithTx(tx).Create(ctx, entry)
}

func (s *service) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditEntry, error) {
	if entityType == "" || entityID == "" {
		return nil, fmt.Errorf("audit entity reference required")
	}
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

func snapshot(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
