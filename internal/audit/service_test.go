package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

type fakeRepository struct {
	entries []*models.AuditEntry
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func TestService_RecordSnapshotsState(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	actor := types.Actor{UserID: uuid.New(), Role: enums.RoleManager}
	input := RecordInput{
		EntityType: EntityMonthSettings,
		EntityID:   "2025-03",
		Action:     enums.AuditActionMonthFinalize,
		Actor:      actor,
		Reason:     "month closed",
		Before:     map[string]bool{"is_finalized": false},
		After:      map[string]bool{"is_finalized": true},
	}

	if err := svc.Record(context.Background(), input); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}

	entry := repo.entries[0]
	if entry.ActorID != actor.UserID || entry.ActorRole != enums.RoleManager {
		t.Fatalf("actor not captured: %+v", entry)
	}
	if !strings.Contains(string(entry.Before), `"is_finalized":false`) {
		t.Fatalf("before snapshot missing: %s", entry.Before)
	}
	if !strings.Contains(string(entry.After), `"is_finalized":true`) {
		t.Fatalf("after snapshot missing: %s", entry.After)
	}
}

func TestService_RecordValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	actor := types.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	tests := []struct {
		name  string
		input RecordInput
	}{
		{
			name:  "missing entity",
			input: RecordInput{Action: enums.AuditActionTxApply, Actor: actor},
		},
		{
			name:  "missing action",
			input: RecordInput{EntityType: EntityTransaction, EntityID: "x", Actor: actor},
		},
		{
			name:  "missing actor",
			input: RecordInput{EntityType: EntityTransaction, EntityID: "x", Action: enums.AuditActionTxApply},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Record(context.Background(), tt.input); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
