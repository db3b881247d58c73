package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// AuditEntry is one append-only record of a mutating operation, keyed by the
// entity it touched. Before/After hold JSON snapshots where the operation
// changed persisted state.
type AuditEntry struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntityType string            `gorm:"column:entity_type;not null;index:idx_audit_entries_entity,priority:1"`
	EntityID   string            `gorm:"column:entity_id;not null;index:idx_audit_entries_entity,priority:2"`
	Action     enums.AuditAction `gorm:"column:action;not null"`
	ActorID    uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole  enums.Role        `gorm:"column:actor_role;not null"`
	Reason     string            `gorm:"column:reason"`
	Before     json.RawMessage   `gorm:"column:before;type:jsonb"`
	After      json.RawMessage   `gorm:"column:after;type:jsonb"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
