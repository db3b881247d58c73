package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Balance caches the sum of a user's transactions for one balance type.
// The cached amount must always equal the ledger sum; the reconcile
// operation restores the invariant after manual corrections.
type Balance struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_balances_user_type,priority:1"`
	BalanceType  enums.BalanceType `gorm:"column:balance_type;not null;uniqueIndex:idx_balances_user_type,priority:2"`
	Amount       decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	IsFrozen     bool              `gorm:"column:is_frozen;not null;default:false"`
	FrozenAt     *time.Time        `gorm:"column:frozen_at"`
	FrozenBy     *uuid.UUID        `gorm:"column:frozen_by;type:uuid"`
	FrozenReason string            `gorm:"column:frozen_reason"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
