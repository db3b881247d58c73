package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajidkarim/messmate-backend/pkg/enums"
)

// Transaction is one immutable ledger entry. NewBalance equals
// PreviousBalance plus Amount at creation time. Entries are corrected or
// reversed, never deleted; correction snapshots live in the audit log.
type Transaction struct {
	ID                    uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Type                  enums.TransactionType `gorm:"column:type;not null"`
	BalanceType           enums.BalanceType     `gorm:"column:balance_type;not null"`
	Amount                decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	PreviousBalance       decimal.Decimal       `gorm:"column:previous_balance;type:numeric(12,2);not null"`
	NewBalance            decimal.Decimal       `gorm:"column:new_balance;type:numeric(12,2);not null"`
	Description           string                `gorm:"column:description"`
	Reference             string                `gorm:"column:reference"`
	PerformedBy           uuid.UUID             `gorm:"column:performed_by;type:uuid;not null"`
	IsReversed            bool                  `gorm:"column:is_reversed;not null;default:false"`
	OriginalTransactionID *uuid.UUID            `gorm:"column:original_transaction_id;type:uuid"`
	CreatedAt             time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
