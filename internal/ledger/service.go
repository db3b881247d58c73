package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/metrics"
	"github.com/sajidkarim/messmate-backend/pkg/pagination"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the ledger surface. Every balance mutation runs as one
// database transaction around a row-locked balance read, so concurrent
// writers for the same (user, balance type) serialize instead of losing
// updates.
type Service interface {
	Apply(ctx context.Context, actor types.Actor, input ApplyInput) (*models.Transaction, error)
	// RecordCarryForward writes a zero-amount adjustment documenting the
	// balance carried across a month boundary. The balance is untouched;
	// the entry exists for provenance only.
	RecordCarryForward(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, carried decimal.Decimal, reference string) (*models.Transaction, error)
	Reverse(ctx context.Context, actor types.Actor, transactionID uuid.UUID, reason string) (*models.Transaction, error)
	Correct(ctx context.Context, actor types.Actor, input CorrectInput) (*models.Transaction, error)
	Recalculate(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, write bool) (*ReconcileReport, error)
	Freeze(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, reason string) (*models.Balance, error)
	Unfreeze(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error)
	Balance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error)
	Balances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error)
	UserIDs(ctx context.Context) ([]uuid.UUID, error)
	History(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType, params pagination.Params) (*HistoryPage, error)
}

// ApplyInput describes one balance mutation. Deposit, deduction and refund
// take an unsigned magnitude; the service derives the sign. Adjustment takes
// either a signed delta or an explicit target amount.
type ApplyInput struct {
	UserID      uuid.UUID
	BalanceType enums.BalanceType
	Type        enums.TransactionType
	Amount      decimal.Decimal
	// Target, when set on an adjustment, makes the service compute the
	// delta from the current balance itself.
	Target      *decimal.Decimal
	Description string
	Reference   string
}

// CorrectInput mutates a stored transaction in place. Nil fields are kept.
// When the amount changes, only the delta is applied to the cached balance.
type CorrectInput struct {
	TransactionID  uuid.UUID
	NewAmount      *decimal.Decimal
	NewDescription *string
	Reason         string
}

// ReconcileReport is the outcome of a cached-vs-computed balance check.
type ReconcileReport struct {
	UserID      uuid.UUID
	BalanceType enums.BalanceType
	Cached      decimal.Decimal
	Computed    decimal.Decimal
	Drift       decimal.Decimal
	Written     bool
}

// DriftError surfaces an uncorrected drift as a consistency error. A clean
// report, or one whose cache was rewritten, yields nil.
func (r *ReconcileReport) DriftError() error {
	if r.Drift.IsZero() || r.Written {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConsistency,
		fmt.Sprintf("%s balance for %s drifted by %s (cached %s, ledger %s)",
			r.BalanceType, r.UserID, r.Drift, r.Cached, r.Computed))
}

// HistoryPage is one cursor page of a user's transactions.
type HistoryPage struct {
	Transactions []models.Transaction
	NextCursor   string
}

type service struct {
	repo    Repository
	tx      txRunner
	audit   audit.Service
	metrics *metrics.LedgerMetrics
}

// NewService wires the ledger service. Metrics may be nil.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc, metrics: m}, nil
}

func (s *service) Apply(ctx context.Context, actor types.Actor, input ApplyInput) (*models.Transaction, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if err := validateApply(input); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := lockOrCreateBalance(ctx, repo, input.UserID, input.BalanceType)
		if err != nil {
			return err
		}
		if balance.IsFrozen {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s balance is frozen", input.BalanceType))
		}

		amount, err := signedAmount(input, balance.Amount)
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:          input.UserID,
			Type:            input.Type,
			BalanceType:     input.BalanceType,
			Amount:          amount,
			PreviousBalance: balance.Amount,
			NewBalance:      balance.Amount.Add(amount),
			Description:     input.Description,
			Reference:       input.Reference,
			PerformedBy:     actor.UserID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}

		balance.Amount = txn.NewBalance
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityTransaction,
			EntityID:   txn.ID.String(),
			Action:     enums.AuditActionTxApply,
			Actor:      actor,
			After:      txn,
		}); err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(string(created.Type), string(created.BalanceType))
	return created, nil
}

func (s *service) RecordCarryForward(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, carried decimal.Decimal, reference string) (*models.Transaction, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if !balanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", balanceType))
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := lockOrCreateBalance(ctx, repo, userID, balanceType)
		if err != nil {
			return err
		}
		if balance.IsFrozen {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s balance is frozen", balanceType))
		}

		txn := &models.Transaction{
			UserID:          userID,
			Type:            enums.TransactionTypeAdjustment,
			BalanceType:     balanceType,
			Amount:          decimal.Zero,
			PreviousBalance: balance.Amount,
			NewBalance:      balance.Amount,
			Description:     fmt.Sprintf("carry-forward: %s carried", carried),
			Reference:       reference,
			PerformedBy:     actor.UserID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create carry-forward entry")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityTransaction,
			EntityID:   txn.ID.String(),
			Action:     enums.AuditActionMonthCarry,
			Actor:      actor,
			After:      txn,
		}); err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(string(created.Type), string(created.BalanceType))
	return created, nil
}

// Reverse offsets a transaction with a new reversal entry and flags the
// original. Reversing twice is rejected, as is reversing a reversal.
func (s *service) Reverse(ctx context.Context, actor types.Actor, transactionID uuid.UUID, reason string) (*models.Transaction, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		original, err := repo.FindTransaction(ctx, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find transaction")
		}
		if original.IsReversed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already reversed")
		}
		if original.Type == enums.TransactionTypeReversal {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a reversal cannot be reversed")
		}

		balance, err := lockOrCreateBalance(ctx, repo, original.UserID, original.BalanceType)
		if err != nil {
			return err
		}
		if balance.IsFrozen {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s balance is frozen", original.BalanceType))
		}

		amount := original.Amount.Neg()
		reversal := &models.Transaction{
			UserID:                original.UserID,
			Type:                  enums.TransactionTypeReversal,
			BalanceType:           original.BalanceType,
			Amount:                amount,
			PreviousBalance:       balance.Amount,
			NewBalance:            balance.Amount.Add(amount),
			Description:           fmt.Sprintf("reversal of %s: %s", original.ID, reason),
			Reference:             original.Reference,
			PerformedBy:           actor.UserID,
			OriginalTransactionID: &original.ID,
		}
		if err := repo.CreateTransaction(ctx, reversal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reversal")
		}

		original.IsReversed = true
		if err := repo.SaveTransaction(ctx, original); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag original transaction")
		}

		balance.Amount = reversal.NewBalance
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityTransaction,
			EntityID:   reversal.ID.String(),
			Action:     enums.AuditActionTxReverse,
			Actor:      actor,
			Reason:     reason,
			Before:     original,
			After:      reversal,
		}); err != nil {
			return err
		}
		created = reversal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReversal()
	s.metrics.IncTransaction(string(created.Type), string(created.BalanceType))
	return created, nil
}

// Correct rewrites amount/description on a stored transaction. The cached
// balance moves by the amount delta only, never the full new amount.
func (s *service) Correct(ctx context.Context, actor types.Actor, input CorrectInput) (*models.Transaction, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if input.NewAmount == nil && input.NewDescription == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to correct")
	}

	var corrected *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindTransaction(ctx, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find transaction")
		}
		if txn.IsReversed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reversed transactions cannot be corrected")
		}
		before := *txn

		delta := decimal.Zero
		if input.NewAmount != nil {
			delta = input.NewAmount.Sub(txn.Amount)
			txn.Amount = *input.NewAmount
		}
		if input.NewDescription != nil {
			txn.Description = *input.NewDescription
		}
		if err := repo.SaveTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save transaction")
		}

		if !delta.IsZero() {
			balance, err := lockOrCreateBalance(ctx, repo, txn.UserID, txn.BalanceType)
			if err != nil {
				return err
			}
			if balance.IsFrozen {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("%s balance is frozen", txn.BalanceType))
			}
			balance.Amount = balance.Amount.Add(delta)
			if err := repo.SaveBalance(ctx, balance); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
			}
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityTransaction,
			EntityID:   txn.ID.String(),
			Action:     enums.AuditActionTxCorrect,
			Actor:      actor,
			Reason:     input.Reason,
			Before:     before,
			After:      txn,
		}); err != nil {
			return err
		}
		corrected = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return corrected, nil
}

// Recalculate sums the ledger for one (user, balance type) and reports the
// drift against the cached amount. The cache is rewritten only when write is
// requested; a bare check never mutates.
func (s *service) Recalculate(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, write bool) (*ReconcileReport, error) {
	if !balanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", balanceType))
	}
	if write && !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required to write reconciliation")
	}

	report := &ReconcileReport{UserID: userID, BalanceType: balanceType}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := lockOrCreateBalance(ctx, repo, userID, balanceType)
		if err != nil {
			return err
		}
		computed, err := repo.SumTransactions(ctx, userID, balanceType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum transactions")
		}

		report.Cached = balance.Amount
		report.Computed = computed
		report.Drift = balance.Amount.Sub(computed)

		if write && !report.Drift.IsZero() {
			balance.Amount = computed
			if err := repo.SaveBalance(ctx, balance); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
			}
			report.Written = true
			return s.audit.RecordTx(ctx, tx, audit.RecordInput{
				EntityType: audit.EntityBalance,
				EntityID:   balance.ID.String(),
				Action:     enums.AuditActionBalanceReconcile,
				Actor:      actor,
				Before:     report.Cached,
				After:      computed,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	drift, _ := report.Drift.Float64()
	s.metrics.ObserveDrift(string(balanceType), drift)
	return report, nil
}

func (s *service) Freeze(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType, reason string) (*models.Balance, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var frozen *models.Balance
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := lockOrCreateBalance(ctx, repo, userID, balanceType)
		if err != nil {
			return err
		}
		if balance.IsFrozen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "balance already frozen")
		}
		before := *balance

		now := time.Now().UTC()
		balance.IsFrozen = true
		balance.FrozenAt = &now
		balance.FrozenBy = &actor.UserID
		balance.FrozenReason = reason
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityBalance,
			EntityID:   balance.ID.String(),
			Action:     enums.AuditActionBalanceFreeze,
			Actor:      actor,
			Reason:     reason,
			Before:     before,
			After:      balance,
		}); err != nil {
			return err
		}
		frozen = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frozen, nil
}

func (s *service) Unfreeze(ctx context.Context, actor types.Actor, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	if !actor.Role.AtLeastManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}

	var thawed *models.Balance
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balance, err := lockOrCreateBalance(ctx, repo, userID, balanceType)
		if err != nil {
			return err
		}
		if !balance.IsFrozen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "balance is not frozen")
		}
		before := *balance

		balance.IsFrozen = false
		balance.FrozenAt = nil
		balance.FrozenBy = nil
		balance.FrozenReason = ""
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
		}

		if err := s.audit.RecordTx(ctx, tx, audit.RecordInput{
			EntityType: audit.EntityBalance,
			EntityID:   balance.ID.String(),
			Action:     enums.AuditActionBalanceUnfreeze,
			Actor:      actor,
			Before:     before,
			After:      balance,
		}); err != nil {
			return err
		}
		thawed = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thawed, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	if !balanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", balanceType))
	}
	balance, err := s.repo.FindBalance(ctx, userID, balanceType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent rows read as zero; they materialize on first mutation.
			return &models.Balance{UserID: userID, BalanceType: balanceType, Amount: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find balance")
	}
	return balance, nil
}

func (s *service) Balances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error) {
	balances, err := s.repo.ListBalances(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list balances")
	}
	return balances, nil
}

func (s *service) UserIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user ids")
	}
	return ids, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType, params pagination.Params) (*HistoryPage, error) {
	if !balanceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", balanceType))
	}

	txns, err := s.repo.ListTransactions(ctx, userID, balanceType, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	page := &HistoryPage{Transactions: txns}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(txns) > limit {
		page.Transactions = txns[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func lockOrCreateBalance(ctx context.Context, repo Repository, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	balance, err := repo.FindBalanceForUpdate(ctx, userID, balanceType)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find balance")
	}

	created := &models.Balance{UserID: userID, BalanceType: balanceType, Amount: decimal.Zero}
	if err := repo.CreateBalance(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create balance")
	}
	// Re-read under lock so the surrounding transaction owns the row.
	balance, err = repo.FindBalanceForUpdate(ctx, userID, balanceType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
	}
	return balance, nil
}

func validateApply(input ApplyInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.BalanceType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid balance type %q", input.BalanceType))
	}
	switch input.Type {
	case enums.TransactionTypeDeposit, enums.TransactionTypeDeduction, enums.TransactionTypeRefund:
		if !input.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s amount must be a positive magnitude", input.Type))
		}
	case enums.TransactionTypeAdjustment:
		if input.Target == nil && input.Amount.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment needs a delta or a target")
		}
	case enums.TransactionTypeReversal:
		return pkgerrors.New(pkgerrors.CodeValidation, "reversals are created via Reverse, not Apply")
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	return nil
}

// signedAmount derives the stored signed amount from the caller magnitude.
func signedAmount(input ApplyInput, current decimal.Decimal) (decimal.Decimal, error) {
	switch input.Type {
	case enums.TransactionTypeDeposit, enums.TransactionTypeRefund:
		return input.Amount, nil
	case enums.TransactionTypeDeduction:
		return input.Amount.Neg(), nil
	case enums.TransactionTypeAdjustment:
		if input.Target != nil {
			return input.Target.Sub(current), nil
		}
		return input.Amount, nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid transaction type %q", input.Type))
	}
}
