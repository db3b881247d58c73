package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	pkgerrors "github.com/sajidkarim/messmate-backend/pkg/errors"
	"github.com/sajidkarim/messmate-backend/pkg/pagination"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

type fakeRepo struct {
	balances     map[string]*models.Balance
	transactions map[uuid.UUID]*models.Transaction
	seq          int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		balances:     make(map[string]*models.Balance),
		transactions: make(map[uuid.UUID]*models.Transaction),
	}
}

func balanceKey(userID uuid.UUID, balanceType enums.BalanceType) string {
	return userID.String() + ":" + string(balanceType)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindBalanceForUpdate(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	return f.FindBalance(ctx, userID, balanceType)
}

func (f *fakeRepo) FindBalance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	b, ok := f.balances[balanceKey(userID, balanceType)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) CreateBalance(ctx context.Context, balance *models.Balance) error {
	balance.ID = uuid.New()
	cp := *balance
	f.balances[balanceKey(balance.UserID, balance.BalanceType)] = &cp
	return nil
}

func (f *fakeRepo) SaveBalance(ctx context.Context, balance *models.Balance) error {
	cp := *balance
	f.balances[balanceKey(balance.UserID, balance.BalanceType)] = &cp
	return nil
}

func (f *fakeRepo) ListBalances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error) {
	var out []models.Balance
	for _, b := range f.balances {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, b := range f.balances {
		if !seen[b.UserID] {
			seen[b.UserID] = true
			out = append(out, b.UserID)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	txn.ID = uuid.New()
	f.seq++
	txn.CreatedAt = time.Unix(int64(f.seq), 0).UTC()
	cp := *txn
	f.transactions[txn.ID] = &cp
	return nil
}

func (f *fakeRepo) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	cp := *txn
	f.transactions[txn.ID] = &cp
	return nil
}

func (f *fakeRepo) FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) SumTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.transactions {
		if t.UserID == userID && t.BalanceType == balanceType {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (f *fakeRepo) ListTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType, params pagination.Params) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID && t.BalanceType == balanceType {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := pagination.LimitWithBuffer(params.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAudit struct {
	records []audit.RecordInput
}

func (f *fakeAudit) Record(ctx context.Context, input audit.RecordInput) error {
	f.records = append(f.records, input)
	return nil
}

func (f *fakeAudit) RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	f.records = append(f.records, input)
	return nil
}

func (f *fakeAudit) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditEntry, error) {
	return nil, nil
}

func manager() types.Actor {
	return types.Actor{UserID: uuid.New(), Role: enums.RoleManager}
}

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeAudit) {
	t.Helper()
	repo := newFakeRepo()
	auditSvc := &fakeAudit{}
	svc, err := NewService(repo, fakeTx{}, auditSvc, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, auditSvc
}

func deposit(t *testing.T, svc Service, actor types.Actor, userID uuid.UUID, amount int64) *models.Transaction {
	t.Helper()
	txn, err := svc.Apply(context.Background(), actor, ApplyInput{
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeDeposit,
		Amount:      decimal.NewFromInt(amount),
		Description: "deposit",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	return txn
}

func TestApplyDepositThenDeduction(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	deposit(t, svc, actor, userID, 500)

	txn, err := svc.Apply(ctx, actor, ApplyInput{
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeDeduction,
		Amount:      decimal.NewFromInt(120),
		Description: "june lunches",
	})
	if err != nil {
		t.Fatalf("deduction: %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(-120)) {
		t.Fatalf("deduction must store a negative amount, got %s", txn.Amount)
	}
	if !txn.NewBalance.Equal(decimal.NewFromInt(380)) {
		t.Fatalf("expected balance 380, got %s", txn.NewBalance)
	}

	balance, err := svc.Balance(ctx, userID, enums.BalanceTypeLunch)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(380)) {
		t.Fatalf("cached balance mismatch: %s", balance.Amount)
	}

	report, err := svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, false)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !report.Drift.IsZero() {
		t.Fatalf("expected zero drift, got %s", report.Drift)
	}
}

func TestApplyRejectsNegativeMagnitude(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), manager(), ApplyInput{
		UserID:      uuid.New(),
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeDeposit,
		Amount:      decimal.NewFromInt(-10),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyRejectsDirectReversal(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), manager(), ApplyInput{
		UserID:      uuid.New(),
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeReversal,
		Amount:      decimal.NewFromInt(10),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdjustmentWithTargetComputesDelta(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()

	deposit(t, svc, actor, userID, 500)

	target := decimal.NewFromInt(450)
	txn, err := svc.Apply(context.Background(), actor, ApplyInput{
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeAdjustment,
		Target:      &target,
		Description: "set to 450",
	})
	if err != nil {
		t.Fatalf("adjustment: %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("expected delta -50, got %s", txn.Amount)
	}
	if !txn.NewBalance.Equal(target) {
		t.Fatalf("expected new balance 450, got %s", txn.NewBalance)
	}
}

func TestReverseTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	original := deposit(t, svc, actor, userID, 500)

	reversal, err := svc.Reverse(ctx, actor, original.ID, "mistaken entry")
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if !reversal.Amount.Equal(decimal.NewFromInt(-500)) {
		t.Fatalf("reversal must negate the original, got %s", reversal.Amount)
	}
	if reversal.OriginalTransactionID == nil || *reversal.OriginalTransactionID != original.ID {
		t.Fatal("reversal must reference the original transaction")
	}

	if _, err := svc.Reverse(ctx, actor, original.ID, "again"); pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("second reversal must be rejected, got %v", err)
	}

	balance, err := svc.Balance(ctx, userID, enums.BalanceTypeLunch)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Amount.IsZero() {
		t.Fatalf("expected zero balance after reversal, got %s", balance.Amount)
	}
}

func TestReverseAReversalRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	original := deposit(t, svc, actor, userID, 100)
	reversal, err := svc.Reverse(ctx, actor, original.ID, "undo")
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	if _, err := svc.Reverse(ctx, actor, reversal.ID, "undo the undo"); pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("reversing a reversal must be rejected, got %v", err)
	}
}

func TestFrozenBalanceBlocksMutation(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	deposit(t, svc, actor, userID, 200)

	if _, err := svc.Freeze(ctx, actor, userID, enums.BalanceTypeLunch, "billing dispute"); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	_, err := svc.Apply(ctx, actor, ApplyInput{
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeDeposit,
		Amount:      decimal.NewFromInt(50),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("frozen balance must block deposits, got %v", err)
	}

	if _, err := svc.Unfreeze(ctx, actor, userID, enums.BalanceTypeLunch); err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	if _, err := svc.Apply(ctx, actor, ApplyInput{
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Type:        enums.TransactionTypeDeposit,
		Amount:      decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("unfrozen balance must accept deposits: %v", err)
	}
}

func TestFrozenBalanceBlocksCarryForward(t *testing.T) {
	svc, repo, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	deposit(t, svc, actor, userID, 500)
	if _, err := svc.Freeze(ctx, actor, userID, enums.BalanceTypeLunch, "billing dispute"); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	before := len(repo.transactions)
	_, err := svc.RecordCarryForward(ctx, actor, userID, enums.BalanceTypeLunch,
		decimal.NewFromInt(500), "carry-forward:2025-06")
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("frozen balance must block carry-forward, got %v", err)
	}
	if len(repo.transactions) != before {
		t.Fatalf("carry-forward wrote a transaction on a frozen balance")
	}

	if _, err := svc.Unfreeze(ctx, actor, userID, enums.BalanceTypeLunch); err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	txn, err := svc.RecordCarryForward(ctx, actor, userID, enums.BalanceTypeLunch,
		decimal.NewFromInt(500), "carry-forward:2025-06")
	if err != nil {
		t.Fatalf("unfrozen balance must accept carry-forward: %v", err)
	}
	if !txn.Amount.IsZero() {
		t.Fatalf("carry-forward entry must be zero-amount, got %s", txn.Amount)
	}
}

func TestCorrectAppliesDeltaOnly(t *testing.T) {
	svc, _, auditSvc := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	txn := deposit(t, svc, actor, userID, 500)

	newAmount := decimal.NewFromInt(520)
	corrected, err := svc.Correct(ctx, actor, CorrectInput{
		TransactionID: txn.ID,
		NewAmount:     &newAmount,
		Reason:        "till miscount",
	})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if !corrected.Amount.Equal(newAmount) {
		t.Fatalf("amount not corrected: %s", corrected.Amount)
	}

	balance, err := svc.Balance(ctx, userID, enums.BalanceTypeLunch)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(520)) {
		t.Fatalf("expected balance 520 after delta correction, got %s", balance.Amount)
	}

	report, err := svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, false)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !report.Drift.IsZero() {
		t.Fatalf("correction must preserve the cache invariant, drift %s", report.Drift)
	}

	last := auditSvc.records[len(auditSvc.records)-1]
	if last.Action != enums.AuditActionTxCorrect || last.Reason != "till miscount" {
		t.Fatalf("unexpected audit record %+v", last)
	}
}

func TestRecalculateWriteRestoresInvariant(t *testing.T) {
	svc, repo, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	deposit(t, svc, actor, userID, 300)

	// Corrupt the cache behind the service's back.
	key := balanceKey(userID, enums.BalanceTypeLunch)
	repo.balances[key].Amount = decimal.NewFromInt(275)

	report, err := svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, false)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !report.Drift.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("expected drift -25, got %s", report.Drift)
	}
	if report.Written {
		t.Fatal("bare check must not write")
	}
	if !repo.balances[key].Amount.Equal(decimal.NewFromInt(275)) {
		t.Fatal("bare check mutated the cache")
	}

	report, err = svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, true)
	if err != nil {
		t.Fatalf("Recalculate write: %v", err)
	}
	if !report.Written {
		t.Fatal("write requested but not performed")
	}
	if !repo.balances[key].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("cache not restored, got %s", repo.balances[key].Amount)
	}
}

func TestDriftErrorSurfacesUncorrectedDrift(t *testing.T) {
	svc, repo, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()
	ctx := context.Background()

	deposit(t, svc, actor, userID, 300)
	key := balanceKey(userID, enums.BalanceTypeLunch)
	repo.balances[key].Amount = decimal.NewFromInt(275)

	report, err := svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, false)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if code := pkgerrors.As(report.DriftError()).Code(); code != pkgerrors.CodeConsistency {
		t.Fatalf("uncorrected drift must carry a consistency code, got %v", code)
	}

	report, err = svc.Recalculate(ctx, actor, userID, enums.BalanceTypeLunch, true)
	if err != nil {
		t.Fatalf("Recalculate write: %v", err)
	}
	if report.DriftError() != nil {
		t.Fatalf("corrected drift must not error: %v", report.DriftError())
	}
}

func TestHistoryPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	actor := manager()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		deposit(t, svc, actor, userID, 10)
	}

	page, err := svc.History(context.Background(), userID, enums.BalanceTypeLunch, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(page.Transactions))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	if page.Transactions[0].CreatedAt.Before(page.Transactions[1].CreatedAt) {
		t.Fatal("history must be newest first")
	}
}
