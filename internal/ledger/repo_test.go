package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	"github.com/sajidkarim/messmate-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	balances := `
CREATE TABLE IF NOT EXISTS balances (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  balance_type TEXT NOT NULL,
  amount NUMERIC NOT NULL DEFAULT 0,
  is_frozen INTEGER NOT NULL DEFAULT 0,
  frozen_at DATETIME,
  frozen_by TEXT,
  frozen_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, balance_type)
);`
	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  balance_type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  previous_balance NUMERIC NOT NULL,
  new_balance NUMERIC NOT NULL,
  description TEXT,
  reference TEXT,
  performed_by TEXT NOT NULL,
  is_reversed INTEGER NOT NULL DEFAULT 0,
  original_transaction_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(balances).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func createTransaction(t *testing.T, repo Repository, userID uuid.UUID, balanceType enums.BalanceType, amount int64, created time.Time) *models.Transaction {
	t.Helper()

	prev := decimal.Zero
	txn := &models.Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            enums.TransactionTypeDeposit,
		BalanceType:     balanceType,
		Amount:          decimal.NewFromInt(amount),
		PreviousBalance: prev,
		NewBalance:      prev.Add(decimal.NewFromInt(amount)),
		PerformedBy:     uuid.New(),
		CreatedAt:       created,
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), txn))
	return txn
}

func TestBalanceRoundTrip(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	balance := &models.Balance{
		ID:          uuid.New(),
		UserID:      userID,
		BalanceType: enums.BalanceTypeLunch,
		Amount:      decimal.NewFromInt(150),
	}
	require.NoError(t, repo.CreateBalance(ctx, balance))

	got, err := repo.FindBalance(ctx, userID, enums.BalanceTypeLunch)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(150)))

	got.Amount = decimal.NewFromInt(95)
	require.NoError(t, repo.SaveBalance(ctx, got))

	got, err = repo.FindBalance(ctx, userID, enums.BalanceTypeLunch)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(95)))

	_, err = repo.FindBalance(ctx, userID, enums.BalanceTypeDinner)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindBalanceForUpdateOutsidePostgres(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.CreateBalance(ctx, &models.Balance{
		ID:          uuid.New(),
		UserID:      userID,
		BalanceType: enums.BalanceTypeDinner,
		Amount:      decimal.NewFromInt(40),
	}))

	// The locking clause is postgres-only; sqlite reads plainly.
	got, err := repo.FindBalanceForUpdate(ctx, userID, enums.BalanceTypeDinner)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(40)))
}

func TestSumTransactions(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	createTransaction(t, repo, userID, enums.BalanceTypeLunch, 500, base)
	createTransaction(t, repo, userID, enums.BalanceTypeLunch, -120, base.Add(time.Hour))
	// Different balance type and different user stay out of the sum.
	createTransaction(t, repo, userID, enums.BalanceTypeDinner, 999, base)
	createTransaction(t, repo, uuid.New(), enums.BalanceTypeLunch, 999, base)

	sum, err := repo.SumTransactions(ctx, userID, enums.BalanceTypeLunch)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(380)), "got %s", sum)
}

func TestSumTransactionsEmpty(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	sum, err := repo.SumTransactions(context.Background(), uuid.New(), enums.BalanceTypeLunch)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestListTransactionsCursor(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		createTransaction(t, repo, userID, enums.BalanceTypeLunch, int64(10*(i+1)), base.Add(time.Duration(i)*time.Hour))
	}

	first, err := repo.ListTransactions(ctx, userID, enums.BalanceTypeLunch, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// Limit plus one buffer row to detect the next page.
	require.Len(t, first, 3)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID})
	second, err := repo.ListTransactions(ctx, userID, enums.BalanceTypeLunch, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestListUserIDsDistinct(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	for _, bt := range []enums.BalanceType{enums.BalanceTypeLunch, enums.BalanceTypeDinner} {
		require.NoError(t, repo.CreateBalance(ctx, &models.Balance{
			ID:          uuid.New(),
			UserID:      alice,
			BalanceType: bt,
			Amount:      decimal.Zero,
		}))
	}
	require.NoError(t, repo.CreateBalance(ctx, &models.Balance{
		ID:          uuid.New(),
		UserID:      bob,
		BalanceType: enums.BalanceTypeLunch,
		Amount:      decimal.Zero,
	}))

	ids, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
