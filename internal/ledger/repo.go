package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	"github.com/sajidkarim/messmate-backend/pkg/pagination"
)

// Repository manages persistence for transactions and cached balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindBalanceForUpdate row-locks the balance for the duration of the
	// surrounding transaction on Postgres; other dialects read plainly.
	FindBalanceForUpdate(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error)
	FindBalance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error)
	CreateBalance(ctx context.Context, balance *models.Balance) error
	SaveBalance(ctx context.Context, balance *models.Balance) error
	ListBalances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	SumTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType, params pagination.Params) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBalanceForUpdate(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var balance models.Balance
	err := query.
		Where("user_id = ? AND balance_type = ?", userID, balanceType).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) FindBalance(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (*models.Balance, error) {
	var balance models.Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND balance_type = ?", userID, balanceType).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) CreateBalance(ctx context.Context, balance *models.Balance) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

func (r *repository) SaveBalance(ctx context.Context, balance *models.Balance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) ListBalances(ctx context.Context, userID uuid.UUID) ([]models.Balance, error) {
	var balances []models.Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("balance_type ASC").
		Find(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// ListUserIDs enumerates every user holding at least one balance row.
func (r *repository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

func (r *repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) SumTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND balance_type = ?", userID, balanceType).
		Select("SUM(amount)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, balanceType enums.BalanceType, params pagination.Params) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND balance_type = ?", userID, balanceType).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
