package wallet

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/database"
	"auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists balances and the transaction journal
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a wallet repository to a connection or transaction
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Balance returns the stored balance, zero when the user has no wallet row yet
func (r *Repository) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance models.WalletBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	switch {
	case err == nil:
		return balance.Balance, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("read balance of user %d: %w", userID, err)
	}
}

// LockBalance creates the wallet row if needed and reads it under a row lock
func (r *Repository) LockBalance(ctx context.Context, userID int64) (models.WalletBalance, error) {
	seed := models.WalletBalance{UserID: userID, Balance: decimal.Zero}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return models.WalletBalance{}, fmt.Errorf("ensure wallet of user %d: %w", userID, err)
	}

	var balance models.WalletBalance
	if err := database.ForUpdate(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&balance).Error; err != nil {
		return models.WalletBalance{}, fmt.Errorf("lock wallet of user %d: %w", userID, err)
	}
	return balance, nil
}

// SetBalance overwrites the cached balance
func (r *Repository) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	if err := r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ?", userID).
		Update("balance", balance).Error; err != nil {
		return fmt.Errorf("update wallet of user %d: %w", userID, err)
	}
	return nil
}

// Record appends a journal entry
func (r *Repository) Record(ctx context.Context, txn *models.WalletTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("record wallet transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// History returns the user's journal newest first
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.WalletTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("wallet history of user %d: %w", userID, err)
	}
	return rows, nil
}
