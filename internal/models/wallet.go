package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies wallet movements
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxBid        TransactionType = "bid"
	TxWin        TransactionType = "win"
	TxRefund     TransactionType = "refund"
	TxDeduct     TransactionType = "deduct"
	TxCommission TransactionType = "commission"
)

// IsDebit reports whether the type reduces the balance
func (t TransactionType) IsDebit() bool {
	switch t {
	case TxWithdrawal, TxBid, TxDeduct, TxCommission:
		return true
	}
	return false
}

// IsValid checks the type against the known set
func (t TransactionType) IsValid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxBid, TxWin, TxRefund, TxDeduct, TxCommission:
		return true
	}
	return false
}

// TransactionStatus is the state of a wallet transaction
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
	TxRejected  TransactionStatus = "rejected"
)

// WalletBalance is the cached per-user balance
type WalletBalance struct {
	UserID    int64           `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// WalletTransaction records one application of an amount to a balance
type WalletTransaction struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID    string            `gorm:"size:40;not null;uniqueIndex" json:"transaction_id"`
	UserID           int64             `gorm:"not null;index" json:"user_id"`
	Type             TransactionType   `gorm:"size:16;not null" json:"type"`
	Amount           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	BalanceBefore    decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"balance_before"`
	BalanceAfter     decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"balance_after"`
	Status           TransactionStatus `gorm:"size:16;not null" json:"status"`
	Reason           string            `gorm:"size:255" json:"reason"`
	RelatedAuctionID *int64            `json:"related_auction_id,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
