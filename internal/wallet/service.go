package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/database"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 100
	notificationSource  = "wallet"
)

// Notifier delivers in-app notices to users
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, kind models.NotificationKind, sourceTag string, relatedID *int64) error
}

// Entry describes one balance movement
type Entry struct {
	UserID    int64
	Type      models.TransactionType
	Amount    decimal.Decimal
	Reason    string
	AuctionID *int64
}

// Settlement is the journal written when an auction is paid out
type Settlement struct {
	AuctionID  int64                     `json:"auction_id"`
	Deduction  models.WalletTransaction  `json:"deduction"`
	Payout     models.WalletTransaction  `json:"payout"`
	Commission *models.WalletTransaction `json:"commission,omitempty"`
}

// Service applies typed transactions to user balances
type Service struct {
	db         *gorm.DB
	repo       *Repository
	commission decimal.Decimal
	notifier   Notifier
	now        func() time.Time
}

// Option customises a wallet Service
type Option func(*Service)

// WithNotifier sets the notification sink
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a wallet service. commission is the seller fee rate in [0,1).
func NewService(db *gorm.DB, commission decimal.Decimal, opts ...Option) *Service {
	s := &Service{
		db:         db,
		repo:       NewRepository(db),
		commission: commission,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Balance returns the user's current balance
func (s *Service) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	if userID <= 0 {
		return decimal.Zero, fmt.Errorf("wallet: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet: %w", err)
	}
	return balance, nil
}

// Deposit tops up a wallet. Gateway verification happens upstream, so the deposit completes immediately.
func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (models.WalletTransaction, error) {
	if reason == "" {
		reason = "wallet top-up"
	}
	txn, err := s.Apply(ctx, Entry{UserID: userID, Type: models.TxDeposit, Amount: amount, Reason: reason})
	if err != nil {
		return models.WalletTransaction{}, err
	}
	s.notify(ctx, userID, "Wallet topped up",
		fmt.Sprintf("%s was added to your wallet. New balance: %s.", amount.StringFixed(2), txn.BalanceAfter.StringFixed(2)), nil)
	return txn, nil
}

// Withdraw removes funds from a wallet
func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (models.WalletTransaction, error) {
	if reason == "" {
		reason = "wallet withdrawal"
	}
	return s.Apply(ctx, Entry{UserID: userID, Type: models.TxWithdrawal, Amount: amount, Reason: reason})
}

// Debit applies a balance-reducing transaction of the given type
func (s *Service) Debit(ctx context.Context, userID int64, txType models.TransactionType, amount decimal.Decimal, reason string) (models.WalletTransaction, error) {
	if !txType.IsDebit() {
		return models.WalletTransaction{}, fmt.Errorf("wallet: %w - %s is not a debit", biddingerrors.ErrInvalidInput, txType)
	}
	return s.Apply(ctx, Entry{UserID: userID, Type: txType, Amount: amount, Reason: reason})
}

// Credit applies a balance-increasing transaction of the given type
func (s *Service) Credit(ctx context.Context, userID int64, txType models.TransactionType, amount decimal.Decimal, reason string) (models.WalletTransaction, error) {
	if txType.IsDebit() || !txType.IsValid() {
		return models.WalletTransaction{}, fmt.Errorf("wallet: %w - %s is not a credit", biddingerrors.ErrInvalidInput, txType)
	}
	return s.Apply(ctx, Entry{UserID: userID, Type: txType, Amount: amount, Reason: reason})
}

// Apply runs one entry in its own database transaction
func (s *Service) Apply(ctx context.Context, entry Entry) (models.WalletTransaction, error) {
	if err := validateEntry(entry); err != nil {
		return models.WalletTransaction{}, err
	}

	var txn models.WalletTransaction
	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		txn, err = s.apply(ctx, s.repo.WithTx(tx), entry)
		return err
	})
	if err != nil {
		return models.WalletTransaction{}, wrapStoreErr(err)
	}

	utils.Info("wallet: transaction completed", map[string]any{
		"transaction_id": txn.TransactionID,
		"user_id":        txn.UserID,
		"type":           txn.Type,
		"amount":         txn.Amount.StringFixed(2),
		"balance_after":  txn.BalanceAfter.StringFixed(2),
	})
	return txn, nil
}

// apply locks the balance row, checks funds for debits and writes the journal entry and new balance
func (s *Service) apply(ctx context.Context, repo *Repository, entry Entry) (models.WalletTransaction, error) {
	balance, err := repo.LockBalance(ctx, entry.UserID)
	if err != nil {
		return models.WalletTransaction{}, err
	}

	before := balance.Balance
	after := before.Add(entry.Amount)
	if entry.Type.IsDebit() {
		if before.LessThan(entry.Amount) {
			return models.WalletTransaction{}, fmt.Errorf("wallet: %w - balance %s, need %s",
				biddingerrors.ErrInsufficientFunds, before.StringFixed(2), entry.Amount.StringFixed(2))
		}
		after = before.Sub(entry.Amount)
	}

	txn := models.WalletTransaction{
		TransactionID:    NewTransactionID(s.now()),
		UserID:           entry.UserID,
		Type:             entry.Type,
		Amount:           entry.Amount,
		BalanceBefore:    before,
		BalanceAfter:     after,
		Status:           models.TxCompleted,
		Reason:           entry.Reason,
		RelatedAuctionID: entry.AuctionID,
	}
	if err := repo.Record(ctx, &txn); err != nil {
		return models.WalletTransaction{}, err
	}
	if err := repo.SetBalance(ctx, entry.UserID, after); err != nil {
		return models.WalletTransaction{}, err
	}
	return txn, nil
}

// History returns the user's recent transactions
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]models.WalletTransaction, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("wallet: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	rows, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	return rows, nil
}

// SettleAuction charges the winner, pays the seller and takes the commission in one transaction
func (s *Service) SettleAuction(ctx context.Context, auctionID int64) (Settlement, error) {
	if auctionID <= 0 {
		return Settlement{}, fmt.Errorf("wallet: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}

	var (
		settlement Settlement
		auction    models.Auction
	)
	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		auctions := repository.NewTxRepo(tx)
		wallets := s.repo.WithTx(tx)

		var err error
		auction, err = auctions.LockAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionEnded {
			return fmt.Errorf("%w - auction %d is %s", biddingerrors.ErrAuctionNotActive, auctionID, auction.Status)
		}
		if auction.Settled {
			return fmt.Errorf("%w - auction %d", biddingerrors.ErrAlreadySettled, auctionID)
		}
		if auction.WinnerID == nil || !auction.WinningBid.Valid {
			return fmt.Errorf("%w - auction %d", biddingerrors.ErrNoWinner, auctionID)
		}

		amount := auction.WinningBid.Decimal
		related := auction.ID
		reason := fmt.Sprintf("auction #%d", auction.ID)

		settlement.AuctionID = auction.ID
		settlement.Deduction, err = s.apply(ctx, wallets, Entry{
			UserID: *auction.WinnerID, Type: models.TxDeduct, Amount: amount, Reason: "payment for " + reason, AuctionID: &related,
		})
		if err != nil {
			return err
		}
		settlement.Payout, err = s.apply(ctx, wallets, Entry{
			UserID: auction.SellerID, Type: models.TxWin, Amount: amount, Reason: "sale of " + reason, AuctionID: &related,
		})
		if err != nil {
			return err
		}

		fee := amount.Mul(s.commission).Round(2)
		if fee.IsPositive() {
			commission, err := s.apply(ctx, wallets, Entry{
				UserID: auction.SellerID, Type: models.TxCommission, Amount: fee, Reason: "commission for " + reason, AuctionID: &related,
			})
			if err != nil {
				return err
			}
			settlement.Commission = &commission
		}

		return auctions.MarkSettled(ctx, auction.ID)
	})
	if err != nil {
		return Settlement{}, wrapStoreErr(err)
	}

	utils.Info("wallet: auction settled", map[string]any{
		"auction_id": auctionID,
		"winner_id":  *auction.WinnerID,
		"seller_id":  auction.SellerID,
		"amount":     auction.WinningBid.Decimal.StringFixed(2),
	})

	related := auction.ID
	s.notify(ctx, *auction.WinnerID, "Payment completed",
		fmt.Sprintf("%s was charged for %q.", auction.WinningBid.Decimal.StringFixed(2), auction.Title), &related)
	s.notify(ctx, auction.SellerID, "Sale paid out",
		fmt.Sprintf("%q paid out %s.", auction.Title, settlement.Payout.Amount.StringFixed(2)), &related)

	return settlement, nil
}

func (s *Service) notify(ctx context.Context, userID int64, title, message string, relatedID *int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message, models.NotifyWallet, notificationSource, relatedID); err != nil {
		utils.Warn("wallet: notification failed", map[string]any{"user_id": userID, "error": err.Error()})
	}
}

func validateEntry(entry Entry) error {
	if entry.UserID <= 0 {
		return fmt.Errorf("wallet: %w - missing user", biddingerrors.ErrInvalidInput)
	}
	if !entry.Type.IsValid() {
		return fmt.Errorf("wallet: %w - unknown transaction type %q", biddingerrors.ErrInvalidInput, entry.Type)
	}
	if !entry.Amount.IsPositive() {
		return fmt.Errorf("wallet: %w - amount must be positive", biddingerrors.ErrInvalidInput)
	}
	if !models.IsCents(entry.Amount) {
		return fmt.Errorf("wallet: %w - amount has more than two decimals", biddingerrors.ErrInvalidInput)
	}
	return nil
}

// wrapStoreErr keeps domain errors as they are and marks anything else as a failed transaction
func wrapStoreErr(err error) error {
	for _, domain := range []error{
		biddingerrors.ErrInsufficientFunds,
		biddingerrors.ErrAuctionNotFound,
		biddingerrors.ErrAuctionNotActive,
		biddingerrors.ErrAlreadySettled,
		biddingerrors.ErrNoWinner,
		biddingerrors.ErrInvalidInput,
	} {
		if errors.Is(err, domain) {
			return fmt.Errorf("wallet: %w", err)
		}
	}
	return fmt.Errorf("wallet: %w - %w", biddingerrors.ErrTransactionFailed, err)
}
