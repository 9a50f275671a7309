package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/database"
	model "auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AuctionFilter narrows auction listings
type AuctionFilter struct {
	Status   model.AuctionStatus
	SellerID int64
	Limit    int
}

// AuctionDB defines the auction and bid storage interface
type AuctionDB interface {
	// WithTx runs fn against a repository bound to a single transaction
	WithTx(ctx context.Context, fn func(repo AuctionDB) error) error

	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	// LockAuction reads the auction row and holds a row lock until the transaction ends
	LockAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	ListAuctions(ctx context.Context, filter AuctionFilter) ([]model.Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID int64, status model.AuctionStatus) error
	UpdateCurrentPrice(ctx context.Context, auctionID int64, price decimal.Decimal) error
	UpdateMinIncrement(ctx context.Context, auctionID int64, increment decimal.Decimal) error
	CloseAuction(ctx context.Context, auctionID int64, winnerID *int64, winningBid decimal.NullDecimal) error
	MarkSettled(ctx context.Context, auctionID int64) error
	StartDueAuctions(ctx context.Context, now time.Time) (int64, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]model.Auction, error)

	RecordBid(ctx context.Context, bid *model.Bid) error
	GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetHighestBidByUser(ctx context.Context, auctionID, userID int64) (model.Bid, error)
	GetBidderIDs(ctx context.Context, auctionID int64) ([]int64, error)
	GetAuctionsByBidder(ctx context.Context, userID int64) ([]model.Auction, error)

	GetUser(ctx context.Context, userID int64) (model.User, error)
}

// UserDB defines account storage
type UserDB interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	UpdateUserStatus(ctx context.Context, userID int64, status model.UserStatus) error
}

// GormRepo implements AuctionDB and UserDB on top of GORM
type GormRepo struct {
	db   *gorm.DB
	inTx bool
}

// NewGormRepo creates a repository bound to the given connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// NewTxRepo binds a repository to an already open transaction
func NewTxRepo(tx *gorm.DB) *GormRepo {
	return &GormRepo{db: tx, inTx: true}
}

func (r *GormRepo) WithTx(ctx context.Context, fn func(repo AuctionDB) error) error {
	if r.inTx {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(NewTxRepo(tx))
	})
}

// CreateAuction persists a new auction
func (r *GormRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	if err := r.db.WithContext(ctx).Create(auction).Error; err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

// GetAuction returns an auction by id
func (r *GormRepo) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	var auction model.Auction
	if err := r.db.WithContext(ctx).First(&auction, auctionID).Error; err != nil {
		return model.Auction{}, notFound(err, biddingerrors.ErrAuctionNotFound, "get auction %d", auctionID)
	}
	return auction, nil
}

// LockAuction returns an auction by id with a row lock where the dialect supports it
func (r *GormRepo) LockAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	var auction model.Auction
	if err := database.ForUpdate(r.db.WithContext(ctx)).First(&auction, auctionID).Error; err != nil {
		return model.Auction{}, notFound(err, biddingerrors.ErrAuctionNotFound, "lock auction %d", auctionID)
	}
	return auction, nil
}

// ListAuctions returns auctions newest first
func (r *GormRepo) ListAuctions(ctx context.Context, filter AuctionFilter) ([]model.Auction, error) {
	query := r.db.WithContext(ctx).Model(&model.Auction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var auctions []model.Auction
	if err := query.Order("created_at DESC, id DESC").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// UpdateAuctionStatus sets the status column
func (r *GormRepo) UpdateAuctionStatus(ctx context.Context, auctionID int64, status model.AuctionStatus) error {
	return r.updateAuction(ctx, auctionID, map[string]any{"status": status})
}

// UpdateCurrentPrice refreshes the cached leader amount
func (r *GormRepo) UpdateCurrentPrice(ctx context.Context, auctionID int64, price decimal.Decimal) error {
	return r.updateAuction(ctx, auctionID, map[string]any{"current_price": price})
}

// UpdateMinIncrement sets the minimum bid increment
func (r *GormRepo) UpdateMinIncrement(ctx context.Context, auctionID int64, increment decimal.Decimal) error {
	return r.updateAuction(ctx, auctionID, map[string]any{"min_bid_increment": increment})
}

// CloseAuction ends an auction and freezes its winner. Already ended auctions are left untouched.
func (r *GormRepo) CloseAuction(ctx context.Context, auctionID int64, winnerID *int64, winningBid decimal.NullDecimal) error {
	result := r.db.WithContext(ctx).
		Model(&model.Auction{}).
		Where("id = ? AND status <> ?", auctionID, model.AuctionEnded).
		Updates(map[string]any{
			"status":      model.AuctionEnded,
			"winner_id":   winnerID,
			"winning_bid": winningBid,
		})
	if result.Error != nil {
		return fmt.Errorf("close auction %d: %w", auctionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("close auction %d: %w", auctionID, biddingerrors.ErrAlreadyEnded)
	}
	return nil
}

// MarkSettled flags the auction's wallet settlement as done
func (r *GormRepo) MarkSettled(ctx context.Context, auctionID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Auction{}).
		Where("id = ? AND settled = ?", auctionID, false).
		Update("settled", true)
	if result.Error != nil {
		return fmt.Errorf("mark auction %d settled: %w", auctionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mark auction %d settled: %w", auctionID, biddingerrors.ErrAlreadySettled)
	}
	return nil
}

// StartDueAuctions moves approved auctions whose start date has passed to ongoing
func (r *GormRepo) StartDueAuctions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Auction{}).
		Where("status = ? AND start_date IS NOT NULL AND start_date <= ?", model.AuctionApproved, now).
		Update("status", model.AuctionOngoing)
	if result.Error != nil {
		return 0, fmt.Errorf("start due auctions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListDueToEnd returns approved or ongoing auctions whose end date has passed
func (r *GormRepo) ListDueToEnd(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND end_date IS NOT NULL AND end_date <= ?",
			[]model.AuctionStatus{model.AuctionApproved, model.AuctionOngoing}, now).
		Order("end_date ASC, id ASC").
		Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list auctions due to end: %w", err)
	}
	return auctions, nil
}

// RecordBid appends a bid to the ledger
func (r *GormRepo) RecordBid(ctx context.Context, bid *model.Bid) error {
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, err)
	}
	return nil
}

// GetBidsByAuction returns all bids for an auction in ranking order
func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	var bids []model.Bid
	if err := ranked(r.db.WithContext(ctx)).Where("auction_id = ?", auctionID).Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %d: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

// GetHighestBid returns the ledger leader for an auction
func (r *GormRepo) GetHighestBid(ctx context.Context, auctionID int64) (model.Bid, error) {
	var bid model.Bid
	if err := ranked(r.db.WithContext(ctx)).Where("auction_id = ?", auctionID).First(&bid).Error; err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrNoBids, "get winning bid for auction %d", auctionID)
	}
	return bid, nil
}

// GetHighestBidByUser returns the user's best bid on an auction
func (r *GormRepo) GetHighestBidByUser(ctx context.Context, auctionID, userID int64) (model.Bid, error) {
	var bid model.Bid
	if err := ranked(r.db.WithContext(ctx)).
		Where("auction_id = ? AND bidder_id = ?", auctionID, userID).
		First(&bid).Error; err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrNoBids, "get bid of user %d on auction %d", userID, auctionID)
	}
	return bid, nil
}

// GetBidderIDs returns every distinct user who bid on an auction
func (r *GormRepo) GetBidderIDs(ctx context.Context, auctionID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&model.Bid{}).
		Where("auction_id = ?", auctionID).
		Distinct().
		Order("bidder_id").
		Pluck("bidder_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("get bidders for auction %d: %w", auctionID, err)
	}
	return ids, nil
}

// GetAuctionsByBidder returns all auctions a user has bid on
func (r *GormRepo) GetAuctionsByBidder(ctx context.Context, userID int64) ([]model.Auction, error) {
	var auctions []model.Auction
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&model.Bid{}).Select("auction_id").Where("bidder_id = ?", userID)).
		Order("id ASC").
		Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("get auctions for user %d: %w", userID, err)
	}
	if len(auctions) == 0 {
		return nil, fmt.Errorf("get auctions for user %d: %w", userID, biddingerrors.ErrUserNoBids)
	}
	return auctions, nil
}

// CreateUser persists a new account
func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user %s: %w", user.Username, biddingerrors.ErrUserExists)
		}
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

// GetUser returns an account by id
func (r *GormRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return model.User{}, notFound(err, biddingerrors.ErrUserNotFound, "get user %d", userID)
	}
	return user, nil
}

// GetUserByUsername returns an account by its unique username
func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return model.User{}, notFound(err, biddingerrors.ErrUserNotFound, "get user %s", username)
	}
	return user, nil
}

// UpdateUserStatus changes the approval status of an account
func (r *GormRepo) UpdateUserStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return nil
}

func (r *GormRepo) updateAuction(ctx context.Context, auctionID int64, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&model.Auction{}).Where("id = ?", auctionID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update auction %d: %w", auctionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update auction %d: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return nil
}

// ranked orders bids by amount desc, then earliest first
func ranked(db *gorm.DB) *gorm.DB {
	return db.Order("amount DESC, created_at ASC, id ASC")
}

func notFound(err, sentinel error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, sentinel)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
