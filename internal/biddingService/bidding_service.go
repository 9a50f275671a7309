package bidding

//go:generate mockgen -source=bidding_service.go -destination=mock_notifier.go -package=bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/locker"
	"auction-marketplace/internal/metrics"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

const notificationSource = "bidding"

// Notifier delivers in-app notices to users
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, kind models.NotificationKind, sourceTag string, relatedID *int64) error
}

// RankedBid is a ledger entry annotated with its leader flag
type RankedBid struct {
	models.Bid
	IsHighest bool `json:"is_highest"`
}

// Winner describes the frozen outcome of an auction
type Winner struct {
	HasWinner bool            `json:"has_winner"`
	UserID    int64           `json:"user_id,omitempty"`
	Username  string          `json:"username,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	notifier Notifier
	locks    *locker.Keyed
	metrics  *metrics.AuctionMetrics
	now      func() time.Time
}

// Option customises a BiddingService
type Option func(*BiddingService)

// WithNotifier sets the notification sink
func WithNotifier(n Notifier) Option {
	return func(s *BiddingService) { s.notifier = n }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// WithLocker shares a keyed mutex with other writers of auction rows
func WithLocker(l *locker.Keyed) Option {
	return func(s *BiddingService) { s.locks = l }
}

// WithMetrics attaches a metrics recorder
func WithMetrics(m *metrics.AuctionMetrics) Option {
	return func(s *BiddingService) { s.metrics = m }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:  repo,
		locks: locker.NewKeyed(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid for an auction.
// The bid insert and the cached price update commit together or not at all.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID int64, amount decimal.Decimal) (models.Bid, error) {
	if auctionID <= 0 || bidderID <= 0 {
		s.metrics.ObserveBid(metrics.OutcomeRejected)
		return models.Bid{}, fmt.Errorf("service: %w - missing auction or bidder id", biddingerrors.ErrInvalidInput)
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	var (
		bid      models.Bid
		auction  models.Auction
		previous *models.Bid
		stepErr  error
	)
	err := s.repo.WithTx(ctx, func(tx repository.AuctionDB) error {
		auction, previous, bid, stepErr = s.placeBidTx(ctx, tx, auctionID, bidderID, amount)
		return stepErr
	})
	if stepErr != nil {
		s.observeBidError(stepErr)
		return models.Bid{}, stepErr
	}
	if err != nil {
		s.metrics.ObserveBid(metrics.OutcomeFailed)
		return models.Bid{}, fmt.Errorf("service: %w - commit bid on auction %d: %w", biddingerrors.ErrTransactionFailed, auctionID, err)
	}

	s.metrics.ObserveBid(metrics.OutcomeAccepted)
	s.notifyBidPlaced(ctx, auction, previous, bid)

	return bid, nil
}

func (s *BiddingService) placeBidTx(ctx context.Context, tx repository.AuctionDB, auctionID, bidderID int64, amount decimal.Decimal) (models.Auction, *models.Bid, models.Bid, error) {
	auction, err := tx.LockAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, nil, models.Bid{}, lookupErr(err, "load auction %d", auctionID)
	}

	if err := s.checkBiddable(auction, bidderID); err != nil {
		return auction, nil, models.Bid{}, err
	}

	var previous *models.Bid
	highest := decimal.Zero
	leader, err := tx.GetHighestBid(ctx, auctionID)
	switch {
	case err == nil:
		previous = &leader
		highest = leader.Amount
	case !errors.Is(err, biddingerrors.ErrNoBids):
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w - read highest bid: %w", biddingerrors.ErrTransactionFailed, err)
	}

	minimum := MinimumBid(auction.StartingPrice, auction.IncrementOrDefault(), highest)
	if amount.LessThan(minimum) {
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w", &biddingerrors.BidTooLowError{Minimum: minimum})
	}
	if !amount.IsPositive() {
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w - got %s", biddingerrors.ErrInvalidAmount, amount.String())
	}
	if !models.IsCents(amount) {
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w - %s has more than two decimals", biddingerrors.ErrInvalidAmount, amount.String())
	}

	bid := models.Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}
	if err := tx.RecordBid(ctx, &bid); err != nil {
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w - record bid: %w", biddingerrors.ErrTransactionFailed, err)
	}
	if err := tx.UpdateCurrentPrice(ctx, auctionID, amount); err != nil {
		return auction, nil, models.Bid{}, fmt.Errorf("service: %w - update current price: %w", biddingerrors.ErrTransactionFailed, err)
	}
	auction.CurrentPrice = amount

	return auction, previous, bid, nil
}

// checkBiddable applies the status, ownership and date rules in order
func (s *BiddingService) checkBiddable(auction models.Auction, bidderID int64) error {
	if !auction.Status.AcceptsBids() {
		return fmt.Errorf("service: %w - auction %d is %s", biddingerrors.ErrAuctionNotActive, auction.ID, auction.Status)
	}
	if auction.SellerID == bidderID {
		return fmt.Errorf("service: %w - user %d sells auction %d", biddingerrors.ErrSelfBidForbidden, bidderID, auction.ID)
	}
	now := s.now().UTC()
	if !auction.HasStarted(now) {
		return fmt.Errorf("service: %w - starts at %s", biddingerrors.ErrNotStarted, auction.StartDate.UTC().Format(time.RFC3339))
	}
	if auction.HasExpired(now) {
		return fmt.Errorf("service: %w - ended at %s", biddingerrors.ErrAlreadyEnded, auction.EndDate.UTC().Format(time.RFC3339))
	}
	return nil
}

func (s *BiddingService) observeBidError(err error) {
	if errors.Is(err, biddingerrors.ErrTransactionFailed) {
		s.metrics.ObserveBid(metrics.OutcomeFailed)
		return
	}
	s.metrics.ObserveBid(metrics.OutcomeRejected)
}

func (s *BiddingService) notifyBidPlaced(ctx context.Context, auction models.Auction, previous *models.Bid, bid models.Bid) {
	s.notify(ctx, auction.SellerID, "New bid received",
		fmt.Sprintf("A bid of %s was placed on %q.", bid.Amount.StringFixed(2), auction.Title),
		models.NotifyBid, auction.ID)

	if previous != nil && previous.BidderID != bid.BidderID {
		s.notify(ctx, previous.BidderID, "You have been outbid",
			fmt.Sprintf("Your bid of %s on %q was outbid with %s.", previous.Amount.StringFixed(2), auction.Title, bid.Amount.StringFixed(2)),
			models.NotifyOutbid, auction.ID)
	}
}

// notify delivers a notice, logging and swallowing failures
func (s *BiddingService) notify(ctx context.Context, userID int64, title, message string, kind models.NotificationKind, auctionID int64) {
	if s.notifier == nil {
		return
	}
	related := auctionID
	if err := s.notifier.Notify(ctx, userID, title, message, kind, notificationSource, &related); err != nil {
		utils.Warn("bidding: notification failed", map[string]any{
			"user_id":    userID,
			"auction_id": auctionID,
			"kind":       kind,
			"error":      err.Error(),
		})
	}
}

// NextMinimumBid returns the minimum acceptable bid for an auction
func (s *BiddingService) NextMinimumBid(ctx context.Context, auction models.Auction) (decimal.Decimal, error) {
	highest := decimal.Zero
	leader, err := s.repo.GetHighestBid(ctx, auction.ID)
	switch {
	case err == nil:
		highest = leader.Amount
	case !errors.Is(err, biddingerrors.ErrNoBids):
		return decimal.Zero, fmt.Errorf("service: failed to get highest bid for auction %d: %w", auction.ID, err)
	}
	return MinimumBid(auction.StartingPrice, auction.IncrementOrDefault(), highest), nil
}

// GetBidsForAuction returns the ranked bid history, flagging the leader
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID int64) ([]RankedBid, error) {
	if auctionID <= 0 {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}

	ranked := make([]RankedBid, len(bids))
	for i, b := range bids {
		ranked[i] = RankedBid{Bid: b, IsHighest: i == 0}
	}
	return ranked, nil
}

// GetWinningBid returns the current leader of an auction
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID int64) (models.Bid, error) {
	if auctionID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}

	winningBid, err := s.repo.GetHighestBid(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %d: %w", auctionID, err)
	}

	return winningBid, nil
}

// GetAuctionWinner returns the winner frozen at close time
func (s *BiddingService) GetAuctionWinner(ctx context.Context, auctionID int64) (Winner, error) {
	if auctionID <= 0 {
		return Winner{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return Winner{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	if auction.WinnerID == nil {
		return Winner{HasWinner: false}, nil
	}

	winner := Winner{
		HasWinner: true,
		UserID:    *auction.WinnerID,
		Amount:    auction.WinningBid.Decimal,
	}
	user, err := s.repo.GetUser(ctx, *auction.WinnerID)
	switch {
	case err == nil:
		winner.Username = user.Username
	case !errors.Is(err, biddingerrors.ErrUserNotFound):
		return Winner{}, fmt.Errorf("service: failed to get winner of auction %d: %w", auctionID, err)
	}
	return winner, nil
}

// GetAuctionsByUser returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByUser(ctx context.Context, userID int64) ([]models.Auction, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidInput)
	}

	auctions, err := s.repo.GetAuctionsByBidder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %d: %w", userID, err)
	}

	return auctions, nil
}

// UpdateMinIncrement changes an auction's increment. Increments below 0.01 are rejected.
func (s *BiddingService) UpdateMinIncrement(ctx context.Context, auctionID int64, increment decimal.Decimal) (models.Auction, error) {
	if auctionID <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}
	if increment.LessThan(models.MinAllowedIncrement) || !models.IsCents(increment) {
		return models.Auction{}, fmt.Errorf("service: %w - got %s", biddingerrors.ErrInvalidIncrement, increment.String())
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	var (
		auction models.Auction
		stepErr error
	)
	err := s.repo.WithTx(ctx, func(tx repository.AuctionDB) error {
		auction, stepErr = tx.LockAuction(ctx, auctionID)
		if stepErr != nil {
			stepErr = lookupErr(stepErr, "load auction %d", auctionID)
			return stepErr
		}
		if auction.Status == models.AuctionEnded {
			stepErr = fmt.Errorf("service: %w - auction %d", biddingerrors.ErrAlreadyEnded, auctionID)
			return stepErr
		}
		if err := tx.UpdateMinIncrement(ctx, auctionID, increment); err != nil {
			stepErr = fmt.Errorf("service: %w - update increment: %w", biddingerrors.ErrTransactionFailed, err)
			return stepErr
		}
		return nil
	})
	if stepErr != nil {
		return models.Auction{}, stepErr
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: %w - commit increment on auction %d: %w", biddingerrors.ErrTransactionFailed, auctionID, err)
	}

	auction.MinBidIncrement = increment
	utils.Info("bidding: minimum increment updated", map[string]any{
		"auction_id": auctionID,
		"increment":  increment.StringFixed(2),
	})
	return auction, nil
}

// lookupErr keeps not-found errors distinct and treats anything else as a store failure
func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
		return fmt.Errorf("service: %w", err)
	}
	return fmt.Errorf("service: %w - "+format+": %w", append(append([]any{biddingerrors.ErrTransactionFailed}, args...), err)...)
}
