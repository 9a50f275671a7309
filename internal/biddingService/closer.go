package bidding

import (
	"context"
	"errors"
	"fmt"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/metrics"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

// Close triggers
const (
	TriggerAdmin = "admin"
	TriggerSweep = "sweep"
)

// CloseOptions controls how an auction is closed.
// WinnerID and WinningBid are only honoured when Override is set; otherwise the ledger decides.
type CloseOptions struct {
	WinnerID   *int64
	WinningBid decimal.NullDecimal
	Notify     bool
	Override   bool
	Trigger    string
}

// CloseAuction ends an auction and freezes its winner. Closing an ended auction fails with ErrAlreadyEnded.
func (s *BiddingService) CloseAuction(ctx context.Context, auctionID int64, opts CloseOptions) (models.Auction, error) {
	if auctionID <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}
	if opts.Override && (opts.WinnerID == nil || !opts.WinningBid.Valid) {
		return models.Auction{}, fmt.Errorf("service: %w - override requires winner_id and winning_bid", biddingerrors.ErrInvalidInput)
	}
	if opts.Trigger == "" {
		opts.Trigger = TriggerAdmin
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	var (
		auction models.Auction
		stepErr error
	)
	err := s.repo.WithTx(ctx, func(tx repository.AuctionDB) error {
		auction, stepErr = s.closeAuctionTx(ctx, tx, auctionID, opts)
		return stepErr
	})
	if stepErr != nil {
		s.observeCloseError(opts.Trigger, stepErr)
		return models.Auction{}, stepErr
	}
	if err != nil {
		s.metrics.ObserveClose(opts.Trigger, metrics.OutcomeFailed)
		return models.Auction{}, fmt.Errorf("service: %w - commit close of auction %d: %w", biddingerrors.ErrTransactionFailed, auctionID, err)
	}

	s.metrics.ObserveClose(opts.Trigger, metrics.OutcomeAccepted)
	fields := map[string]any{"auction_id": auctionID, "trigger": opts.Trigger, "has_winner": auction.WinnerID != nil}
	if auction.WinnerID != nil {
		fields["winner_id"] = *auction.WinnerID
		fields["winning_bid"] = auction.WinningBid.Decimal.StringFixed(2)
	}
	utils.Info("bidding: auction closed", fields)

	if opts.Notify {
		s.notifyClosed(ctx, auction)
	}
	return auction, nil
}

func (s *BiddingService) closeAuctionTx(ctx context.Context, tx repository.AuctionDB, auctionID int64, opts CloseOptions) (models.Auction, error) {
	auction, err := tx.LockAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, lookupErr(err, "load auction %d", auctionID)
	}
	if auction.Status == models.AuctionEnded {
		return models.Auction{}, fmt.Errorf("service: %w - auction %d", biddingerrors.ErrAlreadyEnded, auctionID)
	}
	if !auction.Status.CanTransitionTo(models.AuctionEnded) {
		return models.Auction{}, fmt.Errorf("service: %w - cannot close %s auction %d", biddingerrors.ErrInvalidTransition, auction.Status, auctionID)
	}

	leader, hasLeader, err := highestBid(ctx, tx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}

	var (
		winnerID   *int64
		winningBid decimal.NullDecimal
	)
	switch {
	case opts.Override:
		backing, err := tx.GetHighestBidByUser(ctx, auctionID, *opts.WinnerID)
		if err != nil {
			if errors.Is(err, biddingerrors.ErrNoBids) {
				return models.Auction{}, fmt.Errorf("service: %w - user %d has no bid on auction %d", biddingerrors.ErrInvalidInput, *opts.WinnerID, auctionID)
			}
			return models.Auction{}, fmt.Errorf("service: %w - read override bid: %w", biddingerrors.ErrTransactionFailed, err)
		}
		// the override amount must be covered by the winner's own bids
		amount := opts.WinningBid.Decimal
		if amount.GreaterThan(backing.Amount) || amount.LessThan(auction.StartingPrice) || !models.IsCents(amount) {
			return models.Auction{}, fmt.Errorf("service: %w - winning bid %s must be between %s and user %d's highest bid %s",
				biddingerrors.ErrInvalidInput, amount.String(), auction.StartingPrice.StringFixed(2), *opts.WinnerID, backing.Amount.StringFixed(2))
		}
		id := *opts.WinnerID
		winnerID = &id
		winningBid = opts.WinningBid

		audit := map[string]any{
			"auction_id":  auctionID,
			"winner_id":   id,
			"winning_bid": opts.WinningBid.Decimal.StringFixed(2),
		}
		if hasLeader {
			audit["ledger_winner_id"] = leader.BidderID
			audit["ledger_winning_bid"] = leader.Amount.StringFixed(2)
		}
		utils.Warn("bidding: manual winner override", audit)
	case hasLeader:
		id := leader.BidderID
		winnerID = &id
		winningBid = decimal.NewNullDecimal(leader.Amount)

		if (opts.WinnerID != nil && *opts.WinnerID != id) || (opts.WinningBid.Valid && !opts.WinningBid.Decimal.Equal(leader.Amount)) {
			utils.Warn("bidding: ignoring caller supplied winner, using ledger leader", map[string]any{
				"auction_id": auctionID,
				"winner_id":  id,
			})
		}
	}

	if err := tx.CloseAuction(ctx, auctionID, winnerID, winningBid); err != nil {
		if errors.Is(err, biddingerrors.ErrAlreadyEnded) {
			return models.Auction{}, fmt.Errorf("service: %w", err)
		}
		return models.Auction{}, fmt.Errorf("service: %w - close auction: %w", biddingerrors.ErrTransactionFailed, err)
	}

	auction.Status = models.AuctionEnded
	auction.WinnerID = winnerID
	auction.WinningBid = winningBid
	return auction, nil
}

func highestBid(ctx context.Context, tx repository.AuctionDB, auctionID int64) (models.Bid, bool, error) {
	leader, err := tx.GetHighestBid(ctx, auctionID)
	switch {
	case err == nil:
		return leader, true, nil
	case errors.Is(err, biddingerrors.ErrNoBids):
		return models.Bid{}, false, nil
	default:
		return models.Bid{}, false, fmt.Errorf("service: %w - read highest bid: %w", biddingerrors.ErrTransactionFailed, err)
	}
}

func (s *BiddingService) observeCloseError(trigger string, err error) {
	if errors.Is(err, biddingerrors.ErrTransactionFailed) {
		s.metrics.ObserveClose(trigger, metrics.OutcomeFailed)
		return
	}
	s.metrics.ObserveClose(trigger, metrics.OutcomeRejected)
}

// notifyClosed fans out to the seller, the winner and every other bidder
func (s *BiddingService) notifyClosed(ctx context.Context, auction models.Auction) {
	if s.notifier == nil {
		return
	}

	if auction.WinnerID != nil {
		s.notify(ctx, auction.SellerID, "Your auction has ended",
			fmt.Sprintf("%q sold for %s.", auction.Title, auction.WinningBid.Decimal.StringFixed(2)),
			models.NotifyAuction, auction.ID)
		s.notify(ctx, *auction.WinnerID, "You won the auction",
			fmt.Sprintf("You won %q with a bid of %s.", auction.Title, auction.WinningBid.Decimal.StringFixed(2)),
			models.NotifyWin, auction.ID)
	} else {
		s.notify(ctx, auction.SellerID, "Your auction has ended",
			fmt.Sprintf("%q ended without a winning bid.", auction.Title),
			models.NotifyAuction, auction.ID)
	}

	bidders, err := s.repo.GetBidderIDs(ctx, auction.ID)
	if err != nil {
		utils.Warn("bidding: could not list bidders for close notifications", map[string]any{
			"auction_id": auction.ID,
			"error":      err.Error(),
		})
		return
	}
	for _, bidderID := range bidders {
		if auction.WinnerID != nil && bidderID == *auction.WinnerID {
			continue
		}
		s.notify(ctx, bidderID, "Auction ended",
			fmt.Sprintf("%q has ended. Your bid was not the winning bid.", auction.Title),
			models.NotifyAuction, auction.ID)
	}
}
