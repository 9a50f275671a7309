package auctions

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/locker"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

// CreateInput carries a seller's auction submission
type CreateInput struct {
	Title           string
	Description     string
	StartingPrice   decimal.Decimal
	MinBidIncrement decimal.Decimal
	StartDate       *time.Time
	EndDate         *time.Time
}

// AuctionService handles listing and moderation
type AuctionService struct {
	repo  repository.AuctionDB
	locks *locker.Keyed
	now   func() time.Time
}

// NewAuctionService creates a new AuctionService. Pass the bidding service's locker so
// moderation and bidding serialise on the same auction keys.
func NewAuctionService(repo repository.AuctionDB, locks *locker.Keyed) *AuctionService {
	if locks == nil {
		locks = locker.NewKeyed()
	}
	return &AuctionService{repo: repo, locks: locks, now: time.Now}
}

// CreateAuction validates a submission and stores it as pending
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID int64, in CreateInput) (models.Auction, error) {
	if sellerID <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - missing seller", biddingerrors.ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Auction{}, fmt.Errorf("service: %w - title is required", biddingerrors.ErrInvalidInput)
	}
	if in.StartingPrice.IsNegative() {
		return models.Auction{}, fmt.Errorf("service: %w - starting price must not be negative", biddingerrors.ErrInvalidInput)
	}
	if !models.IsCents(in.StartingPrice) {
		return models.Auction{}, fmt.Errorf("service: %w - starting price has more than two decimals", biddingerrors.ErrInvalidInput)
	}
	increment := in.MinBidIncrement
	switch {
	case increment.IsZero():
		increment = models.DefaultMinBidIncrement
	case increment.LessThan(models.MinAllowedIncrement), !models.IsCents(increment):
		return models.Auction{}, fmt.Errorf("service: %w - got %s", biddingerrors.ErrInvalidIncrement, increment.String())
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return models.Auction{}, fmt.Errorf("service: %w - end date must be after start date", biddingerrors.ErrInvalidInput)
	}

	auction := models.Auction{
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		SellerID:        sellerID,
		StartingPrice:   in.StartingPrice,
		CurrentPrice:    in.StartingPrice,
		MinBidIncrement: increment,
		Status:          models.AuctionPending,
		StartDate:       utcPtr(in.StartDate),
		EndDate:         utcPtr(in.EndDate),
	}
	if err := s.repo.CreateAuction(ctx, &auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auctions: auction submitted", map[string]any{
		"auction_id": auction.ID,
		"seller_id":  sellerID,
	})
	return auction, nil
}

// Approve moves a pending auction to approved
func (s *AuctionService) Approve(ctx context.Context, auctionID int64) (models.Auction, error) {
	return s.transition(ctx, auctionID, models.AuctionApproved)
}

// Reject moves a pending auction to rejected
func (s *AuctionService) Reject(ctx context.Context, auctionID int64) (models.Auction, error) {
	return s.transition(ctx, auctionID, models.AuctionRejected)
}

// Pause suspends bidding on an approved or ongoing auction
func (s *AuctionService) Pause(ctx context.Context, auctionID int64) (models.Auction, error) {
	return s.transition(ctx, auctionID, models.AuctionPaused)
}

// Resume reopens a paused auction
func (s *AuctionService) Resume(ctx context.Context, auctionID int64) (models.Auction, error) {
	return s.transition(ctx, auctionID, models.AuctionOngoing, models.AuctionPaused)
}

// transition applies a lifecycle step under the auction lock. A non-empty from restricts the source status.
func (s *AuctionService) transition(ctx context.Context, auctionID int64, next models.AuctionStatus, from ...models.AuctionStatus) (models.Auction, error) {
	if auctionID <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}

	unlock := s.locks.Lock(auctionID)
	defer unlock()

	var auction models.Auction
	err := s.repo.WithTx(ctx, func(tx repository.AuctionDB) error {
		current, err := tx.LockAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) || (len(from) > 0 && !slices.Contains(from, current.Status)) {
			return fmt.Errorf("%w - %s to %s", biddingerrors.ErrInvalidTransition, current.Status, next)
		}
		if err := tx.UpdateAuctionStatus(ctx, auctionID, next); err != nil {
			return err
		}
		auction = current
		auction.Status = next
		return nil
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to move auction %d to %s: %w", auctionID, next, err)
	}

	utils.Info("auctions: status changed", map[string]any{
		"auction_id": auctionID,
		"status":     next,
	})
	return auction, nil
}

// GetAuction returns one auction
func (s *AuctionService) GetAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	if auctionID <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidInput)
	}
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	return auction, nil
}

// ListAuctions returns auctions matching the filter
func (s *AuctionService) ListAuctions(ctx context.Context, filter repository.AuctionFilter) ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// TimeRemaining renders the time left on an auction for display
func (s *AuctionService) TimeRemaining(auction models.Auction) string {
	if auction.Status == models.AuctionEnded {
		return "ended"
	}
	if auction.EndDate == nil {
		return ""
	}
	return TimeRemaining(*auction.EndDate, s.now())
}

// TimeRemaining formats the gap between now and end as "2d 3h 4m", or "ended" once end has passed
func TimeRemaining(end, now time.Time) string {
	left := end.Sub(now)
	if left <= 0 {
		return "ended"
	}

	days := int(left / (24 * time.Hour))
	left -= time.Duration(days) * 24 * time.Hour
	hours := int(left / time.Hour)
	left -= time.Duration(hours) * time.Hour
	minutes := int(left / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "less than a minute"
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
