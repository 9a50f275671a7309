package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"
)

// AuctionJobName identifies the date sweep in logs and metrics
const AuctionJobName = "auction-date-sweep"

// auctionStore is the read side of the sweep
type auctionStore interface {
	StartDueAuctions(ctx context.Context, now time.Time) (int64, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]models.Auction, error)
}

// closer ends auctions and assigns winners from the bid ledger
type closer interface {
	CloseAuction(ctx context.Context, auctionID int64, opts bidding.CloseOptions) (models.Auction, error)
}

// Result summarises one sweep
type Result struct {
	Started int64   `json:"started"`
	Closed  []int64 `json:"closed"`
	Failed  []int64 `json:"failed"`
}

// AuctionJob starts approved auctions whose start date has passed and closes auctions past their end date
type AuctionJob struct {
	store  auctionStore
	closer closer
	now    func() time.Time
}

// NewAuctionJob builds the date sweep
func NewAuctionJob(store auctionStore, closer closer) (*AuctionJob, error) {
	if store == nil {
		return nil, errors.New("auction store required")
	}
	if closer == nil {
		return nil, errors.New("auction closer required")
	}
	return &AuctionJob{store: store, closer: closer, now: time.Now}, nil
}

func (j *AuctionJob) Name() string { return AuctionJobName }

func (j *AuctionJob) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx)
	return err
}

// Sweep runs both phases once. Each expired auction is closed on its own, so one failure
// does not stop the rest; failures are reported in the result and the returned error.
func (j *AuctionJob) Sweep(ctx context.Context) (Result, error) {
	now := j.now()
	result := Result{Closed: []int64{}, Failed: []int64{}}

	started, err := j.store.StartDueAuctions(ctx, now)
	if err != nil {
		return result, fmt.Errorf("sweep: start due auctions: %w", err)
	}
	result.Started = started

	due, err := j.store.ListDueToEnd(ctx, now)
	if err != nil {
		return result, fmt.Errorf("sweep: list due auctions: %w", err)
	}

	var errs []error
	for _, auction := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, err := j.closer.CloseAuction(ctx, auction.ID, bidding.CloseOptions{Notify: true, Trigger: bidding.TriggerSweep})
		switch {
		case err == nil:
			result.Closed = append(result.Closed, auction.ID)
		case errors.Is(err, biddingerrors.ErrAlreadyEnded):
			// closed by an admin between the listing and the close
		default:
			result.Failed = append(result.Failed, auction.ID)
			errs = append(errs, fmt.Errorf("close auction %d: %w", auction.ID, err))
			utils.Error("sweep: failed to close auction", map[string]any{"auction_id": auction.ID, "error": err.Error()})
		}
	}

	utils.Info("sweep: auction dates processed", map[string]any{
		"started": result.Started,
		"closed":  len(result.Closed),
		"failed":  len(result.Failed),
	})
	if len(errs) > 0 {
		return result, fmt.Errorf("sweep: %w", errors.Join(errs...))
	}
	return result, nil
}
