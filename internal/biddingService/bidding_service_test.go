package bidding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

// Helper to build an ongoing auction sold by user 1: starting price 100.00, increment 10.00
func ongoingAuction() model.Auction {
	return model.Auction{
		ID:              1,
		Title:           "Vintage camera",
		SellerID:        1,
		StartingPrice:   dec("100"),
		CurrentPrice:    dec("100"),
		MinBidIncrement: dec("10"),
		Status:          model.AuctionOngoing,
	}
}

// runInTx makes WithTx invoke its callback against the same mock
func runInTx(repo *repository.MockAuctionDB) *gomock.Call {
	return repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(repository.AuctionDB) error) error {
			return fn(repo)
		})
}

func newTestService(t *testing.T) (*BiddingService, *repository.MockAuctionDB, *MockNotifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := repository.NewMockAuctionDB(ctrl)
	notifier := NewMockNotifier(ctrl)
	service := NewBiddingService(repo,
		WithNotifier(notifier),
		WithClock(func() time.Time { return fixedNow }),
	)
	return service, repo, notifier
}

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	t.Parallel()

	// Table-driven test cases
	tests := []struct {
		name          string
		auctionID     int64
		bidderID      int64
		amount        string
		mockSetup     func(repo *repository.MockAuctionDB, notifier *MockNotifier)
		expectError   bool
		expectedError error
		errorContains string
	}{
		{
			name:      "valid_first_bid",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, notifier *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *model.Bid) error {
					b.ID = 10
					return nil
				})
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(func(_ context.Context, _ int64, price decimal.Decimal) error {
					if !price.Equal(dec("110")) {
						return fmt.Errorf("unexpected price %s", price)
					}
					return nil
				})
				notifier.EXPECT().Notify(gomock.Any(), int64(1), gomock.Any(), gomock.Any(), model.NotifyBid, notificationSource, gomock.Any()).Return(nil)
			},
		},
		{
			name:      "valid_outbid_notifies_previous_leader",
			auctionID: 1,
			bidderID:  3,
			amount:    "125",
			mockSetup: func(repo *repository.MockAuctionDB, notifier *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{ID: 10, BidderID: 2, Amount: dec("110")}, nil)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(nil)
				notifier.EXPECT().Notify(gomock.Any(), int64(1), gomock.Any(), gomock.Any(), model.NotifyBid, notificationSource, gomock.Any()).Return(nil)
				notifier.EXPECT().Notify(gomock.Any(), int64(2), gomock.Any(), gomock.Any(), model.NotifyOutbid, notificationSource, gomock.Any()).Return(nil)
			},
		},
		{
			name:      "leader_raising_own_bid_is_not_outbid",
			auctionID: 1,
			bidderID:  2,
			amount:    "130",
			mockSetup: func(repo *repository.MockAuctionDB, notifier *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{ID: 10, BidderID: 2, Amount: dec("110")}, nil)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(nil)
				notifier.EXPECT().Notify(gomock.Any(), int64(1), gomock.Any(), gomock.Any(), model.NotifyBid, notificationSource, gomock.Any()).Return(nil)
			},
		},
		{
			name:      "approved_auction_accepts_bids",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, notifier *MockNotifier) {
				auction := ongoingAuction()
				auction.Status = model.AuctionApproved
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(nil)
				notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "notification_failure_is_swallowed",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, notifier *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(nil)
				notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("sink down"))
			},
		},
		{
			name:          "missing_auction_id",
			auctionID:     0,
			bidderID:      2,
			amount:        "110",
			mockSetup:     func(*repository.MockAuctionDB, *MockNotifier) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidInput,
		},
		{
			name:      "auction_not_found",
			auctionID: 99,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(99)).Return(model.Auction{}, fmt.Errorf("lock auction 99: %w", biddingerrors.ErrAuctionNotFound))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrAuctionNotFound,
		},
		{
			name:      "pending_auction_checked_before_seller",
			auctionID: 1,
			bidderID:  1,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				auction := ongoingAuction()
				auction.Status = model.AuctionPending
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrAuctionNotActive,
		},
		{
			name:      "paused_auction",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				auction := ongoingAuction()
				auction.Status = model.AuctionPaused
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrAuctionNotActive,
		},
		{
			name:      "seller_bids_on_own_auction",
			auctionID: 1,
			bidderID:  1,
			amount:    "500",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrSelfBidForbidden,
		},
		{
			name:      "before_start_date",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				auction := ongoingAuction()
				auction.StartDate = ptrTime(fixedNow.Add(time.Hour))
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrNotStarted,
		},
		{
			name:      "after_end_date",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				auction := ongoingAuction()
				auction.StartDate = ptrTime(fixedNow.Add(-2 * time.Hour))
				auction.EndDate = ptrTime(fixedNow.Add(-time.Minute))
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrAlreadyEnded,
		},
		{
			name:      "bid_below_starting_minimum",
			auctionID: 1,
			bidderID:  2,
			amount:    "105",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
			errorContains: "110.00",
		},
		{
			name:      "bid_below_leader_minimum",
			auctionID: 1,
			bidderID:  3,
			amount:    "130",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{BidderID: 2, Amount: dec("125")}, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
			errorContains: "135.00",
		},
		{
			name:      "negative_amount_fails_minimum_first",
			auctionID: 1,
			bidderID:  2,
			amount:    "-50",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
		},
		{
			name:      "highest_bid_read_fails",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, errors.New("connection reset"))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrTransactionFailed,
		},
		{
			name:      "repo_write_fails",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(errors.New("repo write failed"))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrTransactionFailed,
		},
		{
			name:      "price_update_fails",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(errors.New("disk full"))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrTransactionFailed,
		},
		{
			name:      "commit_fails",
			auctionID: 1,
			bidderID:  2,
			amount:    "110",
			mockSetup: func(repo *repository.MockAuctionDB, _ *MockNotifier) {
				repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, fn func(repository.AuctionDB) error) error {
						if err := fn(repo); err != nil {
							return err
						}
						return errors.New("commit: connection lost")
					})
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)
				repo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().UpdateCurrentPrice(gomock.Any(), int64(1), gomock.Any()).Return(nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrTransactionFailed,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			service, repo, notifier := newTestService(t)
			tc.mockSetup(repo, notifier)

			bid, err := service.PlaceBid(context.Background(), tc.auctionID, tc.bidderID, dec(tc.amount))

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
				if tc.errorContains != "" {
					require.Contains(t, err.Error(), tc.errorContains)
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.auctionID, bid.AuctionID)
			require.Equal(t, tc.bidderID, bid.BidderID)
			require.True(t, dec(tc.amount).Equal(bid.Amount))
			require.Equal(t, fixedNow, bid.CreatedAt)
		})
	}
}

func TestBiddingService_PlaceBid_BidTooLowCarriesMinimum(t *testing.T) {
	t.Parallel()

	service, repo, _ := newTestService(t)
	runInTx(repo)
	repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
	repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)

	_, err := service.PlaceBid(context.Background(), 1, 2, dec("105"))

	var tooLow *biddingerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "110.00", tooLow.Minimum.StringFixed(2))
}

func TestBiddingService_GetBidsForAuction(t *testing.T) {
	t.Parallel()

	t.Run("flags_leader", func(t *testing.T) {
		t.Parallel()
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
		repo.EXPECT().GetBidsByAuction(gomock.Any(), int64(1)).Return([]model.Bid{
			{ID: 3, BidderID: 3, Amount: dec("125")},
			{ID: 2, BidderID: 2, Amount: dec("110")},
		}, nil)

		bids, err := service.GetBidsForAuction(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.True(t, bids[0].IsHighest)
		require.False(t, bids[1].IsHighest)
		require.Equal(t, int64(3), bids[0].ID)
	})

	t.Run("no_bids", func(t *testing.T) {
		t.Parallel()
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
		repo.EXPECT().GetBidsByAuction(gomock.Any(), int64(1)).Return(nil, biddingerrors.ErrNoBids)

		_, err := service.GetBidsForAuction(context.Background(), 1)
		require.ErrorIs(t, err, biddingerrors.ErrNoBids)
	})

	t.Run("unknown_auction", func(t *testing.T) {
		t.Parallel()
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetAuction(gomock.Any(), int64(5)).Return(model.Auction{}, biddingerrors.ErrAuctionNotFound)

		_, err := service.GetBidsForAuction(context.Background(), 5)
		require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
	})

	t.Run("invalid_id", func(t *testing.T) {
		t.Parallel()
		service, _, _ := newTestService(t)
		_, err := service.GetBidsForAuction(context.Background(), 0)
		require.ErrorIs(t, err, biddingerrors.ErrInvalidInput)
	})
}

func TestBiddingService_GetWinningBid(t *testing.T) {
	t.Parallel()

	service, repo, _ := newTestService(t)
	repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{ID: 4, BidderID: 3, Amount: dec("125")}, nil)
	repo.EXPECT().GetHighestBid(gomock.Any(), int64(2)).Return(model.Bid{}, biddingerrors.ErrNoBids)

	bid, err := service.GetWinningBid(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(4), bid.ID)

	_, err = service.GetWinningBid(context.Background(), 2)
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)
}

func TestBiddingService_GetAuctionWinner(t *testing.T) {
	t.Parallel()

	t.Run("ended_with_winner", func(t *testing.T) {
		t.Parallel()
		service, repo, _ := newTestService(t)
		winnerID := int64(3)
		auction := ongoingAuction()
		auction.Status = model.AuctionEnded
		auction.WinnerID = &winnerID
		auction.WinningBid = decimal.NewNullDecimal(dec("125"))
		repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(auction, nil)
		repo.EXPECT().GetUser(gomock.Any(), winnerID).Return(model.User{ID: winnerID, Username: "yara"}, nil)

		winner, err := service.GetAuctionWinner(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, winner.HasWinner)
		require.Equal(t, winnerID, winner.UserID)
		require.Equal(t, "yara", winner.Username)
		require.Equal(t, "125.00", winner.Amount.StringFixed(2))
	})

	t.Run("no_winner", func(t *testing.T) {
		t.Parallel()
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)

		winner, err := service.GetAuctionWinner(context.Background(), 1)
		require.NoError(t, err)
		require.False(t, winner.HasWinner)
	})
}

func TestBiddingService_GetAuctionsByUser(t *testing.T) {
	t.Parallel()

	service, repo, _ := newTestService(t)
	repo.EXPECT().GetAuctionsByBidder(gomock.Any(), int64(2)).Return([]model.Auction{ongoingAuction()}, nil)
	repo.EXPECT().GetAuctionsByBidder(gomock.Any(), int64(3)).Return(nil, biddingerrors.ErrUserNoBids)

	auctions, err := service.GetAuctionsByUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, auctions, 1)

	_, err = service.GetAuctionsByUser(context.Background(), 3)
	require.ErrorIs(t, err, biddingerrors.ErrUserNoBids)

	_, err = service.GetAuctionsByUser(context.Background(), 0)
	require.ErrorIs(t, err, biddingerrors.ErrInvalidInput)
}

func TestBiddingService_UpdateMinIncrement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		increment     string
		mockSetup     func(repo *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:      "valid_increment",
			increment: "2.50",
			mockSetup: func(repo *repository.MockAuctionDB) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().UpdateMinIncrement(gomock.Any(), int64(1), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "smallest_allowed",
			increment: "0.01",
			mockSetup: func(repo *repository.MockAuctionDB) {
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(ongoingAuction(), nil)
				repo.EXPECT().UpdateMinIncrement(gomock.Any(), int64(1), gomock.Any()).Return(nil)
			},
		},
		{
			name:          "below_one_cent",
			increment:     "0.009",
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: biddingerrors.ErrInvalidIncrement,
		},
		{
			name:          "zero",
			increment:     "0",
			mockSetup:     func(*repository.MockAuctionDB) {},
			expectedError: biddingerrors.ErrInvalidIncrement,
		},
		{
			name:      "ended_auction",
			increment: "5",
			mockSetup: func(repo *repository.MockAuctionDB) {
				auction := ongoingAuction()
				auction.Status = model.AuctionEnded
				runInTx(repo)
				repo.EXPECT().LockAuction(gomock.Any(), int64(1)).Return(auction, nil)
			},
			expectedError: biddingerrors.ErrAlreadyEnded,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, repo, _ := newTestService(t)
			tc.mockSetup(repo)

			auction, err := service.UpdateMinIncrement(context.Background(), 1, dec(tc.increment))
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.True(t, dec(tc.increment).Equal(auction.MinBidIncrement))
		})
	}
}

func TestBiddingService_NextMinimumBid(t *testing.T) {
	t.Parallel()

	service, repo, _ := newTestService(t)
	repo.EXPECT().GetHighestBid(gomock.Any(), int64(1)).Return(model.Bid{}, biddingerrors.ErrNoBids)

	minimum, err := service.NextMinimumBid(context.Background(), ongoingAuction())
	require.NoError(t, err)
	require.Equal(t, "110.00", minimum.StringFixed(2))
}
