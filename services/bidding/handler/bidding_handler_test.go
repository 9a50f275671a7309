package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// decimalEq matches decimals by value rather than representation
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x any) bool {
	got, ok := x.(decimal.Decimal)
	return ok && got.Equal(m.want)
}

func (m decimalEq) String() string { return "is equal to " + m.want.String() }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newTestRouter builds a router whose requests are made by the given user (0 = anonymous)
func newTestRouter(t *testing.T, userID int64, role models.UserRole) (*gin.Engine, *MockBiddingServiceInterface) {
	t.Helper()
	require.NoError(t, helpers.RegisterValidators())

	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)
	handler := NewBiddingHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID > 0 {
		router.Use(func(c *gin.Context) {
			helpers.SetIdentity(c, auth.Identity{UserID: userID, Role: role})
			c.Next()
		})
	}
	router.POST("/bids", handler.PlaceBidHandler)
	router.GET("/auctions/:auction_id/bids", handler.GetBidHistoryHandler)
	router.GET("/auctions/:auction_id/winning-bid", handler.GetWinningBidHandler)
	router.GET("/auctions/:auction_id/winner", handler.GetAuctionWinnerHandler)
	router.GET("/users/:user_id/auctions", handler.GetAuctionsByUserHandler)
	router.POST("/admin/auctions/close", handler.CloseAuctionHandler)
	router.POST("/admin/auctions/min-increment", handler.UpdateMinIncrementHandler)
	return router, mockService
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name           string
		userID         int64
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:        "success_valid_bid",
			userID:      2,
			requestBody: map[string]any{"auction_id": 1, "bid_amount": "110.00"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(2), decimalEq{dec("110")}).
					Return(models.Bid{ID: 7, AuctionID: 1, BidderID: 2, Amount: dec("110"), CreatedAt: now}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				bid := data["bid"].(map[string]any)
				require.Equal(t, float64(7), bid["bid_id"])
				require.Equal(t, float64(1), bid["auction_id"])
				require.Equal(t, float64(2), bid["bidder_id"])
				require.Equal(t, "110.00", bid["bid_amount"])
			},
		},
		{
			name:        "numeric_amount",
			userID:      2,
			requestBody: `{"auction_id": 1, "bid_amount": 125.5}`,
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(2), decimalEq{dec("125.5")}).
					Return(models.Bid{ID: 8, AuctionID: 1, BidderID: 2, Amount: dec("125.5"), CreatedAt: now}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Bid placed successfully",
		},
		{
			name:           "anonymous",
			requestBody:    map[string]any{"auction_id": 1, "bid_amount": "110"},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "authentication required",
		},
		{
			name:           "invalid_json",
			userID:         2,
			requestBody:    `{invalid json}`,
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_auction_id",
			userID:         2,
			requestBody:    map[string]any{"bid_amount": "110"},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "invalid_amount_zero",
			userID:         2,
			requestBody:    map[string]any{"auction_id": 1, "bid_amount": "0"},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "service_bid_too_low",
			userID:      2,
			requestBody: map[string]any{"auction_id": 1, "bid_amount": "105"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(2), gomock.Any()).
					Return(models.Bid{}, fmt.Errorf("service: %w", &biddingerrors.BidTooLowError{Minimum: dec("110")}))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "Bid must be at least 110.00",
		},
		{
			name:        "service_self_bid",
			userID:      1,
			requestBody: map[string]any{"auction_id": 1, "bid_amount": "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().PlaceBid(gomock.Any(), int64(1), int64(1), gomock.Any()).Return(models.Bid{}, biddingerrors.ErrSelfBidForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "You cannot bid on your own auction",
		},
		{
			name:        "service_not_active",
			userID:      2,
			requestBody: map[string]any{"auction_id": 1, "bid_amount": "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().PlaceBid(gomock.Any(), int64(1), int64(2), gomock.Any()).Return(models.Bid{}, biddingerrors.ErrAuctionNotActive)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "auction is not active",
		},
		{
			name:        "service_auction_not_found",
			userID:      2,
			requestBody: map[string]any{"auction_id": 99, "bid_amount": "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().PlaceBid(gomock.Any(), int64(99), int64(2), gomock.Any()).Return(models.Bid{}, biddingerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name:        "service_generic_error",
			userID:      2,
			requestBody: map[string]any{"auction_id": 1, "bid_amount": "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(2), gomock.Any()).
					Return(models.Bid{}, fmt.Errorf("%w - pq: connection reset", biddingerrors.ErrTransactionFailed))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newTestRouter(t, tc.userID, models.RoleUser)
			tc.mockSetup(mockService)

			status, resp := doRequest(t, router, http.MethodPost, "/bids", tc.requestBody)
			require.Equal(t, tc.expectedStatus, status)
			require.Contains(t, resp["message"], tc.expectedMsg)
			require.NotContains(t, resp["message"], "pq:")

			if tc.validateData != nil {
				tc.validateData(t, resp["data"].(map[string]any))
			}
		})
	}
}

// Test GetBidHistoryHandler
func TestPlaceBidHandler_FormBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		form           url.Values
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
	}{
		{
			name: "form_encoded_bid",
			form: url.Values{"auction_id": {"1"}, "bid_amount": {"110.50"}},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), int64(1), int64(2), decimalEq{dec("110.50")}).
					Return(models.Bid{ID: 9, AuctionID: 1, BidderID: 2, Amount: dec("110.50"), CreatedAt: time.Now().UTC()}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "form_missing_amount",
			form:           url.Values{"auction_id": {"1"}},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "form_malformed_amount",
			form:           url.Values{"auction_id": {"1"}, "bid_amount": {"ten"}},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newTestRouter(t, 2, models.RoleUser)
			tc.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPost, "/bids", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusCreated {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				bid := resp["data"].(map[string]any)["bid"].(map[string]any)
				require.Equal(t, "110.50", bid["bid_amount"])
			}
		})
	}
}

func TestGetBidHistoryHandler(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name           string
		path           string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedLen    int
	}{
		{
			name: "ranked_bids",
			path: "/auctions/1/bids",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), int64(1)).Return([]bidding.RankedBid{
					{Bid: models.Bid{ID: 2, AuctionID: 1, BidderID: 3, Amount: dec("125"), CreatedAt: now}, IsHighest: true},
					{Bid: models.Bid{ID: 1, AuctionID: 1, BidderID: 2, Amount: dec("110"), CreatedAt: now}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name: "no_bids_is_empty_list",
			path: "/auctions/1/bids",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), int64(1)).Return(nil, biddingerrors.ErrNoBids)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown_auction",
			path: "/auctions/5/bids",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), int64(5)).Return(nil, biddingerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad_id",
			path:           "/auctions/abc/bids",
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service_generic_error",
			path: "/auctions/1/bids",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), int64(1)).Return(nil, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newTestRouter(t, 0, "")
			tc.mockSetup(mockService)

			status, resp := doRequest(t, router, http.MethodGet, tc.path, nil)
			require.Equal(t, tc.expectedStatus, status)
			if status != http.StatusOK {
				require.Equal(t, false, resp["success"])
				return
			}

			data := resp["data"].([]any)
			require.Len(t, data, tc.expectedLen)
			if tc.expectedLen > 0 {
				first := data[0].(map[string]any)
				require.Equal(t, true, first["is_highest"])
				require.Equal(t, "125.00", first["bid_amount"])
				require.Equal(t, false, data[1].(map[string]any)["is_highest"])
			}
		})
	}
}

// Test GetWinningBidHandler
func TestGetWinningBidHandler(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetWinningBid(gomock.Any(), int64(1)).
			Return(models.Bid{ID: 2, AuctionID: 1, BidderID: 3, Amount: dec("125"), CreatedAt: time.Now()}, nil)

		status, resp := doRequest(t, router, http.MethodGet, "/auctions/1/winning-bid", nil)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "125.00", resp["data"].(map[string]any)["bid_amount"])
	})

	t.Run("no_bids", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetWinningBid(gomock.Any(), int64(1)).Return(models.Bid{}, biddingerrors.ErrNoBids)

		status, resp := doRequest(t, router, http.MethodGet, "/auctions/1/winning-bid", nil)
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "no winning bid found", resp["message"])
	})
}

// Test GetAuctionWinnerHandler
func TestGetAuctionWinnerHandler(t *testing.T) {
	t.Parallel()

	t.Run("has_winner", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetAuctionWinner(gomock.Any(), int64(1)).
			Return(bidding.Winner{HasWinner: true, UserID: 3, Username: "carol", Amount: dec("125")}, nil)

		status, resp := doRequest(t, router, http.MethodGet, "/auctions/1/winner", nil)
		require.Equal(t, http.StatusOK, status)
		data := resp["data"].(map[string]any)
		require.Equal(t, true, data["has_winner"])
		winner := data["winner"].(map[string]any)
		require.Equal(t, float64(3), winner["user_id"])
		require.Equal(t, "carol", winner["username"])
		require.Equal(t, "125.00", winner["amount"])
	})

	t.Run("no_winner", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetAuctionWinner(gomock.Any(), int64(1)).Return(bidding.Winner{}, nil)

		status, resp := doRequest(t, router, http.MethodGet, "/auctions/1/winner", nil)
		require.Equal(t, http.StatusOK, status)
		data := resp["data"].(map[string]any)
		require.Equal(t, false, data["has_winner"])
		require.NotContains(t, data, "winner")
	})
}

// Test GetAuctionsByUserHandler
func TestGetAuctionsByUserHandler(t *testing.T) {
	t.Parallel()

	t.Run("auctions", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetAuctionsByUser(gomock.Any(), int64(2)).Return([]models.Auction{
			{ID: 1, Title: "Lamp", Status: models.AuctionOngoing, StartingPrice: dec("10"), CurrentPrice: dec("12")},
		}, nil)

		status, resp := doRequest(t, router, http.MethodGet, "/users/2/auctions", nil)
		require.Equal(t, http.StatusOK, status)
		data := resp["data"].([]any)
		require.Len(t, data, 1)
		require.Equal(t, "12.00", data[0].(map[string]any)["current_price"])
	})

	t.Run("no_bids_is_empty_list", func(t *testing.T) {
		t.Parallel()
		router, mockService := newTestRouter(t, 0, "")
		mockService.EXPECT().GetAuctionsByUser(gomock.Any(), int64(2)).Return(nil, biddingerrors.ErrUserNoBids)

		status, resp := doRequest(t, router, http.MethodGet, "/users/2/auctions", nil)
		require.Equal(t, http.StatusOK, status)
		require.Empty(t, resp["data"])
	})
}

// Test CloseAuctionHandler
func TestCloseAuctionHandler(t *testing.T) {
	t.Parallel()

	winner := int64(3)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "ledger_close",
			requestBody: map[string]any{"auction_id": 1, "notify_participants": true},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().CloseAuction(gomock.Any(), int64(1), bidding.CloseOptions{Notify: true, Trigger: bidding.TriggerAdmin}).
					Return(models.Auction{ID: 1, Status: models.AuctionEnded, WinnerID: &winner, WinningBid: decimal.NewNullDecimal(dec("125"))}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Auction closed successfully",
		},
		{
			name:        "override_passes_values",
			requestBody: map[string]any{"auction_id": 1, "winner_id": 3, "winning_bid": "110.00", "override": true},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().CloseAuction(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
					func(_ any, _ int64, opts bidding.CloseOptions) (models.Auction, error) {
						if !opts.Override || opts.WinnerID == nil || *opts.WinnerID != 3 || !opts.WinningBid.Decimal.Equal(dec("110")) {
							return models.Auction{}, errors.New("unexpected options")
						}
						return models.Auction{ID: 1, Status: models.AuctionEnded}, nil
					})
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Auction closed successfully",
		},
		{
			name:        "already_ended",
			requestBody: map[string]any{"auction_id": 1},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().CloseAuction(gomock.Any(), int64(1), gomock.Any()).Return(models.Auction{}, biddingerrors.ErrAlreadyEnded)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "auction has already ended",
		},
		{
			name:           "missing_auction_id",
			requestBody:    map[string]any{"notify_participants": true},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newTestRouter(t, 1, models.RoleAdmin)
			tc.mockSetup(mockService)

			status, resp := doRequest(t, router, http.MethodPost, "/admin/auctions/close", tc.requestBody)
			require.Equal(t, tc.expectedStatus, status)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test UpdateMinIncrementHandler
func TestUpdateMinIncrementHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
	}{
		{
			name:        "success",
			requestBody: map[string]any{"auction_id": 1, "min_increment": "5.00"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().UpdateMinIncrement(gomock.Any(), int64(1), decimalEq{dec("5")}).
					Return(models.Auction{ID: 1, MinBidIncrement: dec("5")}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "too_small",
			requestBody: map[string]any{"auction_id": 1, "min_increment": "0.001"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().UpdateMinIncrement(gomock.Any(), int64(1), gomock.Any()).Return(models.Auction{}, biddingerrors.ErrInvalidIncrement)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "ended_auction",
			requestBody: map[string]any{"auction_id": 1, "min_increment": "5"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().UpdateMinIncrement(gomock.Any(), int64(1), gomock.Any()).Return(models.Auction{}, biddingerrors.ErrAlreadyEnded)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "missing_increment",
			requestBody:    map[string]any{"auction_id": 1},
			mockSetup:      func(*MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newTestRouter(t, 1, models.RoleAdmin)
			tc.mockSetup(mockService)

			status, _ := doRequest(t, router, http.MethodPost, "/admin/auctions/min-increment", tc.requestBody)
			require.Equal(t, tc.expectedStatus, status)
		})
	}
}
