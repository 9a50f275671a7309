package handler

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

import (
	"context"
	"errors"
	"net/http"

	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID, bidderID int64, amount decimal.Decimal) (models.Bid, error)
	GetBidsForAuction(ctx context.Context, auctionID int64) ([]bidding.RankedBid, error)
	GetWinningBid(ctx context.Context, auctionID int64) (models.Bid, error)
	GetAuctionWinner(ctx context.Context, auctionID int64) (bidding.Winner, error)
	GetAuctionsByUser(ctx context.Context, userID int64) ([]models.Auction, error)
	CloseAuction(ctx context.Context, auctionID int64, opts bidding.CloseOptions) (models.Auction, error)
	UpdateMinIncrement(ctx context.Context, auctionID int64, increment decimal.Decimal) (models.Auction, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.AuctionID, identity.UserID, req.BidAmount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    identity.UserID,
			"bid_amount": req.BidAmount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, gin.H{"bid": helpers.NewBidResponse(bid)}, "Bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"user_id":    bid.BidderID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// GetBidHistoryHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidHistoryHandler(c *gin.Context) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, "GetBidHistoryHandler", err, nil)
		return
	}

	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		helpers.HandleServiceError(c, "GetBidHistoryHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := helpers.NewRankedBidsResponse(bids)
	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidHistoryHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning-bid
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, "GetWinningBidHandler", err, nil)
		return
	}

	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.HandleServiceError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"user_id":    bid.BidderID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// GetAuctionWinnerHandler handles GET /auctions/:auction_id/winner
func (h *BiddingHandler) GetAuctionWinnerHandler(c *gin.Context) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionWinnerHandler", err, nil)
		return
	}

	winner, err := h.service.GetAuctionWinner(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionWinnerHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewWinnerResponse(winner), "winner retrieved successfully")
}

// GetAuctionsByUserHandler handles GET /users/:user_id/auctions
func (h *BiddingHandler) GetAuctionsByUserHandler(c *gin.Context) {
	userID, err := helpers.ParseIDParam(c, "user_id")
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionsByUserHandler", err, nil)
		return
	}

	auctions, err := h.service.GetAuctionsByUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		helpers.HandleServiceError(c, "GetAuctionsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	resp := helpers.NewAuctionsResponse(auctions)
	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByUserHandler", "auctions retrieved successfully", map[string]any{
		"user_id":        userID,
		"auctions_count": len(resp),
	})
}

// CloseAuctionHandler handles POST /admin/auctions/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	var req helpers.CloseAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CloseAuctionHandler", err)
		return
	}

	opts := bidding.CloseOptions{
		WinnerID: req.WinnerID,
		Notify:   req.NotifyParticipants,
		Override: req.Override,
		Trigger:  bidding.TriggerAdmin,
	}
	if req.WinningBid != nil {
		opts.WinningBid = decimal.NewNullDecimal(*req.WinningBid)
	}

	auction, err := h.service.CloseAuction(c.Request.Context(), req.AuctionID, opts)
	if err != nil {
		helpers.HandleServiceError(c, "CloseAuctionHandler", err, map[string]any{"auction_id": req.AuctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "Auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed", map[string]any{
		"auction_id": auction.ID,
		"override":   req.Override,
	})
}

// UpdateMinIncrementHandler handles POST /admin/auctions/min-increment
func (h *BiddingHandler) UpdateMinIncrementHandler(c *gin.Context) {
	var req helpers.UpdateMinIncrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateMinIncrementHandler", err)
		return
	}

	auction, err := h.service.UpdateMinIncrement(c.Request.Context(), req.AuctionID, req.MinIncrement)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateMinIncrementHandler", err, map[string]any{
			"auction_id":    req.AuctionID,
			"min_increment": req.MinIncrement.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "Minimum increment updated")
	helpers.LogSuccess("UpdateMinIncrementHandler", "minimum increment updated", map[string]any{
		"auction_id":    auction.ID,
		"min_increment": auction.MinBidIncrement.StringFixed(2),
	})
}
