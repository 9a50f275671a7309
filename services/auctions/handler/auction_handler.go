package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	auctions "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/sweep"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxListLimit = 100

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, sellerID int64, in auctions.CreateInput) (models.Auction, error)
	Approve(ctx context.Context, auctionID int64) (models.Auction, error)
	Reject(ctx context.Context, auctionID int64) (models.Auction, error)
	Pause(ctx context.Context, auctionID int64) (models.Auction, error)
	Resume(ctx context.Context, auctionID int64) (models.Auction, error)
	GetAuction(ctx context.Context, auctionID int64) (models.Auction, error)
	ListAuctions(ctx context.Context, filter repository.AuctionFilter) ([]models.Auction, error)
	TimeRemaining(auction models.Auction) string
}

// MinimumBidder computes the next acceptable bid
type MinimumBidder interface {
	NextMinimumBid(ctx context.Context, auction models.Auction) (decimal.Decimal, error)
}

// Sweeper runs the date-based status sweep once
type Sweeper interface {
	Sweep(ctx context.Context) (sweep.Result, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
	minimum MinimumBidder
	sweeper Sweeper
}

func NewAuctionHandler(service AuctionServiceInterface, minimum MinimumBidder, sweeper Sweeper) *AuctionHandler {
	return &AuctionHandler{service: service, minimum: minimum, sweeper: sweeper}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "CreateAuctionHandler")
	if !ok {
		return
	}

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), identity.UserID, auctions.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		StartingPrice:   req.StartingPrice,
		MinBidIncrement: req.MinBidIncrement,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": identity.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction submitted for approval")
	helpers.LogSuccess("CreateAuctionHandler", "auction created", map[string]any{
		"auction_id": auction.ID,
		"seller_id":  auction.SellerID,
	})
}

// ListAuctionsHandler handles GET /auctions?status=&seller_id=&limit=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, nil)
		return
	}

	list, err := h.service.ListAuctions(c.Request.Context(), filter)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, nil)
		return
	}

	resp := helpers.NewAuctionsResponse(list)
	for i, auction := range list {
		resp[i].TimeRemaining = h.service.TimeRemaining(auction)
	}
	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, nil)
		return
	}

	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := helpers.NewAuctionResponse(auction)
	resp.TimeRemaining = h.service.TimeRemaining(auction)
	if auction.Status.AcceptsBids() && h.minimum != nil {
		minimum, err := h.minimum.NextMinimumBid(c.Request.Context(), auction)
		if err != nil {
			helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
			return
		}
		resp.MinimumBid = minimum.StringFixed(2)
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auction retrieved successfully")
}

// ApproveAuctionHandler handles POST /admin/auctions/:auction_id/approve
func (h *AuctionHandler) ApproveAuctionHandler(c *gin.Context) {
	h.moderate(c, "ApproveAuctionHandler", "Auction approved", h.service.Approve)
}

// RejectAuctionHandler handles POST /admin/auctions/:auction_id/reject
func (h *AuctionHandler) RejectAuctionHandler(c *gin.Context) {
	h.moderate(c, "RejectAuctionHandler", "Auction rejected", h.service.Reject)
}

// PauseAuctionHandler handles POST /admin/auctions/:auction_id/pause
func (h *AuctionHandler) PauseAuctionHandler(c *gin.Context) {
	h.moderate(c, "PauseAuctionHandler", "Auction paused", h.service.Pause)
}

// ResumeAuctionHandler handles POST /admin/auctions/:auction_id/resume
func (h *AuctionHandler) ResumeAuctionHandler(c *gin.Context) {
	h.moderate(c, "ResumeAuctionHandler", "Auction resumed", h.service.Resume)
}

func (h *AuctionHandler) moderate(c *gin.Context, handlerName, message string, action func(context.Context, int64) (models.Auction, error)) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, nil)
		return
	}

	auction, err := action(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), message)
	helpers.LogSuccess(handlerName, "auction status changed", map[string]any{
		"auction_id": auction.ID,
		"status":     auction.Status,
	})
}

// RunSweepHandler handles POST /admin/sweep
func (h *AuctionHandler) RunSweepHandler(c *gin.Context) {
	if h.sweeper == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "sweep is not configured")
		return
	}

	result, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		utils.Error("RunSweepHandler: sweep finished with errors", map[string]any{"error": err.Error()})
		utils.JSONResponse(c, http.StatusOK, result, "sweep finished with errors")
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "sweep completed")
	helpers.LogSuccess("RunSweepHandler", "sweep completed", map[string]any{
		"started": result.Started,
		"closed":  len(result.Closed),
	})
}

func parseFilter(c *gin.Context) (repository.AuctionFilter, error) {
	var filter repository.AuctionFilter

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseAuctionStatus(raw)
		if err != nil {
			return filter, fmt.Errorf("%w - %w", biddingerrors.ErrInvalidInput, err)
		}
		filter.Status = status
	}
	if raw := c.Query("seller_id"); raw != "" {
		sellerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || sellerID <= 0 {
			return filter, fmt.Errorf("%w - seller_id must be a positive integer", biddingerrors.ErrInvalidInput)
		}
		filter.SellerID = sellerID
	}

	filter.Limit = maxListLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("%w - limit must be a positive integer", biddingerrors.ErrInvalidInput)
		}
		filter.Limit = min(limit, maxListLimit)
	}
	return filter, nil
}
