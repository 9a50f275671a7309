package handler

//go:generate mockgen -source=wallet_handler.go -destination=mock_wallet_handler.go -package=handler

import (
	"context"
	"net/http"
	"strconv"

	"auction-marketplace/internal/models"
	"auction-marketplace/internal/wallet"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletServiceInterface interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (models.WalletTransaction, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal, reason string) (models.WalletTransaction, error)
	History(ctx context.Context, userID int64, limit int) ([]models.WalletTransaction, error)
	SettleAuction(ctx context.Context, auctionID int64) (wallet.Settlement, error)
}

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// GetBalanceHandler handles GET /wallet
func (h *WalletHandler) GetBalanceHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "GetBalanceHandler")
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), identity.UserID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBalanceHandler", err, map[string]any{"user_id": identity.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.BalanceResponse{
		UserID:  identity.UserID,
		Balance: balance.StringFixed(2),
	}, "balance retrieved successfully")
}

// GetTransactionsHandler handles GET /wallet/transactions?limit=
func (h *WalletHandler) GetTransactionsHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "GetTransactionsHandler")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.service.History(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		helpers.HandleServiceError(c, "GetTransactionsHandler", err, map[string]any{"user_id": identity.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewTransactionsResponse(rows), "transactions retrieved successfully")
}

// DepositHandler handles POST /wallet/deposit
func (h *WalletHandler) DepositHandler(c *gin.Context) {
	h.move(c, "DepositHandler", "Deposit completed", h.service.Deposit)
}

// WithdrawHandler handles POST /wallet/withdraw
func (h *WalletHandler) WithdrawHandler(c *gin.Context) {
	h.move(c, "WithdrawHandler", "Withdrawal completed", h.service.Withdraw)
}

func (h *WalletHandler) move(c *gin.Context, handlerName, message string, apply func(context.Context, int64, decimal.Decimal, string) (models.WalletTransaction, error)) {
	identity, ok := helpers.RequireIdentity(c, handlerName)
	if !ok {
		return
	}

	var req helpers.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, handlerName, err)
		return
	}

	txn, err := apply(c.Request.Context(), identity.UserID, req.Amount, req.Reason)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{
			"user_id": identity.UserID,
			"amount":  req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewTransactionResponse(txn), message)
	helpers.LogSuccess(handlerName, "wallet updated", map[string]any{
		"user_id":        identity.UserID,
		"transaction_id": txn.TransactionID,
	})
}

// SettleAuctionHandler handles POST /admin/auctions/:auction_id/settle
func (h *WalletHandler) SettleAuctionHandler(c *gin.Context) {
	auctionID, err := helpers.ParseIDParam(c, "auction_id")
	if err != nil {
		helpers.HandleServiceError(c, "SettleAuctionHandler", err, nil)
		return
	}

	settlement, err := h.service.SettleAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "SettleAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSettlementResponse(settlement), "Auction settled successfully")
	helpers.LogSuccess("SettleAuctionHandler", "auction settled", map[string]any{"auction_id": auctionID})
}
