package helpers

import (
	"time"

	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/wallet"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID int64           `json:"auction_id" form:"auction_id" binding:"required,gt=0"`
	BidAmount decimal.Decimal `json:"bid_amount" form:"bid_amount" binding:"required"`
}

type BidResponse struct {
	BidID     int64  `json:"bid_id"`
	AuctionID int64  `json:"auction_id"`
	BidderID  int64  `json:"bidder_id"`
	Amount    string `json:"bid_amount"`
	CreatedAt string `json:"created_at"`
}

type RankedBidResponse struct {
	BidResponse
	IsHighest bool `json:"is_highest"`
}

type WinnerResponse struct {
	HasWinner bool           `json:"has_winner"`
	Winner    *WinnerDetails `json:"winner,omitempty"`
}

type WinnerDetails struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Amount   string `json:"amount"`
}

type CloseAuctionRequest struct {
	AuctionID          int64            `json:"auction_id" binding:"required,gt=0"`
	WinnerID           *int64           `json:"winner_id"`
	WinningBid         *decimal.Decimal `json:"winning_bid"`
	NotifyParticipants bool             `json:"notify_participants"`
	Override           bool             `json:"override"`
}

type UpdateMinIncrementRequest struct {
	AuctionID    int64           `json:"auction_id" binding:"required,gt=0"`
	MinIncrement decimal.Decimal `json:"min_increment" binding:"required"`
}

type CreateAuctionRequest struct {
	Title           string          `json:"title" binding:"required,max=255"`
	Description     string          `json:"description"`
	StartingPrice   decimal.Decimal `json:"starting_price" binding:"gte=0"`
	MinBidIncrement decimal.Decimal `json:"min_bid_increment" binding:"gte=0"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
}

type AuctionResponse struct {
	AuctionID       int64   `json:"auction_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	SellerID        int64   `json:"seller_id"`
	StartingPrice   string  `json:"starting_price"`
	CurrentPrice    string  `json:"current_price"`
	MinBidIncrement string  `json:"min_bid_increment"`
	MinimumBid      string  `json:"minimum_bid,omitempty"`
	Status          string  `json:"status"`
	StartDate       *string `json:"start_date,omitempty"`
	EndDate         *string `json:"end_date,omitempty"`
	TimeRemaining   string  `json:"time_remaining,omitempty"`
	WinnerID        *int64  `json:"winner_id,omitempty"`
	WinningBid      *string `json:"winning_bid,omitempty"`
	Settled         bool    `json:"settled"`
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type UserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type WalletAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Reason string          `json:"reason" binding:"max=255"`
}

type BalanceResponse struct {
	UserID  int64  `json:"user_id"`
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	TransactionID    string `json:"transaction_id"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	BalanceBefore    string `json:"balance_before"`
	BalanceAfter     string `json:"balance_after"`
	Status           string `json:"status"`
	Reason           string `json:"reason"`
	RelatedAuctionID *int64 `json:"related_auction_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type SettlementResponse struct {
	AuctionID  int64                `json:"auction_id"`
	Deduction  TransactionResponse  `json:"deduction"`
	Payout     TransactionResponse  `json:"payout"`
	Commission *TransactionResponse `json:"commission,omitempty"`
}

type NotificationResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Kind      string  `json:"kind"`
	RelatedID *int64  `json:"related_id,omitempty"`
	Read      bool    `json:"read"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type NotificationsResponse struct {
	Unread        int64                  `json:"unread"`
	Notifications []NotificationResponse `json:"notifications"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// NewBidResponse converts a ledger entry
func NewBidResponse(bid models.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.ID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount.StringFixed(2),
		CreatedAt: formatTime(bid.CreatedAt),
	}
}

// NewRankedBidsResponse converts a ranked history, never returning nil
func NewRankedBidsResponse(bids []bidding.RankedBid) []RankedBidResponse {
	out := make([]RankedBidResponse, 0, len(bids))
	for _, bid := range bids {
		out = append(out, RankedBidResponse{BidResponse: NewBidResponse(bid.Bid), IsHighest: bid.IsHighest})
	}
	return out
}

// NewWinnerResponse converts a winner lookup
func NewWinnerResponse(w bidding.Winner) WinnerResponse {
	if !w.HasWinner {
		return WinnerResponse{HasWinner: false}
	}
	return WinnerResponse{
		HasWinner: true,
		Winner: &WinnerDetails{
			UserID:   w.UserID,
			Username: w.Username,
			Amount:   w.Amount.StringFixed(2),
		},
	}
}

// NewAuctionResponse converts an auction; extras are filled by the caller when known
func NewAuctionResponse(a models.Auction) AuctionResponse {
	resp := AuctionResponse{
		AuctionID:       a.ID,
		Title:           a.Title,
		Description:     a.Description,
		SellerID:        a.SellerID,
		StartingPrice:   a.StartingPrice.StringFixed(2),
		CurrentPrice:    a.CurrentPrice.StringFixed(2),
		MinBidIncrement: a.IncrementOrDefault().StringFixed(2),
		Status:          string(a.Status),
		StartDate:       formatTimePtr(a.StartDate),
		EndDate:         formatTimePtr(a.EndDate),
		WinnerID:        a.WinnerID,
		Settled:         a.Settled,
	}
	if a.WinningBid.Valid {
		amount := a.WinningBid.Decimal.StringFixed(2)
		resp.WinningBid = &amount
	}
	return resp
}

// NewAuctionsResponse converts a list, never returning nil
func NewAuctionsResponse(auctions []models.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, NewAuctionResponse(a))
	}
	return out
}

// NewUserResponse hides the password hash
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{UserID: u.ID, Username: u.Username, Role: string(u.Role), Status: string(u.Status)}
}

// NewTransactionResponse converts a wallet journal entry
func NewTransactionResponse(t models.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    t.TransactionID,
		Type:             string(t.Type),
		Amount:           t.Amount.StringFixed(2),
		BalanceBefore:    t.BalanceBefore.StringFixed(2),
		BalanceAfter:     t.BalanceAfter.StringFixed(2),
		Status:           string(t.Status),
		Reason:           t.Reason,
		RelatedAuctionID: t.RelatedAuctionID,
		CreatedAt:        formatTime(t.CreatedAt),
	}
}

// NewTransactionsResponse converts a history, never returning nil
func NewTransactionsResponse(rows []models.WalletTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewTransactionResponse(row))
	}
	return out
}

// NewSettlementResponse converts the journal written by a settlement
func NewSettlementResponse(s wallet.Settlement) SettlementResponse {
	resp := SettlementResponse{
		AuctionID: s.AuctionID,
		Deduction: NewTransactionResponse(s.Deduction),
		Payout:    NewTransactionResponse(s.Payout),
	}
	if s.Commission != nil {
		commission := NewTransactionResponse(*s.Commission)
		resp.Commission = &commission
	}
	return resp
}

// NewNotificationsResponse converts an inbox page, never returning a nil list
func NewNotificationsResponse(unread int64, rows []models.Notification) NotificationsResponse {
	out := NotificationsResponse{Unread: unread, Notifications: make([]NotificationResponse, 0, len(rows))}
	for _, n := range rows {
		out.Notifications = append(out.Notifications, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Kind:      string(n.Kind),
			RelatedID: n.RelatedID,
			Read:      n.ReadAt != nil,
			ReadAt:    formatTimePtr(n.ReadAt),
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	return out
}
