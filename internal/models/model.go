package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinBidIncrement applies when an auction is created without an increment
var DefaultMinBidIncrement = decimal.NewFromInt(1)

// MinAllowedIncrement is the smallest increment accepted anywhere
var MinAllowedIncrement = decimal.New(1, -2)

// IsCents reports whether d has at most two decimal places, matching the numeric(12,2) columns
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// User represents a marketplace participant
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username     string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:16;not null;default:user" json:"role"`
	Status       UserStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Auction represents a listing progressing through the moderation and bidding lifecycle
type Auction struct {
	ID              int64               `gorm:"primaryKey;autoIncrement" json:"auction_id"`
	Title           string              `gorm:"size:255;not null" json:"title"`
	Description     string              `gorm:"type:text" json:"description"`
	SellerID        int64               `gorm:"not null;index" json:"seller_id"`
	StartingPrice   decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"starting_price"`
	CurrentPrice    decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"current_price"`
	MinBidIncrement decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"min_bid_increment"`
	Status          AuctionStatus       `gorm:"size:16;not null;index" json:"status"`
	StartDate       *time.Time          `json:"start_date,omitempty"`
	EndDate         *time.Time          `gorm:"index" json:"end_date,omitempty"`
	WinnerID        *int64              `json:"winner_id,omitempty"`
	WinningBid      decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"winning_bid"`
	Settled         bool                `gorm:"not null;default:false" json:"settled"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// Bid represents a user's immutable offer on an auction
type Bid struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"bid_id"`
	AuctionID int64           `gorm:"not null;index:idx_bids_ranking,priority:1" json:"auction_id"`
	BidderID  int64           `gorm:"not null;index" json:"bidder_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null;index:idx_bids_ranking,priority:2,sort:desc" json:"amount"`
	CreatedAt time.Time       `gorm:"not null;index:idx_bids_ranking,priority:3" json:"created_at"`
}

// HasStarted reports whether the auction's start date, if any, is at or before now
func (a Auction) HasStarted(now time.Time) bool {
	return a.StartDate == nil || !now.Before(*a.StartDate)
}

// HasExpired reports whether the auction's end date, if any, has passed
func (a Auction) HasExpired(now time.Time) bool {
	return a.EndDate != nil && now.After(*a.EndDate)
}

// IncrementOrDefault returns the auction's increment, falling back to the default when unset
func (a Auction) IncrementOrDefault() decimal.Decimal {
	if a.MinBidIncrement.IsZero() {
		return DefaultMinBidIncrement
	}
	return a.MinBidIncrement
}
