package bidding

import (
	model "auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// MinimumBid returns the smallest acceptable next bid: max(highestBid, startingPrice) + increment.
// A zero increment falls back to the default of 1.00.
func MinimumBid(startingPrice, increment, highestBid decimal.Decimal) decimal.Decimal {
	if increment.IsZero() {
		increment = model.DefaultMinBidIncrement
	}
	return decimal.Max(highestBid, startingPrice).Add(increment)
}
