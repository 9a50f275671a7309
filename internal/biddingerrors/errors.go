package biddingerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoBids               = errors.New("no bids found for auction")
	ErrUserNoBids           = errors.New("user has not placed any bids")
	ErrUserExists           = errors.New("username already taken")
	ErrTransactionFailed    = errors.New("transaction failed")
)

// business logic errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuctionNotActive  = errors.New("auction is not active")
	ErrNotStarted        = errors.New("auction has not started yet")
	ErrAlreadyEnded      = errors.New("auction has already ended")
	ErrSelfBidForbidden  = errors.New("sellers cannot bid on their own auction")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInvalidAmount     = errors.New("bid amount must be greater than zero")
	ErrInvalidIncrement  = errors.New("minimum increment must be at least 0.01")
	ErrInvalidTransition = errors.New("auction status transition not allowed")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrAlreadySettled    = errors.New("auction already settled")
	ErrNoWinner          = errors.New("auction has no winner")
)

// access errors
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access denied")
)

// BidTooLowError carries the minimum acceptable bid
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: minimum bid is %s", ErrBidTooLow.Error(), e.Minimum.StringFixed(2))
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
