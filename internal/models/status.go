package models

import "fmt"

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionPending  AuctionStatus = "pending"
	AuctionApproved AuctionStatus = "approved"
	AuctionOngoing  AuctionStatus = "ongoing"
	AuctionPaused   AuctionStatus = "paused"
	AuctionRejected AuctionStatus = "rejected"
	AuctionEnded    AuctionStatus = "ended"
)

var auctionTransitions = map[AuctionStatus][]AuctionStatus{
	AuctionPending:  {AuctionApproved, AuctionRejected},
	AuctionApproved: {AuctionOngoing, AuctionPaused, AuctionEnded},
	AuctionOngoing:  {AuctionPaused, AuctionEnded},
	AuctionPaused:   {AuctionOngoing, AuctionEnded},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	for _, candidate := range auctionTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AcceptsBids reports whether bids may be placed in this status
func (s AuctionStatus) AcceptsBids() bool {
	return s == AuctionOngoing || s == AuctionApproved
}

// ParseAuctionStatus converts raw strings into AuctionStatus
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	switch s := AuctionStatus(value); s {
	case AuctionPending, AuctionApproved, AuctionOngoing, AuctionPaused, AuctionRejected, AuctionEnded:
		return s, nil
	}
	return "", fmt.Errorf("invalid auction status %q", value)
}

// UserRole distinguishes regular users from administrators
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserStatus tracks account approval
type UserStatus string

const (
	UserPending   UserStatus = "pending"
	UserApproved  UserStatus = "approved"
	UserSuspended UserStatus = "suspended"
)
