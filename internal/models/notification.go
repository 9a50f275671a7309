package models

import "time"

// NotificationKind groups notifications for display
type NotificationKind string

const (
	NotifyBid     NotificationKind = "bid"
	NotifyOutbid  NotificationKind = "outbid"
	NotifyAuction NotificationKind = "auction"
	NotifyWin     NotificationKind = "win"
	NotifyWallet  NotificationKind = "wallet"
	NotifySystem  NotificationKind = "system"
)

// Notification is an in-app message addressed to one user
type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Kind      NotificationKind `gorm:"size:16;not null" json:"kind"`
	SourceTag string           `gorm:"size:64" json:"source_tag"`
	RelatedID *int64           `json:"related_id,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}
