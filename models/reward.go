package models

import "time"

// Purchase statuses. Transitions to used/expired are driven externally by the
// reward vendor; only the initial ready state is set locally.
const (
	PurchaseReady   = "ready"
	PurchaseUsed    = "used"
	PurchaseExpired = "expired"
)

// Reward is one redeemable item from the catalog.
type Reward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Vendor    string    `gorm:"size:64" json:"vendor"`
	Cost      int       `gorm:"not null" json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase records one redemption with its issued usage credentials.
type Purchase struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	RewardID   uint      `gorm:"index" json:"reward_id"`
	RewardName string    `gorm:"size:128" json:"reward_name"`
	Cost       int       `json:"cost"`
	OrderNo    string    `gorm:"size:64;uniqueIndex" json:"order_no"`
	Barcode    string    `gorm:"size:32" json:"barcode"`
	PIN        string    `gorm:"size:16" json:"pin"`
	Status     string    `gorm:"size:16;default:ready;index" json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
