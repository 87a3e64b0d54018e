package models

import "time"

// Notification is the best-effort "credit happened" event consumed by user
// dashboards. Delivery is never transactionally coupled to the ledger.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	Kind      string    `gorm:"size:20;not null" json:"kind"` // ROI, REFERRAL
	Title     string    `gorm:"size:100" json:"title"`
	Body      string    `gorm:"size:255" json:"body"`
	Data      Metadata  `gorm:"type:text" json:"data,omitempty"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
