package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is one purchase of a plan. DaysRemaining only decreases, by
// exactly one per settled day; LastCreditedOn is the investment-level
// idempotency guard (ISO date of the last credited settlement day).
type Investment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	AccountID      uint            `gorm:"not null;index" json:"account_id"`
	PlanID         uint            `gorm:"not null;index" json:"plan_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DailyReturn    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"daily_return"`
	DurationDays   int             `gorm:"not null" json:"duration_days"`
	DaysRemaining  int             `gorm:"not null" json:"days_remaining"`
	TotalEarned    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_earned"`
	LastCreditedOn *string         `gorm:"size:10;index" json:"last_credited_on,omitempty"`
	Status         string          `gorm:"size:12;not null;default:'ACTIVE';index" json:"status"`
	OrderID        string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Investment) TableName() string { return "investments" }
