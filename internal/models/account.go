package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a user's ledger account. Balance and TotalEarnings are mutated
// exclusively through settlement transactions and wallet operations, never
// assigned directly.
type Account struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Email         string          `gorm:"size:191;uniqueIndex;not null" json:"email"`
	ReferralCode  string          `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	ReferredBy    *string         `gorm:"size:20;index" json:"referred_by,omitempty"` // referral code of the upstream account, nil when organic
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	TotalEarnings decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_earnings"` // lifetime, never decreases
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Account) TableName() string { return "accounts" }
