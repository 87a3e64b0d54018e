package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditHistory is the immutable record of one daily return credit.
// The composite unique index is the storage-level guarantee that an
// investment is credited at most once per calendar day.
type CreditHistory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvestmentID uint            `gorm:"not null;uniqueIndex:idx_credit_once_per_day" json:"investment_id"`
	AccountID    uint            `gorm:"not null;index" json:"account_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreditedOn   string          `gorm:"size:10;not null;uniqueIndex:idx_credit_once_per_day" json:"credited_on"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (CreditHistory) TableName() string { return "credit_histories" }

// Commission is the immutable record of one referral payout cascaded from a
// settled investment. Level 1 is the direct referrer.
type Commission struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AccountID       uint            `gorm:"not null;index" json:"account_id"` // beneficiary
	SourceAccountID uint            `gorm:"not null;index" json:"source_account_id"`
	InvestmentID    uint            `gorm:"not null;index" json:"investment_id"`
	Level           int             `gorm:"not null" json:"level"`
	Percent         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percent"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreditedOn      string          `gorm:"size:10;not null;index" json:"credited_on"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Commission) TableName() string { return "commissions" }

// Transaction is the user-facing statement line. Append-only; settlement
// only ever writes COMPLETED rows.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AccountID   uint            `gorm:"not null;index" json:"account_id"`
	Type        string          `gorm:"size:20;not null;index" json:"type"` // ROI, REFERRAL
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description string          `gorm:"size:191" json:"description"`
	Status      string          `gorm:"size:20;not null;default:'COMPLETED'" json:"status"`
	ReferenceID uint            `gorm:"index" json:"reference_id"` // source investment
	Metadata    Metadata        `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }
