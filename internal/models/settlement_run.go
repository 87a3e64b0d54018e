package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRun is the daily run marker. The unique RunDate is the
// idempotency gate: once a row exists for a date, settlement does not run
// again for that date.
type SettlementRun struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	RunDate              string          `gorm:"size:10;uniqueIndex;not null" json:"run_date"`
	Mode                 string          `gorm:"size:12;not null" json:"mode"` // SCHEDULED, MANUAL
	Status               string          `gorm:"size:12;not null" json:"status"`
	InvestmentsProcessed int             `gorm:"not null;default:0" json:"investments_processed"`
	FailedIDs            UintList        `gorm:"type:text" json:"failed_ids"`
	TotalROI             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_roi"`
	TotalCommissions     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_commissions"`
	ExecutedAt           time.Time       `json:"executed_at"`
	CreatedAt            time.Time       `json:"-"`
}

func (SettlementRun) TableName() string { return "settlement_runs" }
