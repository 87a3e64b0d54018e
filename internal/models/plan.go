package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is an investment product: a fixed daily percentage paid out over a
// fixed number of days.
type Plan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Minimum      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"minimum"`
	Maximum      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"maximum"`
	DailyPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"daily_percent"`
	DurationDays int             `gorm:"not null" json:"duration_days"`
	Status       string          `gorm:"size:10;default:'Active'" json:"status"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
}

func (Plan) TableName() string { return "plans" }
