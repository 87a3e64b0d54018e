package database

import (
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Plan{},
		&models.Investment{},
		&models.CreditHistory{},
		&models.Commission{},
		&models.Transaction{},
		&models.SettlementRun{},
		&models.Notification{},
	)
}

// SeedPlans inserts the default investment plans when the table is empty.
func SeedPlans(db *gorm.DB) {
	var count int64
	db.Model(&models.Plan{}).Count(&count)
	if count > 0 {
		return
	}
	plans := []models.Plan{
		{Name: "Starter", Minimum: decimal.NewFromInt(100), Maximum: decimal.NewFromInt(4999), DailyPercent: decimal.NewFromInt(10), DurationDays: 15, Status: domain.PlanStatusActive},
		{Name: "Silver", Minimum: decimal.NewFromInt(5000), Maximum: decimal.NewFromInt(24999), DailyPercent: decimal.NewFromInt(12), DurationDays: 20, Status: domain.PlanStatusActive},
		{Name: "Gold", Minimum: decimal.NewFromInt(25000), Maximum: decimal.NewFromInt(100000), DailyPercent: decimal.NewFromInt(15), DurationDays: 30, Status: domain.PlanStatusActive},
	}
	if err := db.Create(&plans).Error; err != nil {
		log.Printf("[seed] plans: %v", err)
	}
}
