package repository

import (
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(inv *models.Investment) error {
	return r.db.Create(inv).Error
}

func (r *InvestmentRepository) GetByID(id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListEligibleIDs returns the ids of investments due for settlement on the
// given ISO date: ACTIVE, term remaining, and not yet credited today. The
// predicate is evaluated once per run.
func (r *InvestmentRepository) ListEligibleIDs(date string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Investment{}).
		Where("status = ? AND days_remaining > 0 AND (last_credited_on IS NULL OR last_credited_on < ?)",
			domain.InvestmentStatusActive, date).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *InvestmentRepository) ListByAccount(accountID uint, limit, offset int) ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
