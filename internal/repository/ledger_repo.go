package repository

import (
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

// LedgerRepository serves the read surface of the audit trail: transactions
// and credit history are what dashboards show as "my earnings".
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListTransactions(accountID uint, txType string, limit, offset int) ([]models.Transaction, error) {
	q := r.db.Where("account_id = ?", accountID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	var list []models.Transaction
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *LedgerRepository) ListCreditHistory(accountID uint, limit, offset int) ([]models.CreditHistory, error) {
	var list []models.CreditHistory
	err := r.db.Where("account_id = ?", accountID).
		Order("credited_on DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *LedgerRepository) ListCommissions(accountID uint, limit, offset int) ([]models.Commission, error) {
	var list []models.Commission
	err := r.db.Where("account_id = ?", accountID).
		Order("credited_on DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
