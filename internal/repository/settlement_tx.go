package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

// SettlementTx is the transaction handle handed to a settlement unit-of-work.
// It exposes exactly the writes one investment's settlement needs, so the
// unit-of-work cannot reach arbitrary tables and every mutation stays inside
// the enclosing transaction.
type SettlementTx struct {
	tx *gorm.DB
}

// InSettlementTx runs fn inside a single database transaction. Any error
// from fn rolls the whole unit back.
func InSettlementTx(ctx context.Context, db *gorm.DB, fn func(tx *SettlementTx) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SettlementTx{tx: tx})
	})
}

// InvestmentForUpdate re-reads an investment inside the transaction, taking a
// row lock where the dialect supports it. This is the guard against two runs
// settling the same investment concurrently.
func (s *SettlementTx) InvestmentForUpdate(id uint) (*models.Investment, error) {
	q := s.tx
	if s.tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var inv models.Investment
	if err := q.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *SettlementTx) AccountByID(id uint) (*models.Account, error) {
	var acc models.Account
	if err := s.tx.First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// AccountByReferralCode resolves a referral chain link. A missing account is
// not an error: it returns (nil, nil) so the commission walk can stop cleanly
// at a broken chain.
func (s *SettlementTx) AccountByReferralCode(code string) (*models.Account, error) {
	var acc models.Account
	err := s.tx.Where("referral_code = ?", code).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreditAccount bumps balance and lifetime earnings in one atomic UPDATE.
// Never read-modify-write: concurrent units crediting the same upstream
// referrer must not lose updates.
func (s *SettlementTx) CreditAccount(accountID uint, amount decimal.Decimal) error {
	res := s.tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", amount),
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("credit account %d: no such account", accountID)
	}
	return nil
}

func (s *SettlementTx) AppendCreditHistory(h *models.CreditHistory) error {
	return s.tx.Create(h).Error
}

func (s *SettlementTx) AppendTransaction(t *models.Transaction) error {
	return s.tx.Create(t).Error
}

func (s *SettlementTx) AppendCommission(c *models.Commission) error {
	return s.tx.Create(c).Error
}

// SaveSettledInvestment persists the term advance for a settled investment:
// days remaining, cumulative earned, last credit date and lifecycle status.
func (s *SettlementTx) SaveSettledInvestment(inv *models.Investment) error {
	return s.tx.Model(&models.Investment{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"days_remaining":   inv.DaysRemaining,
			"total_earned":     inv.TotalEarned,
			"last_credited_on": inv.LastCreditedOn,
			"status":           inv.Status,
		}).Error
}
