package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

var ErrReferrerNotFound = errors.New("referrer code does not exist")

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// generateReferralCode returns an 8-character lowercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create inserts an account with a freshly generated unique referral code.
// When referredBy is non-empty it must resolve to an existing account.
func (r *AccountRepository) Create(name, email string, referredBy string) (*models.Account, error) {
	var refPtr *string
	if referredBy != "" {
		if _, err := r.GetByReferralCode(referredBy); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReferrerNotFound
			}
			return nil, err
		}
		refPtr = &referredBy
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		acc := &models.Account{Name: name, Email: email, ReferralCode: code, ReferredBy: refPtr}
		if err := r.db.Create(acc).Error; err == nil {
			return acc, nil
		} else if !isDuplicateOn(err, "referral_code") {
			return nil, err
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique referral code after retries")
}

func (r *AccountRepository) GetByID(id uint) (*models.Account, error) {
	var acc models.Account
	if err := r.db.First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) GetByReferralCode(code string) (*models.Account, error) {
	var acc models.Account
	if err := r.db.Where("referral_code = ?", code).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// isDuplicateOn reports whether err is a unique-constraint violation on the
// given column. The hint keeps email conflicts from being retried as code
// collisions.
func isDuplicateOn(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, column) {
		return errors.Is(err, gorm.ErrDuplicatedKey)
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(strings.ToUpper(msg), "UNIQUE") // sqlite
}
