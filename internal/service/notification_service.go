package service

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
)

// NotificationService is the best-effort sink for "credit happened" events.
// Failures are logged and swallowed; they must never surface into settlement.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) notify(accountID uint, kind, title, body string, data models.Metadata) {
	if s == nil || s.repo == nil {
		return
	}
	err := s.repo.Create(&models.Notification{
		AccountID: accountID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Data:      data,
	})
	if err != nil {
		log.Printf("[notify] account %d %s: %v", accountID, kind, err)
	}
}

// NotifyROICredit records the daily-return credit event for the investor.
func (s *NotificationService) NotifyROICredit(accountID uint, amount decimal.Decimal, investmentID uint) {
	s.notify(accountID, domain.NotifKindROI, "Daily return credited",
		fmt.Sprintf("₹%s credited from investment #%d", amount.StringFixed(2), investmentID),
		models.Metadata{"amount": amount.StringFixed(2), "investment_id": investmentID})
}

// NotifyReferralCommission records a commission credit event for an upstream
// referrer.
func (s *NotificationService) NotifyReferralCommission(accountID uint, amount decimal.Decimal, investmentID uint, level int) {
	s.notify(accountID, domain.NotifKindReferral, "Referral commission earned",
		fmt.Sprintf("₹%s level %d commission from investment #%d", amount.StringFixed(2), level, investmentID),
		models.Metadata{"amount": amount.StringFixed(2), "investment_id": investmentID, "level": level})
}
