package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
)

// AccountHandler is the minimal admin surface for seeding accounts and
// investments. Registration/KYC/payment flows live in the main platform;
// the settlement service only needs enough to stand up ledger state.
type AccountHandler struct {
	accountRepo    *repository.AccountRepository
	investmentRepo *repository.InvestmentRepository
	planRepo       *repository.PlanRepository
}

func NewAccountHandler(
	accountRepo *repository.AccountRepository,
	investmentRepo *repository.InvestmentRepository,
	planRepo *repository.PlanRepository,
) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo, investmentRepo: investmentRepo, planRepo: planRepo}
}

// CreateAccount handles POST /admin/accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		ReferredBy string `json:"referred_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acc, err := h.accountRepo.Create(req.Name, req.Email, req.ReferredBy)
	if err != nil {
		if errors.Is(err, repository.ErrReferrerNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "referrer code does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}
	c.JSON(http.StatusCreated, acc)
}

// CreateInvestment handles POST /admin/investments.
func (h *AccountHandler) CreateInvestment(c *gin.Context) {
	var req struct {
		AccountID uint            `json:"account_id" binding:"required"`
		PlanID    uint            `json:"plan_id" binding:"required"`
		Amount    decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.accountRepo.GetByID(req.AccountID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account not found"})
		return
	}
	plan, err := h.planRepo.GetActiveByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plan"})
		return
	}
	if req.Amount.LessThan(plan.Minimum) || req.Amount.GreaterThan(plan.Maximum) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("amount for %s must be between %s and %s",
				plan.Name, plan.Minimum.StringFixed(2), plan.Maximum.StringFixed(2)),
		})
		return
	}

	inv := &models.Investment{
		AccountID:     req.AccountID,
		PlanID:        plan.ID,
		Amount:        req.Amount,
		DailyReturn:   req.Amount.Mul(plan.DailyPercent).Div(decimal.NewFromInt(100)).Round(2),
		DurationDays:  plan.DurationDays,
		DaysRemaining: plan.DurationDays,
		TotalEarned:   decimal.Zero,
		Status:        domain.InvestmentStatusActive,
		OrderID:       "inv-" + uuid.New().String(),
	}
	if err := h.investmentRepo.Create(inv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create investment"})
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// ListPlans handles GET /plans.
func (h *AccountHandler) ListPlans(c *gin.Context) {
	plans, err := h.planRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// ListInvestments handles GET /accounts/:id/investments.
func (h *AccountHandler) ListInvestments(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	list, err := h.investmentRepo.ListByAccount(id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list investments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"investments": list})
}
