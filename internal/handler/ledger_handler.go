package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
)

// LedgerHandler serves the earnings read surface: transactions and credit
// history are the stable contract dashboards read from.
type LedgerHandler struct {
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewLedgerHandler(accountRepo *repository.AccountRepository, ledgerRepo *repository.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

func accountID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return 0, false
	}
	return uint(id), true
}

// GetAccount handles GET /accounts/:id — the earnings snapshot.
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	acc, err := h.accountRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}
	c.JSON(http.StatusOK, acc)
}

// ListTransactions handles GET /accounts/:id/transactions?type=ROI.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	list, err := h.ledgerRepo.ListTransactions(id, c.Query("type"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// ListCreditHistory handles GET /accounts/:id/credit-history.
func (h *LedgerHandler) ListCreditHistory(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	list, err := h.ledgerRepo.ListCreditHistory(id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list credit history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_history": list})
}

// ListCommissions handles GET /accounts/:id/commissions.
func (h *LedgerHandler) ListCommissions(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	list, err := h.ledgerRepo.ListCommissions(id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list commissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}
