package repository

import (
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetActiveByID(id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.Where("id = ? AND status = ?", id, domain.PlanStatusActive).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) ListActive() ([]models.Plan, error) {
	var list []models.Plan
	err := r.db.Where("status = ?", domain.PlanStatusActive).Order("id ASC").Find(&list).Error
	return list, err
}
