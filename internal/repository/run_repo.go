package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

// ErrRunExists signals that the run marker for a date was already written,
// by this process or a concurrent one.
var ErrRunExists = errors.New("settlement run already recorded for date")

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) GetByDate(date string) (*models.SettlementRun, error) {
	var run models.SettlementRun
	if err := r.db.Where("run_date = ?", date).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Create inserts the run marker. The unique index on run_date makes this the
// single point of mutual exclusion between concurrent triggers; a duplicate
// insert comes back as ErrRunExists.
func (r *RunRepository) Create(run *models.SettlementRun) error {
	if err := r.db.Create(run).Error; err != nil {
		if isDuplicateOn(err, "run_date") {
			return ErrRunExists
		}
		return err
	}
	return nil
}

func (r *RunRepository) List(limit, offset int) ([]models.SettlementRun, error) {
	var list []models.SettlementRun
	err := r.db.Order("run_date DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
