package repository

import (
	"edu_placement_backend/internal/model"

	"gorm.io/gorm"
)

type AdjustmentRepository struct {
	DB *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) *AdjustmentRepository {
	return &AdjustmentRepository{DB: db}
}

// Create appends an audit row. Adjustments are never updated or deleted.
func (r *AdjustmentRepository) Create(adj *model.DifficultyAdjustment) error {
	return r.DB.Create(adj).Error
}

func (r *AdjustmentRepository) ListBySession(sessionID uint) ([]model.DifficultyAdjustment, error) {
	var adjustments []model.DifficultyAdjustment
	err := r.DB.Where("session_id = ?", sessionID).Order("id asc").Find(&adjustments).Error
	return adjustments, err
}
