package repository

import (
	"edu_placement_backend/internal/model"

	"gorm.io/gorm"
)

type PlacementRuleRepository struct {
	DB *gorm.DB
}

func NewPlacementRuleRepository(db *gorm.DB) *PlacementRuleRepository {
	return &PlacementRuleRepository{DB: db}
}

// ListAll returns every rule in deterministic match order: priority desc,
// then id asc. The matcher relies on this ordering for tie-breaks.
func (r *PlacementRuleRepository) ListAll() ([]model.PlacementRule, error) {
	var rules []model.PlacementRule
	err := r.DB.Order("priority desc, id asc").Find(&rules).Error
	return rules, err
}

// Create appends a rule. Rules are never updated or deleted.
func (r *PlacementRuleRepository) Create(rule *model.PlacementRule) error {
	return r.DB.Create(rule).Error
}
