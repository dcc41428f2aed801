package repository

import (
	"edu_placement_backend/internal/model"

	"gorm.io/gorm"
)

type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

func (r *CurriculumRepository) ListPrograms() ([]model.Program, error) {
	var programs []model.Program
	err := r.DB.Order("`order` asc").Find(&programs).Error
	return programs, err
}

func (r *CurriculumRepository) ListSubPrograms(programID uint) ([]model.SubProgram, error) {
	var subs []model.SubProgram
	query := r.DB.Order("`order` asc")
	if programID > 0 {
		query = query.Where("program_id = ?", programID)
	}
	err := query.Find(&subs).Error
	return subs, err
}

// ListLevels returns the whole hierarchy ordered by the global difficulty
// rank; this is the load path for the reference cache.
func (r *CurriculumRepository) ListLevels() ([]model.CurriculumLevel, error) {
	var levels []model.CurriculumLevel
	err := r.DB.Order("internal_difficulty asc").Find(&levels).Error
	return levels, err
}

func (r *CurriculumRepository) FindLevelByID(id uint) (*model.CurriculumLevel, error) {
	var level model.CurriculumLevel
	if err := r.DB.First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *CurriculumRepository) CreateProgram(p *model.Program) error {
	return r.DB.Create(p).Error
}

func (r *CurriculumRepository) CreateSubProgram(sp *model.SubProgram) error {
	return r.DB.Create(sp).Error
}

func (r *CurriculumRepository) CreateLevel(level *model.CurriculumLevel) error {
	return r.DB.Create(level).Error
}
