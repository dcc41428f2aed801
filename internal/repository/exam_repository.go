package repository

import (
	"edu_placement_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// FindFirstPublishedByLevel picks the alternate exam for a level.
// Lowest id wins so the difficulty resolver is deterministic among ties.
func (r *ExamRepository) FindFirstPublishedByLevel(levelID uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Where("level_id = ? AND is_published = ?", levelID, true).
		Order("id asc").First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) ListByLevel(levelID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Where("level_id = ?", levelID).Order("id asc").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) GetQuestions(examID uint) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	err := r.DB.Where("exam_id = ?", examID).Order("question_number asc").Find(&questions).Error
	return questions, err
}

func (r *ExamRepository) FindQuestion(examID uint, questionNumber int) (*model.ExamQuestion, error) {
	var q model.ExamQuestion
	err := r.DB.Where("exam_id = ? AND question_number = ?", examID, questionNumber).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ExamRepository) FindQuestionByID(id uint) (*model.ExamQuestion, error) {
	var q model.ExamQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ExamRepository) CountQuestions(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

func (r *ExamRepository) CreateQuestions(questions []model.ExamQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *ExamRepository) CreateQuestion(q *model.ExamQuestion) error {
	return r.DB.Create(q).Error
}

func (r *ExamRepository) UpdateQuestion(q *model.ExamQuestion) error {
	return r.DB.Save(q).Error
}

func (r *ExamRepository) DeleteQuestionByID(id uint) error {
	return r.DB.Delete(&model.ExamQuestion{}, id).Error
}
