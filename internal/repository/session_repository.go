package repository

import (
	"edu_placement_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.StudentSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) Update(session *model.StudentSession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.StudentSession, error) {
	var s model.StudentSession
	if err := r.DB.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActiveByUser returns the user's open session, if any. The data model
// does not hard-enforce a single active session; callers apply the policy.
func (r *SessionRepository) FindActiveByUser(userID uint) (*model.StudentSession, error) {
	var s model.StudentSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.SessionInProgress).
		Order("id desc").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListByExam(examID uint) ([]model.StudentSession, error) {
	var sessions []model.StudentSession
	err := r.DB.Where("exam_id = ?", examID).Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ListPendingManual(examID uint) ([]model.StudentSession, error) {
	var sessions []model.StudentSession
	query := r.DB.Where("(needs_manual = ? OR needs_review = ?) AND status = ?",
		true, true, model.SessionCompleted)
	if examID > 0 {
		query = query.Where("exam_id = ?", examID)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

// UpsertAnswer writes an answer with (session, question) uniqueness: a
// concurrent resubmission for the same question overwrites rather than
// duplicates. Returns the stored row.
func (r *SessionRepository) UpsertAnswer(answer *model.StudentAnswer) error {
	var existing model.StudentAnswer
	err := r.DB.Where("session_id = ? AND question_id = ?", answer.SessionID, answer.QuestionID).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing.ID == 0 {
		return r.DB.Create(answer).Error
	}
	existing.RawAnswer = answer.RawAnswer
	existing.IsCorrect = answer.IsCorrect
	existing.PointsEarned = answer.PointsEarned
	existing.NeedsManual = answer.NeedsManual
	existing.NeedsReview = answer.NeedsReview
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	*answer = existing
	return nil
}

func (r *SessionRepository) UpdateAnswer(answer *model.StudentAnswer) error {
	return r.DB.Save(answer).Error
}

func (r *SessionRepository) GetAnswers(sessionID uint) ([]model.StudentAnswer, error) {
	var answers []model.StudentAnswer
	err := r.DB.Where("session_id = ?", sessionID).Order("question_number asc").Find(&answers).Error
	return answers, err
}

func (r *SessionRepository) FindAnswerByID(id uint) (*model.StudentAnswer, error) {
	var a model.StudentAnswer
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *SessionRepository) SaveManualGrade(grade *model.ManualGrade) error {
	var existing model.ManualGrade
	err := r.DB.Where("answer_id = ?", grade.AnswerID).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing.ID == 0 {
		return r.DB.Create(grade).Error
	}
	existing.Points = grade.Points
	existing.Comment = grade.Comment
	existing.GraderID = grade.GraderID
	existing.GradedAt = grade.GradedAt
	return r.DB.Save(&existing).Error
}

// ExamStats mirrors the attempt statistics the teacher dashboard shows.
type ExamStats struct {
	TotalSessions  int64   `json:"totalSessions"`
	CompletedCount int64   `json:"completedCount"`
	AvgPercentage  float64 `json:"avgPercentage"`
}

func (r *SessionRepository) StatsByExam(examID uint) (*ExamStats, error) {
	stats := &ExamStats{}
	base := r.DB.Model(&model.StudentSession{}).Where("exam_id = ?", examID)
	if err := base.Count(&stats.TotalSessions).Error; err != nil {
		return nil, err
	}
	completed := r.DB.Model(&model.StudentSession{}).
		Where("exam_id = ? AND status = ?", examID, model.SessionCompleted)
	if err := completed.Count(&stats.CompletedCount).Error; err != nil {
		return nil, err
	}
	if stats.CompletedCount > 0 {
		if err := completed.Select("AVG(percentage_score)").Scan(&stats.AvgPercentage).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
