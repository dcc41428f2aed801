package model

import "time"

// StudentAnswer holds one graded answer, unique per (session, question).
// Resubmissions for the same question overwrite the row rather than duplicate
// it, which absorbs double-clicks and network retries. Nil IsCorrect and
// PointsEarned mean "pending manual grading", never zero.
// swagger:model StudentAnswer
type StudentAnswer struct {
	BaseModel
	SessionID      uint     `gorm:"uniqueIndex:idx_session_question;type:bigint unsigned;not null" json:"sessionId"`
	QuestionID     uint     `gorm:"uniqueIndex:idx_session_question;type:bigint unsigned;not null" json:"questionId"`
	QuestionNumber int      `gorm:"not null" json:"questionNumber"`
	RawAnswer      string   `gorm:"type:text" json:"rawAnswer"`
	IsCorrect      *bool    `json:"isCorrect"`
	PointsEarned   *float64 `json:"pointsEarned"`
	NeedsManual    bool     `gorm:"default:false" json:"needsManual"`
	NeedsReview    bool     `gorm:"default:false" json:"needsReview"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}

// ManualGrade is a teacher-assigned score for an answer the engine could not
// auto-grade (long answers, long sub-components of mixed questions).
// swagger:model ManualGrade
type ManualGrade struct {
	BaseModel
	AnswerID uint       `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"answerId"`
	GraderID uint       `gorm:"index;type:bigint unsigned" json:"graderId"`
	Points   float64    `json:"points"`
	Comment  string     `gorm:"type:text" json:"comment"`
	GradedAt *time.Time `json:"gradedAt,omitempty"`
}

func (ManualGrade) TableName() string {
	return "manual_grades"
}
