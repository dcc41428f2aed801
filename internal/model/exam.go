package model

type QuestionType string

const (
	QuestionMCQ      QuestionType = "mcq"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionShort    QuestionType = "short"
	QuestionLong     QuestionType = "long"
	QuestionMixed    QuestionType = "mixed"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionCheckbox, QuestionShort, QuestionLong, QuestionMixed:
		return true
	}
	return false
}

// swagger:model Exam
type Exam struct {
	BaseModel
	LevelID      uint   `gorm:"index;type:bigint unsigned;not null" json:"levelId"`
	CreatorID    uint   `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	TimerMinutes int    `gorm:"default:0" json:"timerMinutes"` // 0 = untimed
	AudioURL     string `gorm:"size:255" json:"audioUrl"`
	PDFURL       string `gorm:"size:255" json:"pdfUrl"`
	IsPublished  bool   `gorm:"default:false" json:"isPublished"`
}

func (Exam) TableName() string {
	return "exams"
}

// swagger:model ExamQuestion
type ExamQuestion struct {
	BaseModel
	ExamID         uint         `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	QuestionNumber int          `gorm:"not null" json:"questionNumber"` // unique within exam, defines order
	QuestionType   QuestionType `gorm:"size:20;not null" json:"questionType"`
	Prompt         string       `gorm:"type:text" json:"prompt"`
	CorrectAnswer  string       `gorm:"type:text" json:"correctAnswer"` // encoding depends on QuestionType
	Points         int          `gorm:"default:1" json:"points"`        // 1..10
	OptionsCount   int          `gorm:"default:0" json:"optionsCount"`  // valid option letters A..OptionsCount
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
