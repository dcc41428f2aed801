package service

import (
	"fmt"
	"time"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/repository"
	"edu_placement_backend/internal/util"
	"edu_placement_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type examAdminStore interface {
	examStore
	Create(exam *model.Exam) error
	Update(exam *model.Exam) error
	ListByLevel(levelID uint) ([]model.Exam, error)
	CreateQuestions(questions []model.ExamQuestion) error
	CreateQuestion(q *model.ExamQuestion) error
	UpdateQuestion(q *model.ExamQuestion) error
	DeleteQuestionByID(id uint) error
}

type sessionStatsStore interface {
	sessionStore
	StatsByExam(examID uint) (*repository.ExamStats, error)
}

// ExamService covers the authoring side: exam and question CRUD, manual
// grading and per-exam statistics.
type ExamService struct {
	Exams    examAdminStore
	Sessions sessionStatsStore
	Cache    *ReferenceCache
	Cfg      *config.Config
	now      func() time.Time
}

func NewExamService(exams examAdminStore, sessions sessionStatsStore, cache *ReferenceCache, cfg *config.Config) *ExamService {
	return &ExamService{
		Exams:    exams,
		Sessions: sessions,
		Cache:    cache,
		Cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// QuestionInput is one authored question; numbering follows input order.
type QuestionInput struct {
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Prompt        string             `json:"prompt"`
	CorrectAnswer string             `json:"correctAnswer"`
	Points        int                `json:"points" binding:"required"`
	OptionsCount  int                `json:"optionsCount"`
}

type ExamInput struct {
	LevelID      uint            `json:"levelId" binding:"required"`
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	TimerMinutes int             `json:"timerMinutes"`
	AudioURL     string          `json:"audioUrl"`
	PDFURL       string          `json:"pdfUrl"`
	IsPublished  bool            `json:"isPublished"`
	Questions    []QuestionInput `json:"questions"`
}

func (s *ExamService) validateQuestion(in *QuestionInput) error {
	if !in.QuestionType.Valid() {
		return fmt.Errorf("unknown question type %q", in.QuestionType)
	}
	if in.Points < util.MinQuestionPoints || in.Points > util.MaxQuestionPoints {
		return fmt.Errorf("points must be between %d and %d", util.MinQuestionPoints, util.MaxQuestionPoints)
	}
	if in.OptionsCount < 0 || in.OptionsCount > s.Cfg.Engine.MaxOptionsCount {
		return fmt.Errorf("optionsCount must be between 0 and %d", s.Cfg.Engine.MaxOptionsCount)
	}
	// The key must decode now; a key that only fails at grading time would
	// park every submission for manual review.
	if _, err := model.DecodeAnswerSpec(in.QuestionType, in.CorrectAnswer, in.OptionsCount); err != nil {
		return fmt.Errorf("invalid answer key: %w", err)
	}
	return nil
}

func (s *ExamService) CreateExam(creatorID uint, in *ExamInput) (*model.Exam, error) {
	snap, err := s.Cache.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, ok := snap.LevelsByID[in.LevelID]; !ok {
		return nil, util.ErrLevelNotFound
	}
	for i := range in.Questions {
		if err := s.validateQuestion(&in.Questions[i]); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	exam := &model.Exam{
		LevelID:      in.LevelID,
		CreatorID:    creatorID,
		Title:        in.Title,
		Description:  in.Description,
		TimerMinutes: in.TimerMinutes,
		AudioURL:     in.AudioURL,
		PDFURL:       in.PDFURL,
		IsPublished:  in.IsPublished,
	}
	if err := s.Exams.Create(exam); err != nil {
		return nil, err
	}

	if len(in.Questions) > 0 {
		questions := make([]model.ExamQuestion, 0, len(in.Questions))
		for i, q := range in.Questions {
			questions = append(questions, model.ExamQuestion{
				ExamID:         exam.ID,
				QuestionNumber: i + 1,
				QuestionType:   q.QuestionType,
				Prompt:         q.Prompt,
				CorrectAnswer:  q.CorrectAnswer,
				Points:         q.Points,
				OptionsCount:   q.OptionsCount,
			})
		}
		if err := s.Exams.CreateQuestions(questions); err != nil {
			return nil, err
		}
	}

	logger.Log.Info("Exam created",
		zap.Uint("examId", exam.ID), zap.Uint("levelId", exam.LevelID),
		zap.Int("questions", len(in.Questions)))
	return exam, nil
}

func (s *ExamService) UpdateExam(examID uint, in *ExamInput) (*model.Exam, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	exam.Title = in.Title
	exam.Description = in.Description
	exam.TimerMinutes = in.TimerMinutes
	exam.AudioURL = in.AudioURL
	exam.PDFURL = in.PDFURL
	exam.IsPublished = in.IsPublished
	if err := s.Exams.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

type ExamDetail struct {
	Exam      *model.Exam          `json:"exam"`
	Questions []model.ExamQuestion `json:"questions"`
}

// GetExam returns the exam with questions. When forStudent is set, answer
// keys are stripped before the payload leaves the service.
func (s *ExamService) GetExam(examID uint, forStudent bool) (*ExamDetail, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Exams.GetQuestions(examID)
	if err != nil {
		return nil, err
	}
	if forStudent {
		if !exam.IsPublished {
			return nil, util.ErrExamNotPublished
		}
		for i := range questions {
			questions[i].CorrectAnswer = ""
		}
	}
	return &ExamDetail{Exam: exam, Questions: questions}, nil
}

func (s *ExamService) ListByLevel(levelID uint) ([]model.Exam, error) {
	return s.Exams.ListByLevel(levelID)
}

// AddQuestion appends a question after the current highest number.
func (s *ExamService) AddQuestion(examID uint, in *QuestionInput) (*model.ExamQuestion, error) {
	if _, err := s.findExam(examID); err != nil {
		return nil, err
	}
	if err := s.validateQuestion(in); err != nil {
		return nil, err
	}
	count, err := s.Exams.CountQuestions(examID)
	if err != nil {
		return nil, err
	}
	q := &model.ExamQuestion{
		ExamID:         examID,
		QuestionNumber: int(count) + 1,
		QuestionType:   in.QuestionType,
		Prompt:         in.Prompt,
		CorrectAnswer:  in.CorrectAnswer,
		Points:         in.Points,
		OptionsCount:   in.OptionsCount,
	}
	if err := s.Exams.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion edits a question in place. Existing sessions keep their
// recorded grades until RecalculateSessions is invoked explicitly.
func (s *ExamService) UpdateQuestion(questionID uint, in *QuestionInput) (*model.ExamQuestion, error) {
	q, err := s.Exams.FindQuestionByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if err := s.validateQuestion(in); err != nil {
		return nil, err
	}
	q.QuestionType = in.QuestionType
	q.Prompt = in.Prompt
	q.CorrectAnswer = in.CorrectAnswer
	q.Points = in.Points
	q.OptionsCount = in.OptionsCount
	if err := s.Exams.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ExamService) DeleteQuestion(questionID uint) error {
	if _, err := s.Exams.FindQuestionByID(questionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}
	return s.Exams.DeleteQuestionByID(questionID)
}

func (s *ExamService) Stats(examID uint) (*repository.ExamStats, error) {
	if _, err := s.findExam(examID); err != nil {
		return nil, err
	}
	return s.Sessions.StatsByExam(examID)
}

func (s *ExamService) PendingManual(examID uint) ([]model.StudentSession, error) {
	return s.Sessions.ListPendingManual(examID)
}

// ManualGradeAnswer records a human grade for the manual portion of an
// answer. The awarded points are added on top of whatever the auto grader
// earned, the pending flag clears, and the session total is refreshed.
func (s *ExamService) ManualGradeAnswer(graderID, answerID uint, points float64, comment string) (*model.StudentAnswer, error) {
	answer, err := s.Sessions.FindAnswerByID(answerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}
	if !answer.NeedsManual {
		return nil, util.ErrAnswerNotGradable
	}

	question, err := s.Exams.FindQuestionByID(answer.QuestionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	spec, err := model.DecodeAnswerSpec(question.QuestionType, question.CorrectAnswer, question.OptionsCount)

	var autoPart, manualShare float64
	if err != nil {
		// Undecodable key: the whole question is graded by hand.
		manualShare = float64(question.Points)
	} else {
		autoPart = autoEarnedPart(spec, answer, question.Points)
		manualShare = TotalPoints(spec, question.Points) - AutoGradablePoints(spec, question.Points)
	}
	if points < 0 || points > manualShare {
		return nil, fmt.Errorf("%w: points must be between 0 and %g", util.ErrAnswerNotGradable, manualShare)
	}

	now := s.now()
	grade := &model.ManualGrade{
		AnswerID: answer.ID,
		GraderID: graderID,
		Points:   points,
		Comment:  comment,
		GradedAt: &now,
	}
	if err := s.Sessions.SaveManualGrade(grade); err != nil {
		return nil, err
	}

	total := autoPart + points
	answer.PointsEarned = &total
	answer.NeedsManual = false
	if err := s.Sessions.UpdateAnswer(answer); err != nil {
		return nil, err
	}

	if err := s.refreshSessionScore(answer.SessionID); err != nil {
		return nil, err
	}
	logger.Log.Info("Answer manually graded",
		zap.Uint("answerId", answer.ID), zap.Uint("graderId", graderID),
		zap.Float64("points", points))
	return answer, nil
}

// autoEarnedPart recomputes what the machine-gradable portion of an answer
// earned, independent of any previously stored total.
func autoEarnedPart(spec *model.AnswerSpec, answer *model.StudentAnswer, questionPoints int) float64 {
	result := GradeAnswer(spec, answer.RawAnswer, questionPoints)
	if result.PointsEarned == nil {
		return 0
	}
	return *result.PointsEarned
}

func (s *ExamService) refreshSessionScore(sessionID uint) error {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionCompleted {
		return nil
	}
	questions, err := s.Exams.GetQuestions(session.ExamID)
	if err != nil {
		return err
	}
	decoded := decodeQuestions(questions)
	answers, err := s.Sessions.GetAnswers(session.ID)
	if err != nil {
		return err
	}
	applyScore(session, decoded, answers)
	return s.Sessions.Update(session)
}

func (s *ExamService) findExam(examID uint) (*model.Exam, error) {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}
