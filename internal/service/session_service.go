package service

import (
	"time"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/util"
	"edu_placement_backend/pkg/logger"
	"edu_placement_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionService struct {
	Sessions sessionStore
	Exams    examStore
	Cfg      *config.Config
	now      func() time.Time
}

func NewSessionService(sessions sessionStore, exams examStore, cfg *config.Config) *SessionService {
	return &SessionService{
		Sessions: sessions,
		Exams:    exams,
		Cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SessionView is the session plus its server-computed timer state. Expiry is
// recomputed from (now - startedAt) on every request; a client-reported
// remaining time is never trusted.
type SessionView struct {
	Session          *model.StudentSession `json:"session"`
	TimerMinutes     int                   `json:"timerMinutes"`
	IsExpired        bool                  `json:"isExpired"`
	InGracePeriod    bool                  `json:"inGracePeriod"`
	RemainingSeconds int                   `json:"remainingSeconds"`
	CanAcceptAnswers bool                  `json:"canAcceptAnswers"`
	TotalQuestions   int                   `json:"totalQuestions"`
}

func (s *SessionService) GetSession(userID, sessionID uint) (*SessionView, error) {
	session, exam, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	count, err := s.Exams.CountQuestions(exam.ID)
	if err != nil {
		return nil, err
	}
	return s.view(session, exam, int(count)), nil
}

func (s *SessionService) view(session *model.StudentSession, exam *model.Exam, totalQuestions int) *SessionView {
	now := s.now()
	grace := s.Cfg.Engine.GracePeriod()
	return &SessionView{
		Session:          session,
		TimerMinutes:     exam.TimerMinutes,
		IsExpired:        session.IsExpired(exam.TimerMinutes, now),
		InGracePeriod:    session.InGracePeriod(exam.TimerMinutes, grace, now),
		RemainingSeconds: session.RemainingSeconds(exam.TimerMinutes, now),
		CanAcceptAnswers: session.CanAcceptAnswers(exam.TimerMinutes, grace, now),
		TotalQuestions:   totalQuestions,
	}
}

// SubmitAnswer grades and stores one answer. Submissions are accepted while
// the session is in progress and the timer (plus grace window) allows;
// resubmitting a question overwrites the earlier answer.
func (s *SessionService) SubmitAnswer(userID, sessionID uint, questionNumber int, rawAnswer string) (*model.StudentAnswer, error) {
	session, exam, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}

	count, err := s.Exams.CountQuestions(exam.ID)
	if err != nil {
		return nil, err
	}
	if questionNumber < 1 || questionNumber > int(count) {
		return nil, util.ErrInvalidQuestion
	}

	if !session.CanAcceptAnswers(exam.TimerMinutes, s.Cfg.Engine.GracePeriod(), s.now()) {
		return nil, util.ErrSessionClosed
	}

	question, err := s.Exams.FindQuestion(exam.ID, questionNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrInvalidQuestion
		}
		return nil, err
	}

	spec, err := model.DecodeAnswerSpec(question.QuestionType, question.CorrectAnswer, question.OptionsCount)
	if err != nil {
		// A key that no longer decodes is an authoring defect; keep the
		// submission and park it for manual grading instead of rejecting.
		logger.Log.Error("Undecodable answer key, answer parked for manual grading",
			zap.Uint("questionId", question.ID), zap.Error(err))
		answer := &model.StudentAnswer{
			SessionID:      session.ID,
			QuestionID:     question.ID,
			QuestionNumber: questionNumber,
			RawAnswer:      rawAnswer,
			NeedsManual:    true,
		}
		if err := s.Sessions.UpsertAnswer(answer); err != nil {
			return nil, err
		}
		return answer, nil
	}

	result := GradeAnswer(spec, rawAnswer, question.Points)
	answer := &model.StudentAnswer{
		SessionID:      session.ID,
		QuestionID:     question.ID,
		QuestionNumber: questionNumber,
		RawAnswer:      rawAnswer,
		IsCorrect:      result.IsCorrect,
		PointsEarned:   result.PointsEarned,
		NeedsManual:    result.NeedsManual,
		NeedsReview:    result.NeedsReview,
	}
	if err := s.Sessions.UpsertAnswer(answer); err != nil {
		return nil, err
	}

	if result.NeedsReview && !session.NeedsReview {
		session.NeedsReview = true
		if err := s.Sessions.Update(session); err != nil {
			return nil, err
		}
		monitoring.HeuristicReviews.Inc()
		logger.Log.Warn("Ambiguous short-answer key graded heuristically, session flagged for review",
			zap.Uint("sessionId", session.ID), zap.Uint("questionId", question.ID))
	}

	monitoring.AnswersGraded.WithLabelValues(string(question.QuestionType)).Inc()
	return answer, nil
}

// ScoreSummary is the completion record returned to the student.
type ScoreSummary struct {
	SessionID       uint       `json:"sessionId"`
	TotalScore      float64    `json:"totalScore"`
	TotalPossible   float64    `json:"totalPossible"`
	PercentageScore float64    `json:"percentageScore"`
	NeedsManual     bool       `json:"needsManual"`
	NeedsReview     bool       `json:"needsReview"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// CompleteSession closes the session, freezes all timer math and runs the
// scoring aggregator synchronously. The client's view of the timer and its
// unsaved-answer count are recorded for audit, not trusted for anything.
func (s *SessionService) CompleteSession(userID, sessionID uint, timerExpired bool, unsavedAnswerCount int) (*ScoreSummary, error) {
	session, exam, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, util.ErrSessionAlreadyCompleted
	}

	questions, err := s.Exams.GetQuestions(exam.ID)
	if err != nil {
		return nil, err
	}
	decoded := decodeQuestions(questions)
	answers, err := s.Sessions.GetAnswers(session.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Status = model.SessionCompleted
	session.CompletedAt = &now
	session.TimerExpiredFlag = timerExpired
	session.UnsavedAnswerCount = unsavedAnswerCount
	applyScore(session, decoded, answers)

	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}
	return s.summary(session), nil
}

// GetResult returns the score summary of a completed session.
func (s *SessionService) GetResult(userID, sessionID uint) (*ScoreSummary, error) {
	session, _, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionCompleted {
		return nil, util.ErrSessionNotFound
	}
	return s.summary(session), nil
}

func (s *SessionService) summary(session *model.StudentSession) *ScoreSummary {
	return &ScoreSummary{
		SessionID:       session.ID,
		TotalScore:      session.TotalScore,
		TotalPossible:   session.TotalPossible,
		PercentageScore: session.PercentageScore,
		NeedsManual:     session.NeedsManual,
		NeedsReview:     session.NeedsReview,
		CompletedAt:     session.CompletedAt,
	}
}

// RecalculateSessions re-grades every answer of every session of an exam
// against the current question definitions and recomputes totals. This is
// the explicit operation behind point or key edits; nothing re-grades
// implicitly. Manually-assigned grades survive recalculation.
func (s *SessionService) RecalculateSessions(examID uint) (int, error) {
	questions, err := s.Exams.GetQuestions(examID)
	if err != nil {
		return 0, err
	}
	decoded := decodeQuestions(questions)

	sessions, err := s.Sessions.ListByExam(examID)
	if err != nil {
		return 0, err
	}

	recalculated := 0
	for i := range sessions {
		session := &sessions[i]
		answers, err := s.Sessions.GetAnswers(session.ID)
		if err != nil {
			return recalculated, err
		}
		for j := range answers {
			answer := &answers[j]
			eq, ok := decoded[answer.QuestionID]
			if !ok {
				continue
			}
			// A human verdict outranks the machine; only auto grades move.
			if manuallyResolved(eq.spec, answer) {
				continue
			}
			if eq.spec == nil {
				continue
			}
			result := GradeAnswer(eq.spec, answer.RawAnswer, eq.q.Points)
			answer.IsCorrect = result.IsCorrect
			answer.PointsEarned = result.PointsEarned
			answer.NeedsManual = result.NeedsManual
			answer.NeedsReview = result.NeedsReview
			if err := s.Sessions.UpdateAnswer(answer); err != nil {
				return recalculated, err
			}
		}
		if session.Status == model.SessionCompleted {
			applyScore(session, decoded, answers)
			if err := s.Sessions.Update(session); err != nil {
				return recalculated, err
			}
		}
		recalculated++
	}

	logger.Log.Info("Recalculated exam sessions",
		zap.Uint("examId", examID), zap.Int("sessions", recalculated))
	return recalculated, nil
}

// manuallyResolved reports whether an answer's points came from a human
// grader: manual-only question types that are no longer pending.
func manuallyResolved(spec *model.AnswerSpec, answer *model.StudentAnswer) bool {
	if spec == nil {
		return !answer.NeedsManual && answer.PointsEarned != nil
	}
	needsHuman := spec.Type == model.QuestionLong
	if spec.Type == model.QuestionMixed {
		for _, sub := range spec.Subs {
			if sub.Type == model.SubLongAnswer {
				needsHuman = true
				break
			}
		}
	}
	return needsHuman && !answer.NeedsManual && answer.PointsEarned != nil
}

// Abandon marks an in-progress session abandoned; completed sessions are
// left untouched.
func (s *SessionService) Abandon(userID, sessionID uint) error {
	session, _, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionInProgress {
		return nil
	}
	session.Status = model.SessionAbandoned
	return s.Sessions.Update(session)
}

func (s *SessionService) loadOwned(userID, sessionID uint) (*model.StudentSession, *model.Exam, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrSessionNotFound
		}
		return nil, nil, err
	}
	if userID > 0 && session.UserID != userID {
		return nil, nil, util.ErrSessionNotFound
	}
	exam, err := s.Exams.FindByID(session.ExamID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrExamNotFound
		}
		return nil, nil, err
	}
	return session, exam, nil
}
