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

type sessionStore interface {
	Create(session *model.StudentSession) error
	Update(session *model.StudentSession) error
	FindByID(id uint) (*model.StudentSession, error)
	FindActiveByUser(userID uint) (*model.StudentSession, error)
	UpsertAnswer(answer *model.StudentAnswer) error
	UpdateAnswer(answer *model.StudentAnswer) error
	GetAnswers(sessionID uint) ([]model.StudentAnswer, error)
	FindAnswerByID(id uint) (*model.StudentAnswer, error)
	SaveManualGrade(grade *model.ManualGrade) error
	ListByExam(examID uint) ([]model.StudentSession, error)
	ListPendingManual(examID uint) ([]model.StudentSession, error)
}

type examStore interface {
	FindByID(id uint) (*model.Exam, error)
	GetQuestions(examID uint) ([]model.ExamQuestion, error)
	FindQuestion(examID uint, questionNumber int) (*model.ExamQuestion, error)
	FindQuestionByID(id uint) (*model.ExamQuestion, error)
	CountQuestions(examID uint) (int64, error)
	FindFirstPublishedByLevel(levelID uint) (*model.Exam, error)
}

type PlacementService struct {
	Sessions sessionStore
	Exams    examStore
	Cache    *ReferenceCache
	Cfg      *config.Config
	now      func() time.Time
}

func NewPlacementService(sessions sessionStore, exams examStore, cache *ReferenceCache, cfg *config.Config) *PlacementService {
	return &PlacementService{
		Sessions: sessions,
		Exams:    exams,
		Cache:    cache,
		Cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Match resolves (grade, rankBucket) to the best placement rule's target
// level. Rules arrive from the cache already ordered priority desc, id asc,
// so the first exact match is the winner. Pure lookup, no side effects.
func (s *PlacementService) Match(grade int, bucket model.RankBucket) (*model.CurriculumLevel, error) {
	snap, err := s.Cache.Snapshot()
	if err != nil {
		return nil, err
	}
	for _, rule := range snap.Rules {
		if rule.GradeValue != grade || rule.RankBucket != bucket {
			continue
		}
		level, ok := snap.LevelsByID[rule.TargetLevelID]
		if !ok {
			return nil, util.ErrLevelNotFound
		}
		return &level, nil
	}
	return nil, util.ErrNoMatchingRule
}

// CreateSession places a student and opens a test session. When no rule
// matches, the configured default level is applied and a warning is logged.
// examOverride skips rule matching entirely (staff assigning a specific
// exam).
func (s *PlacementService) CreateSession(userID uint, grade int, bucket model.RankBucket, examOverride uint) (*model.StudentSession, error) {
	var (
		exam      *model.Exam
		levelID   uint
		placement string
		fallback  bool
	)

	if examOverride > 0 {
		found, err := s.Exams.FindByID(examOverride)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, util.ErrExamNotFound
			}
			return nil, err
		}
		if !found.IsPublished {
			return nil, util.ErrExamNotPublished
		}
		exam = found
		levelID = found.LevelID
		placement = "override"
	} else {
		if !bucket.Valid() {
			return nil, util.ErrNoMatchingRule
		}
		level, err := s.Match(grade, bucket)
		switch err {
		case nil:
			levelID = level.ID
			placement = "rule"
		case util.ErrNoMatchingRule:
			levelID = s.Cfg.Engine.DefaultLevelID
			fallback = true
			placement = "fallback"
			logger.Log.Warn("No placement rule matched, applying default level",
				zap.Int("grade", grade),
				zap.String("rankBucket", string(bucket)),
				zap.Uint("defaultLevelId", levelID))
		default:
			return nil, err
		}

		found, err := s.Exams.FindFirstPublishedByLevel(levelID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, util.ErrExamNotFound
			}
			return nil, err
		}
		exam = found
	}

	// Policy, not schema: one active session per student. An earlier open
	// session is abandoned, never deleted.
	if userID > 0 {
		if active, err := s.Sessions.FindActiveByUser(userID); err == nil {
			active.Status = model.SessionAbandoned
			if err := s.Sessions.Update(active); err != nil {
				return nil, err
			}
			logger.Log.Info("Abandoned previous active session",
				zap.Uint("sessionId", active.ID), zap.Uint("userId", userID))
		}
	}

	session := &model.StudentSession{
		UserID:           userID,
		ExamID:           exam.ID,
		OriginalLevelID:  levelID,
		GradeValue:       grade,
		RankBucket:       bucket,
		PlacedByFallback: fallback,
		Status:           model.SessionInProgress,
		StartedAt:        s.now(), // server clock, never client-supplied
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, err
	}

	monitoring.SessionsCreated.WithLabelValues(placement).Inc()
	return session, nil
}
