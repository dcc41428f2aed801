package service

import (
	"time"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/util"
	"edu_placement_backend/pkg/logger"
	"edu_placement_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type adjustmentStore interface {
	Create(adj *model.DifficultyAdjustment) error
	ListBySession(sessionID uint) ([]model.DifficultyAdjustment, error)
}

// DifficultyService resolves "easier / harder" requests against the global
// difficulty ordering and opens a replacement session at the adjacent level.
type DifficultyService struct {
	Sessions    sessionStore
	Exams       examStore
	Adjustments adjustmentStore
	Cache       *ReferenceCache
	now         func() time.Time
}

func NewDifficultyService(sessions sessionStore, exams examStore, adjustments adjustmentStore, cache *ReferenceCache) *DifficultyService {
	return &DifficultyService{
		Sessions:    sessions,
		Exams:       exams,
		Adjustments: adjustments,
		Cache:       cache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AdjustmentResult reports one resolver invocation: the audit row plus the
// replacement session when one was opened.
type AdjustmentResult struct {
	Adjustment *model.DifficultyAdjustment `json:"adjustment"`
	NewSession *model.StudentSession       `json:"newSession,omitempty"`
	NewExam    *model.Exam                 `json:"newExam,omitempty"`
}

// RequestChange moves the student one step easier (delta -1) or harder (+1)
// along the difficulty ordering. Every invocation writes one audit row,
// including failures: a request at the boundary, or toward a level with no
// published exam, records ToLevelID nil and returns ErrNoAlternateAvailable.
// The step is always taken from the session's original placed level, so
// repeated requests from the same session do not compound.
func (s *DifficultyService) RequestChange(userID, sessionID uint, delta int, decisionPoint model.DecisionPoint) (*AdjustmentResult, error) {
	if delta != -1 && delta != 1 {
		return nil, util.ErrNoAlternateAvailable
	}
	if !decisionPoint.Valid() {
		return nil, util.ErrNoAlternateAvailable
	}

	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if userID > 0 && session.UserID != userID {
		return nil, util.ErrSessionNotFound
	}

	snap, err := s.Cache.Snapshot()
	if err != nil {
		return nil, err
	}
	from, ok := snap.LevelsByID[session.OriginalLevelID]
	if !ok {
		return nil, util.ErrLevelNotFound
	}

	adj := &model.DifficultyAdjustment{
		SessionID:     session.ID,
		FromLevelID:   from.ID,
		Delta:         delta,
		DecisionPoint: decisionPoint,
	}

	target, ok := snap.LevelsByDifficulty[from.InternalDifficulty+delta]
	if !ok {
		return s.recordUnavailable(adj, decisionPoint, "no adjacent level",
			zap.Int("fromDifficulty", from.InternalDifficulty), zap.Int("delta", delta))
	}

	exam, err := s.Exams.FindFirstPublishedByLevel(target.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return s.recordUnavailable(adj, decisionPoint, "no published exam at level",
				zap.Uint("targetLevelId", target.ID))
		}
		return nil, err
	}

	// A mid-test switch abandons the running session; its answers stay on
	// record but it will never be scored.
	if decisionPoint == model.DecisionMidTest && session.Status == model.SessionInProgress {
		session.Status = model.SessionAbandoned
		if err := s.Sessions.Update(session); err != nil {
			return nil, err
		}
	}

	newSession := &model.StudentSession{
		UserID:          session.UserID,
		ExamID:          exam.ID,
		OriginalLevelID: target.ID,
		GradeValue:      session.GradeValue,
		RankBucket:      session.RankBucket,
		Status:          model.SessionInProgress,
		StartedAt:       s.now(),
	}
	if err := s.Sessions.Create(newSession); err != nil {
		return nil, err
	}

	adj.ToLevelID = &target.ID
	adj.Accepted = true
	adj.NewSessionID = &newSession.ID
	if err := s.Adjustments.Create(adj); err != nil {
		return nil, err
	}

	monitoring.SessionsCreated.WithLabelValues("adjustment").Inc()
	monitoring.DifficultyRequests.WithLabelValues(string(decisionPoint), "resolved").Inc()
	logger.Log.Info("Difficulty adjustment resolved",
		zap.Uint("sessionId", session.ID),
		zap.Uint("newSessionId", newSession.ID),
		zap.Uint("fromLevelId", from.ID),
		zap.Uint("toLevelId", target.ID),
		zap.Int("delta", delta),
		zap.String("decisionPoint", string(decisionPoint)))

	return &AdjustmentResult{Adjustment: adj, NewSession: newSession, NewExam: exam}, nil
}

func (s *DifficultyService) recordUnavailable(adj *model.DifficultyAdjustment, decisionPoint model.DecisionPoint, reason string, fields ...zap.Field) (*AdjustmentResult, error) {
	if err := s.Adjustments.Create(adj); err != nil {
		return nil, err
	}
	monitoring.DifficultyRequests.WithLabelValues(string(decisionPoint), "unavailable").Inc()
	logger.Log.Info("Difficulty adjustment unavailable: "+reason,
		append(fields, zap.Uint("sessionId", adj.SessionID))...)
	return &AdjustmentResult{Adjustment: adj}, util.ErrNoAlternateAvailable
}

// History lists the audit rows of a session, oldest first.
func (s *DifficultyService) History(sessionID uint) ([]model.DifficultyAdjustment, error) {
	return s.Adjustments.ListBySession(sessionID)
}
