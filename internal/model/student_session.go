package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// StudentSession is one test attempt. OriginalLevelID is frozen at creation
// and anchors all difficulty math for the attempt, even if the curriculum is
// edited later. Timer state is never stored; it is recomputed from StartedAt
// on every request using the same UTC clock basis StartedAt was written with.
// swagger:model StudentSession
type StudentSession struct {
	BaseModel
	UserID             uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	ExamID             uint          `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	OriginalLevelID    uint          `gorm:"type:bigint unsigned;not null" json:"originalLevelId"`
	GradeValue         int           `json:"gradeValue"`
	RankBucket         RankBucket    `gorm:"size:20" json:"rankBucket"`
	PlacedByFallback   bool          `gorm:"default:false" json:"placedByFallback"`
	Status             SessionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt          time.Time     `gorm:"not null" json:"startedAt"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
	TotalScore         float64       `json:"totalScore"`
	TotalPossible      float64       `json:"totalPossible"`
	PercentageScore    float64       `json:"percentageScore"`
	NeedsManual        bool          `gorm:"default:false" json:"needsManual"`
	NeedsReview        bool          `gorm:"default:false" json:"needsReview"` // ambiguous-delimiter heuristic fired
	TimerExpiredFlag   bool          `gorm:"default:false" json:"timerExpiredFlag"`
	UnsavedAnswerCount int           `gorm:"default:0" json:"unsavedAnswerCount"`
}

func (StudentSession) TableName() string {
	return "student_sessions"
}

// IsExpired reports whether the exam timer has run out. Untimed exams
// (timerMinutes == 0) never expire.
func (s *StudentSession) IsExpired(timerMinutes int, now time.Time) bool {
	if timerMinutes <= 0 {
		return false
	}
	return now.Sub(s.StartedAt) > time.Duration(timerMinutes)*time.Minute
}

// RemainingSeconds is the server-computed countdown; 0 once expired, and 0
// for untimed exams by convention (the caller checks timerMinutes first).
func (s *StudentSession) RemainingSeconds(timerMinutes int, now time.Time) int {
	if timerMinutes <= 0 {
		return 0
	}
	remaining := time.Duration(timerMinutes)*time.Minute - now.Sub(s.StartedAt)
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// InGracePeriod reports whether the session is past expiry but still inside
// the configured grace window.
func (s *StudentSession) InGracePeriod(timerMinutes int, grace time.Duration, now time.Time) bool {
	if timerMinutes <= 0 {
		return false
	}
	elapsed := now.Sub(s.StartedAt)
	limit := time.Duration(timerMinutes) * time.Minute
	return elapsed > limit && elapsed <= limit+grace
}

// CanAcceptAnswers is the single gate for answer intake: the session must be
// open and either not expired or still within the grace window.
func (s *StudentSession) CanAcceptAnswers(timerMinutes int, grace time.Duration, now time.Time) bool {
	if s.Status != SessionInProgress {
		return false
	}
	if !s.IsExpired(timerMinutes, now) {
		return true
	}
	return s.InGracePeriod(timerMinutes, grace, now)
}
