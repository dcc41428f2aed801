package model

type DecisionPoint string

const (
	DecisionMidTest    DecisionPoint = "mid_test"
	DecisionPostSubmit DecisionPoint = "post_submit"
	DecisionPostResult DecisionPoint = "post_result"
)

func (p DecisionPoint) Valid() bool {
	switch p {
	case DecisionMidTest, DecisionPostSubmit, DecisionPostResult:
		return true
	}
	return false
}

// DifficultyAdjustment is an append-only audit row, one per resolver
// invocation. ToLevelID is nil when no adjacent level or exam existed.
// The original session is never rewritten by an adjustment.
// swagger:model DifficultyAdjustment
type DifficultyAdjustment struct {
	BaseModel
	SessionID     uint          `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	FromLevelID   uint          `gorm:"type:bigint unsigned;not null" json:"fromLevelId"`
	ToLevelID     *uint         `gorm:"type:bigint unsigned" json:"toLevelId,omitempty"`
	Delta         int           `gorm:"not null" json:"delta"` // -1 or +1
	DecisionPoint DecisionPoint `gorm:"size:20;not null" json:"decisionPoint"`
	Accepted      bool          `gorm:"default:false" json:"accepted"`
	NewSessionID  *uint         `gorm:"type:bigint unsigned" json:"newSessionId,omitempty"`
}

func (DifficultyAdjustment) TableName() string {
	return "difficulty_adjustments"
}
