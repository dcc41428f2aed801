package model

type RankBucket string

const (
	RankTop10     RankBucket = "top_10"
	RankTop20     RankBucket = "top_20"
	RankTop30     RankBucket = "top_30"
	RankTop40     RankBucket = "top_40"
	RankTop50Plus RankBucket = "top_50_plus"
)

func (b RankBucket) Valid() bool {
	switch b {
	case RankTop10, RankTop20, RankTop30, RankTop40, RankTop50Plus:
		return true
	}
	return false
}

// PlacementRule maps (grade, rank bucket) to an initial curriculum level.
// Rules are append-only reference data; when several rows match the same pair,
// the highest priority wins, then the lowest rule id.
// swagger:model PlacementRule
type PlacementRule struct {
	BaseModel
	GradeValue    int        `gorm:"index;not null" json:"gradeValue"`
	RankBucket    RankBucket `gorm:"size:20;index;not null" json:"rankBucket"`
	TargetLevelID uint       `gorm:"type:bigint unsigned;not null" json:"targetLevelId"`
	Priority      int        `gorm:"default:0" json:"priority"`
}

func (PlacementRule) TableName() string {
	return "placement_rules"
}
