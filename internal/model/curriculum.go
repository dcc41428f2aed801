package model

// swagger:model Program
type Program struct {
	BaseModel
	Name        string `gorm:"size:100;not null;unique" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Program) TableName() string {
	return "programs"
}

// swagger:model SubProgram
type SubProgram struct {
	BaseModel
	ProgramID   uint   `gorm:"index;type:bigint unsigned" json:"programId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (SubProgram) TableName() string {
	return "sub_programs"
}

// CurriculumLevel is reference data: immutable once any session points at it.
// InternalDifficulty is a total order across the whole hierarchy, not just
// within one sub-program; the difficulty resolver walks it by ±1.
// swagger:model CurriculumLevel
type CurriculumLevel struct {
	BaseModel
	SubProgramID       uint   `gorm:"index;type:bigint unsigned" json:"subProgramId"`
	LevelNumber        int    `gorm:"not null" json:"levelNumber"`
	InternalDifficulty int    `gorm:"uniqueIndex;not null" json:"internalDifficulty"`
	Name               string `gorm:"size:100" json:"name"`
}

func (CurriculumLevel) TableName() string {
	return "curriculum_levels"
}
