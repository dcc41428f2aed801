package database

import (
	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Program{},
		&model.SubProgram{},
		&model.CurriculumLevel{},
		&model.PlacementRule{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.StudentSession{},
		&model.StudentAnswer{},
		&model.ManualGrade{},
		&model.DifficultyAdjustment{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedReferenceData(db)

	return db, nil
}

// seedReferenceData inserts a starter curriculum and placement rule set when
// the tables are empty, so a fresh install can place students immediately.
// Rules and levels are append-only after this point.
func seedReferenceData(db *gorm.DB) {
	var programCount int64
	db.Model(&model.Program{}).Count(&programCount)
	if programCount > 0 {
		return
	}

	program := &model.Program{Name: "General English", Order: 1}
	db.Create(program)

	subPrograms := []model.SubProgram{
		{ProgramID: program.ID, Name: "Foundations", Order: 1},
		{ProgramID: program.ID, Name: "Intermediate", Order: 2},
		{ProgramID: program.ID, Name: "Advanced", Order: 3},
	}
	for i := range subPrograms {
		db.Create(&subPrograms[i])
	}

	// InternalDifficulty runs across all sub-programs.
	difficulty := 1
	var levels []model.CurriculumLevel
	for spIdx := range subPrograms {
		for levelNum := 1; levelNum <= 3; levelNum++ {
			level := model.CurriculumLevel{
				SubProgramID:       subPrograms[spIdx].ID,
				LevelNumber:        levelNum,
				InternalDifficulty: difficulty,
				Name:               fmt.Sprintf("%s %d", subPrograms[spIdx].Name, levelNum),
			}
			db.Create(&level)
			levels = append(levels, level)
			difficulty++
		}
	}

	if len(levels) < 9 {
		return
	}

	buckets := []model.RankBucket{
		model.RankTop10, model.RankTop20, model.RankTop30,
		model.RankTop40, model.RankTop50Plus,
	}
	for grade := 1; grade <= 9; grade++ {
		for bIdx, bucket := range buckets {
			// Higher grades and better ranks land on harder levels.
			idx := grade - 1 - bIdx/2
			if idx < 0 {
				idx = 0
			}
			db.Create(&model.PlacementRule{
				GradeValue:    grade,
				RankBucket:    bucket,
				TargetLevelID: levels[idx].ID,
				Priority:      10,
			})
		}
	}

	log.Println("Seeded default curriculum and placement rules")
}
