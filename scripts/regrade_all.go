// Re-grade every stored session against current question definitions.
//
// Recalculation normally runs per exam through the teacher API after a key
// fix. This script sweeps the whole database instead, for bulk imports or
// after a grading policy change. Manually resolved answers keep their scores.
//
// Usage: go run scripts/regrade_all.go
package main

import (
	"log"
	"os"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/repository"
	"edu_placement_backend/internal/service"
	"edu_placement_backend/pkg/database"
	"edu_placement_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("cannot read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("cannot parse config file: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	sessions := service.NewSessionService(
		repository.NewSessionRepository(db),
		repository.NewExamRepository(db),
		&cfg,
	)

	var exams []model.Exam
	if err := db.Find(&exams).Error; err != nil {
		log.Fatalf("cannot list exams: %v", err)
	}

	total := 0
	for _, exam := range exams {
		n, err := sessions.RecalculateSessions(exam.ID)
		if err != nil {
			log.Printf("exam %d: recalculation failed: %v", exam.ID, err)
			continue
		}
		total += n
	}
	log.Printf("recalculated %d sessions across %d exams", total, len(exams))
}
