package service

import (
	"context"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/repository"
	"edu_placement_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// CurriculumService is the admin surface over reference data. Every write
// publishes a cache invalidation so all instances reload before the next
// placement decision.
type CurriculumService struct {
	Curriculum *repository.CurriculumRepository
	Rules      *repository.PlacementRuleRepository
	Cache      *ReferenceCache
	Redis      *redis.Client
}

func NewCurriculumService(curriculum *repository.CurriculumRepository, rules *repository.PlacementRuleRepository, cache *ReferenceCache, rdb *redis.Client) *CurriculumService {
	return &CurriculumService{Curriculum: curriculum, Rules: rules, Cache: cache, Redis: rdb}
}

func (s *CurriculumService) ListPrograms() ([]model.Program, error) {
	return s.Curriculum.ListPrograms()
}

func (s *CurriculumService) ListSubPrograms(programID uint) ([]model.SubProgram, error) {
	return s.Curriculum.ListSubPrograms(programID)
}

// ListLevels returns every level in difficulty order.
func (s *CurriculumService) ListLevels() ([]model.CurriculumLevel, error) {
	return s.Curriculum.ListLevels()
}

func (s *CurriculumService) GetLevel(id uint) (*model.CurriculumLevel, error) {
	level, err := s.Curriculum.FindLevelByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}
	return level, nil
}

func (s *CurriculumService) CreateProgram(ctx context.Context, p *model.Program) error {
	if err := s.Curriculum.CreateProgram(p); err != nil {
		return err
	}
	s.Cache.Publish(ctx, s.Redis)
	return nil
}

func (s *CurriculumService) CreateSubProgram(ctx context.Context, sp *model.SubProgram) error {
	if err := s.Curriculum.CreateSubProgram(sp); err != nil {
		return err
	}
	s.Cache.Publish(ctx, s.Redis)
	return nil
}

func (s *CurriculumService) CreateLevel(ctx context.Context, level *model.CurriculumLevel) error {
	if err := s.Curriculum.CreateLevel(level); err != nil {
		return err
	}
	s.Cache.Publish(ctx, s.Redis)
	return nil
}

// InvalidateCache forces a reference-data reload on every instance. Exposed
// for out-of-band edits (seeding scripts, direct DB fixes).
func (s *CurriculumService) InvalidateCache(ctx context.Context) {
	s.Cache.Publish(ctx, s.Redis)
}

func (s *CurriculumService) ListRules() ([]model.PlacementRule, error) {
	return s.Rules.ListAll()
}

// CreateRule appends a placement rule. Rules are never edited in place; a
// correction is a new rule at a higher priority.
func (s *CurriculumService) CreateRule(ctx context.Context, rule *model.PlacementRule) error {
	if !rule.RankBucket.Valid() {
		return util.ErrNoMatchingRule
	}
	if _, err := s.GetLevel(rule.TargetLevelID); err != nil {
		return err
	}
	if err := s.Rules.Create(rule); err != nil {
		return err
	}
	s.Cache.Publish(ctx, s.Redis)
	return nil
}
