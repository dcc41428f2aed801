package service

import (
	"testing"

	"edu_placement_backend/internal/model"
)

func TestReferenceCacheSnapshotAndInvalidate(t *testing.T) {
	curriculum := &fakeCurriculumStore{levels: []model.CurriculumLevel{level(1, 1), level(2, 2)}}
	rules := &fakeRuleStore{rules: []model.PlacementRule{rule(1, 3, model.RankTop10, 1, 0)}}
	cache := NewReferenceCache(curriculum, rules)

	snap, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1", snap.Version)
	}
	if len(snap.LevelsByID) != 2 || len(snap.Rules) != 1 {
		t.Errorf("snapshot = %d levels, %d rules", len(snap.LevelsByID), len(snap.Rules))
	}
	if snap.LevelsByDifficulty[2].ID != 2 {
		t.Error("difficulty index miswired")
	}

	// Same snapshot until invalidated.
	again, _ := cache.Snapshot()
	if again != snap {
		t.Error("snapshot reloaded without invalidation")
	}

	// New reference data becomes visible only after Invalidate.
	curriculum.levels = append(curriculum.levels, level(3, 3))
	if s, _ := cache.Snapshot(); len(s.LevelsByID) != 2 {
		t.Error("stale read saw uncommitted reference data")
	}

	cache.Invalidate()
	fresh, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot after invalidate: %v", err)
	}
	if fresh.Version != 2 {
		t.Errorf("version = %d, want 2", fresh.Version)
	}
	if len(fresh.LevelsByID) != 3 {
		t.Errorf("levels = %d, want 3", len(fresh.LevelsByID))
	}
}

func TestReferenceCacheRulesKeepStoreOrder(t *testing.T) {
	rules := &fakeRuleStore{rules: []model.PlacementRule{
		rule(1, 3, model.RankTop10, 1, 0),
		rule(2, 3, model.RankTop10, 2, 5),
	}}
	cache := NewReferenceCache(&fakeCurriculumStore{}, rules)

	snap, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Rules[0].ID != 2 || snap.Rules[1].ID != 1 {
		t.Errorf("rule order = [%d %d], want priority-descending [2 1]", snap.Rules[0].ID, snap.Rules[1].ID)
	}
}
