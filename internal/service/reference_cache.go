package service

import (
	"context"
	"sync"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InvalidateChannel carries cross-instance cache invalidations for reference
// data (curriculum hierarchy and placement rules).
const InvalidateChannel = "placement:refdata:invalidate"

type curriculumStore interface {
	ListLevels() ([]model.CurriculumLevel, error)
}

type ruleStore interface {
	ListAll() ([]model.PlacementRule, error)
}

// RefSnapshot is one immutable view of the reference data. Readers hold the
// snapshot for the duration of a request; the cache swaps whole snapshots and
// never mutates one in place while a read is in flight.
type RefSnapshot struct {
	Version            uint64
	LevelsByID         map[uint]model.CurriculumLevel
	LevelsByDifficulty map[int]model.CurriculumLevel
	// Rules in match order: priority desc, then id asc.
	Rules []model.PlacementRule
}

// ReferenceCache is the process-wide cache of curriculum levels and placement
// rules. Reference data is read-only at request time; admin edits invalidate
// explicitly (and broadcast over redis so every instance reloads).
type ReferenceCache struct {
	curriculum curriculumStore
	rules      ruleStore

	mu       sync.RWMutex
	version  uint64
	snapshot *RefSnapshot
}

func NewReferenceCache(curriculum curriculumStore, rules ruleStore) *ReferenceCache {
	return &ReferenceCache{curriculum: curriculum, rules: rules}
}

// Snapshot returns the current reference view, loading it on first use or
// after an invalidation.
func (c *ReferenceCache) Snapshot() (*RefSnapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return c.reload()
}

func (c *ReferenceCache) reload() (*RefSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		return c.snapshot, nil
	}

	levels, err := c.curriculum.ListLevels()
	if err != nil {
		return nil, err
	}
	rules, err := c.rules.ListAll()
	if err != nil {
		return nil, err
	}

	c.version++
	snap := &RefSnapshot{
		Version:            c.version,
		LevelsByID:         make(map[uint]model.CurriculumLevel, len(levels)),
		LevelsByDifficulty: make(map[int]model.CurriculumLevel, len(levels)),
		Rules:              rules,
	}
	for _, level := range levels {
		snap.LevelsByID[level.ID] = level
		snap.LevelsByDifficulty[level.InternalDifficulty] = level
	}
	c.snapshot = snap
	return snap, nil
}

// Invalidate drops the snapshot; the next reader reloads and bumps the
// version. Invalidation is a first-class operation, called by every admin
// write to reference data.
func (c *ReferenceCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

func (c *ReferenceCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Publish notifies every instance (this one included) that reference data
// changed.
func (c *ReferenceCache) Publish(ctx context.Context, rdb *redis.Client) {
	c.Invalidate()
	if rdb == nil {
		return
	}
	if err := rdb.Publish(ctx, InvalidateChannel, "reload").Err(); err != nil {
		logger.Log.Error("Failed to publish cache invalidation", zap.Error(err))
	}
}

// WatchInvalidations subscribes to the invalidation channel and drops the
// local snapshot whenever any instance publishes. Runs until ctx is done.
func (c *ReferenceCache) WatchInvalidations(ctx context.Context, rdb *redis.Client) {
	sub := rdb.Subscribe(ctx, InvalidateChannel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = msg
			c.Invalidate()
			logger.Log.Info("Reference cache invalidated by broadcast")
		}
	}
}
