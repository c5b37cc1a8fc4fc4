package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-outcomes-api/internal/models"
	"github.com/noah-isme/course-outcomes-api/internal/outcome"
	appErrors "github.com/noah-isme/course-outcomes-api/pkg/errors"
)

const achievementCachePrefix = "achievement:"

// AchievementService computes department-wide program outcome statistics.
type AchievementService struct {
	snapshots SnapshotSource
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	timeout   time.Duration
	ttl       time.Duration

	// generation advances on every Invalidate; a result computed across a change is not cached.
	generation atomic.Uint64
}

// NewAchievementService constructs an AchievementService. A zero timeout disables the compute budget.
func NewAchievementService(snapshots SnapshotSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger, timeout, ttl time.Duration) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{snapshots: snapshots, cache: cache, metrics: metrics, logger: logger, timeout: timeout, ttl: ttl}
}

// ProgramOutcomeAchievement returns one statistics row per program outcome, ordered by code.
// The boolean reports whether the rows came from cache.
func (s *AchievementService) ProgramOutcomeAchievement(ctx context.Context) ([]models.ProgramOutcomeStats, bool, error) {
	key := achievementCachePrefix + "program-outcomes"
	var cached []models.ProgramOutcomeStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	computeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		computeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	generation := s.generation.Load()
	start := time.Now()
	stats, students, err := s.compute(computeCtx)
	if err != nil {
		if computeCtx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
			s.metrics.ObserveAchievement("timeout", time.Since(start), 0)
			s.logger.Warn("achievement computation timed out", zap.Duration("budget", s.timeout))
			return nil, false, appErrors.Wrap(err, appErrors.ErrComputeTimeout.Code, appErrors.ErrComputeTimeout.Status, appErrors.ErrComputeTimeout.Message)
		}
		if errors.Is(err, context.Canceled) {
			s.metrics.ObserveAchievement("canceled", time.Since(start), 0)
			if !errors.Is(err, appErrors.ErrRequestCanceled) {
				err = canceledError(err)
			}
			return nil, false, err
		}
		s.metrics.ObserveAchievement("error", time.Since(start), 0)
		return nil, false, err
	}
	s.metrics.ObserveAchievement("ok", time.Since(start), students)
	s.logger.Debug("achievement computed",
		zap.Int("program_outcomes", len(stats)),
		zap.Int("students", students),
		zap.Duration("duration", time.Since(start)))

	if s.generation.Load() != generation {
		s.logger.Debug("achievement inputs changed during computation, result not cached")
		return stats, false, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.Warn("cache achievement", zap.Error(err))
		}
	}
	return stats, false, nil
}

func (s *AchievementService) compute(ctx context.Context) ([]models.ProgramOutcomeStats, int, error) {
	snap, err := s.snapshots.LoadDepartment(ctx)
	if err != nil {
		return nil, 0, err
	}
	agg := outcome.NewAggregator(snap)
	stats, err := agg.ProgramOutcomeStats(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate program outcomes: %w", err)
	}
	return stats, len(snap.AllStudents()), nil
}

// Invalidate drops every cached achievement result. Called after scores or weights change.
func (s *AchievementService) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, achievementCachePrefix+"*")
}
