package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/courshub/courshub-api/internal/models"
	appErrors "github.com/courshub/courshub-api/pkg/errors"
)

type dashboardRepository interface {
	Counts(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardService serves aggregate platform counts for the admin dashboard,
// cached briefly since the numbers drift slowly.
type DashboardService struct {
	repo     dashboardRepository
	cache    structureCache
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(repo dashboardRepository, cache structureCache, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultDashboardTTL
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Stats returns the aggregate counts, served from cache when warm.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, cacheKeyDashboard, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyDashboard, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return stats, nil
}
