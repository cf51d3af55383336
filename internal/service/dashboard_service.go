package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/analytics"
	"github.com/noah-isme/feedback-analytics-api/internal/dto"
	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

type analyticsViewProvider interface {
	Overall(ctx context.Context, filter models.SnapshotFilter) (*analytics.OverallStats, bool, error)
	Faculty(ctx context.Context, filter models.SnapshotFilter) ([]analytics.FacultyPerformance, bool, error)
	LectureLab(ctx context.Context, filter models.SnapshotFilter) (*analytics.LectureLabComparison, bool, error)
	Divisions(ctx context.Context, filter models.SnapshotFilter) ([]analytics.DivisionComparison, bool, error)
	ResponseRate(ctx context.Context, filter models.SnapshotFilter) (float64, bool, error)
}

// DashboardServiceConfig tunes dashboard composition.
type DashboardServiceConfig struct {
	CacheTTL        time.Duration
	TopFacultyLimit int
}

// DashboardService composes headline indicators from the derived views.
type DashboardService struct {
	analytics analyticsViewProvider
	repo      SnapshotRepository
	cache     *CacheService
	logger    *zap.Logger
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(provider analyticsViewProvider, repo SnapshotRepository, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopFacultyLimit <= 0 {
		cfg.TopFacultyLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{analytics: provider, repo: repo, cache: cache, logger: logger, cfg: cfg}
}

// Summary returns the dashboard payload for the given scope and indicates
// cache utilisation.
func (s *DashboardService) Summary(ctx context.Context, filter models.SnapshotFilter) (*dto.DashboardResponse, bool, error) {
	cacheKey := makeViewCacheKey("dashboard", filter)
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context, filter models.SnapshotFilter) (*dto.DashboardResponse, error) {
	if s.analytics != nil {
		return s.composeFromViews(ctx, filter)
	}
	return s.composeFromSnapshots(ctx, filter)
}

func (s *DashboardService) composeFromViews(ctx context.Context, filter models.SnapshotFilter) (*dto.DashboardResponse, error) {
	overall, _, err := s.analytics.Overall(ctx, filter)
	if err != nil {
		return nil, err
	}
	rate, _, err := s.analytics.ResponseRate(ctx, filter)
	if err != nil {
		return nil, err
	}
	faculty, _, err := s.analytics.Faculty(ctx, filter)
	if err != nil {
		return nil, err
	}
	lectureLab, _, err := s.analytics.LectureLab(ctx, filter)
	if err != nil {
		return nil, err
	}
	divisions, _, err := s.analytics.Divisions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		OverallStats: overall,
		ResponseRate: rate,
		TopFaculty:   topN(faculty, s.cfg.TopFacultyLimit),
		LectureLab:   lectureLab,
		Divisions:    divisions,
	}, nil
}

// composeFromSnapshots is the direct path used when no view provider is
// wired, e.g. in a minimal deployment without Redis.
func (s *DashboardService) composeFromSnapshots(ctx context.Context, filter models.SnapshotFilter) (*dto.DashboardResponse, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("dashboard has no analytics provider or snapshot repository")
	}
	snapshots, err := s.repo.Snapshots(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		OverallStats: analytics.ComputeOverallStats(snapshots),
		ResponseRate: analytics.ComputeResponseRate(snapshots, analytics.DefaultResponsesPerStudent),
		TopFaculty:   topN(analytics.ComputeFacultyPerformance(snapshots), s.cfg.TopFacultyLimit),
		LectureLab:   analytics.ComputeLectureLabComparison(snapshots),
		Divisions:    analytics.ComputeDivisionComparisons(snapshots),
	}, nil
}

func topN(performances []analytics.FacultyPerformance, limit int) []analytics.FacultyPerformance {
	if len(performances) <= limit {
		return performances
	}
	return performances[:limit]
}
