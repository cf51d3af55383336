package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/analytics"
	"github.com/noah-isme/feedback-analytics-api/internal/models"
	appErrors "github.com/noah-isme/feedback-analytics-api/pkg/errors"
)

// SnapshotRepository describes the persistence layer required by AnalyticsService.
type SnapshotRepository interface {
	Snapshots(ctx context.Context, filter models.SnapshotFilter) ([]models.FeedbackSnapshot, error)
	CountSnapshots(ctx context.Context, filter models.SnapshotFilter) (int, error)
}

// AnalyticsServiceConfig tunes aggregation behaviour.
type AnalyticsServiceConfig struct {
	// ResponsesPerStudent is the expected number of feedback prompts per
	// student used by the response rate heuristic.
	ResponsesPerStudent int
	TopFacultyLimit     int
}

// AnalyticsService computes derived feedback views with cache integration.
// Every view is recomputed from the scoped snapshot set on a cache miss; the
// boolean in each return indicates whether data originated from cache.
type AnalyticsService struct {
	repo    SnapshotRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AnalyticsServiceConfig
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo SnapshotRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AnalyticsServiceConfig) *AnalyticsService {
	if cfg.ResponsesPerStudent <= 0 {
		cfg.ResponsesPerStudent = analytics.DefaultResponsesPerStudent
	}
	if cfg.TopFacultyLimit <= 0 {
		cfg.TopFacultyLimit = 5
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// Overall returns summary statistics for the scoped snapshot set.
func (s *AnalyticsService) Overall(ctx context.Context, filter models.SnapshotFilter) (*analytics.OverallStats, bool, error) {
	cacheKey := makeViewCacheKey("overall", filter)
	var cached *analytics.OverallStats
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "overall", filter)
	if err != nil {
		return nil, false, err
	}
	stats := analytics.ComputeOverallStats(snapshots)
	s.storeCache(ctx, cacheKey, stats)
	return stats, false, nil
}

// Subjects returns per-subject ratings combining lecture and lab segments.
func (s *AnalyticsService) Subjects(ctx context.Context, filter models.SnapshotFilter) ([]analytics.SubjectRating, bool, error) {
	cacheKey := makeViewCacheKey("subjects", filter)
	var cached []analytics.SubjectRating
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "subjects", filter)
	if err != nil {
		return nil, false, err
	}
	ratings := analytics.ComputeSubjectRatings(snapshots)
	s.storeCache(ctx, cacheKey, ratings)
	return ratings, false, nil
}

// Faculty returns the ranked faculty performance list.
func (s *AnalyticsService) Faculty(ctx context.Context, filter models.SnapshotFilter) ([]analytics.FacultyPerformance, bool, error) {
	cacheKey := makeViewCacheKey("faculty", filter)
	var cached []analytics.FacultyPerformance
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "faculty", filter)
	if err != nil {
		return nil, false, err
	}
	performances := analytics.ComputeFacultyPerformance(snapshots)
	s.storeCache(ctx, cacheKey, performances)
	return performances, false, nil
}

// Divisions returns per-division comparisons. When filter.DivisionID is set
// the comparison is restricted to that division's snapshots.
func (s *AnalyticsService) Divisions(ctx context.Context, filter models.SnapshotFilter) ([]analytics.DivisionComparison, bool, error) {
	cacheKey := makeViewCacheKey("divisions", filter)
	var cached []analytics.DivisionComparison
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "divisions", filter)
	if err != nil {
		return nil, false, err
	}
	comparisons := analytics.ComputeDivisionComparisons(snapshots)
	s.storeCache(ctx, cacheKey, comparisons)
	return comparisons, false, nil
}

// LectureLab returns the aggregate lecture vs lab comparison.
func (s *AnalyticsService) LectureLab(ctx context.Context, filter models.SnapshotFilter) (*analytics.LectureLabComparison, bool, error) {
	cacheKey := makeViewCacheKey("lecturelab", filter)
	var cached *analytics.LectureLabComparison
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "lecturelab", filter)
	if err != nil {
		return nil, false, err
	}
	comparison := analytics.ComputeLectureLabComparison(snapshots)
	s.storeCache(ctx, cacheKey, comparison)
	return comparison, false, nil
}

// YearDepartmentTrends returns per (year, department) trend cells.
func (s *AnalyticsService) YearDepartmentTrends(ctx context.Context, filter models.SnapshotFilter) ([]analytics.YearDepartmentTrend, bool, error) {
	cacheKey := makeViewCacheKey("trends:year-department", filter)
	var cached []analytics.YearDepartmentTrend
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "trends_year_department", filter)
	if err != nil {
		return nil, false, err
	}
	cells := analytics.ComputeYearDepartmentTrends(snapshots)
	s.storeCache(ctx, cacheKey, cells)
	return cells, false, nil
}

// SemesterTrends returns per-semester rating trajectories across years.
func (s *AnalyticsService) SemesterTrends(ctx context.Context, filter models.SnapshotFilter) ([]analytics.SemesterTrend, bool, error) {
	cacheKey := makeViewCacheKey("trends:semester", filter)
	var cached []analytics.SemesterTrend
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "trends_semester", filter)
	if err != nil {
		return nil, false, err
	}
	trends := analytics.ComputeSemesterTrends(snapshots)
	s.storeCache(ctx, cacheKey, trends)
	return trends, false, nil
}

// YearDivisionTrends returns per (year, division) trend cells.
func (s *AnalyticsService) YearDivisionTrends(ctx context.Context, filter models.SnapshotFilter) ([]analytics.YearDivisionTrend, bool, error) {
	cacheKey := makeViewCacheKey("trends:year-division", filter)
	var cached []analytics.YearDivisionTrend
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "trends_year_division", filter)
	if err != nil {
		return nil, false, err
	}
	cells := analytics.ComputeYearDivisionTrends(snapshots)
	s.storeCache(ctx, cacheKey, cells)
	return cells, false, nil
}

// SubjectFaculty returns the subject by faculty cross-tabulation.
func (s *AnalyticsService) SubjectFaculty(ctx context.Context, filter models.SnapshotFilter) ([]analytics.SubjectFacultyPerformance, bool, error) {
	cacheKey := makeViewCacheKey("subject-faculty", filter)
	var cached []analytics.SubjectFacultyPerformance
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "subject_faculty", filter)
	if err != nil {
		return nil, false, err
	}
	cells := analytics.ComputeSubjectFacultyPerformance(snapshots)
	s.storeCache(ctx, cacheKey, cells)
	return cells, false, nil
}

// SubjectDetail returns the drill-down view for one subject. A subject id
// absent from the scoped snapshot set yields ErrNotFound.
func (s *AnalyticsService) SubjectDetail(ctx context.Context, subjectID string, filter models.SnapshotFilter) (*analytics.SubjectDetail, bool, error) {
	if subjectID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "subject id is required")
	}
	scoped := filter
	scoped.SubjectID = subjectID
	cacheKey := makeViewCacheKey("subject-detail", scoped)
	var cached *analytics.SubjectDetail
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		if cached == nil {
			return nil, true, appErrors.ErrNotFound
		}
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "subject_detail", scoped)
	if err != nil {
		return nil, false, err
	}
	detail := analytics.ComputeSubjectDetail(snapshots, subjectID)
	s.storeCache(ctx, cacheKey, detail)
	if detail == nil {
		return nil, false, appErrors.ErrNotFound
	}
	return detail, false, nil
}

// FilterOptions returns the distinct filter values present in scope.
func (s *AnalyticsService) FilterOptions(ctx context.Context, filter models.SnapshotFilter) (*analytics.FilterOptions, bool, error) {
	cacheKey := makeViewCacheKey("filter-options", filter)
	var cached *analytics.FilterOptions
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit && cached != nil {
		return cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "filter_options", filter)
	if err != nil {
		return nil, false, err
	}
	options := analytics.ComputeFilterOptions(snapshots)
	s.storeCache(ctx, cacheKey, &options)
	return &options, false, nil
}

// ResponseRate estimates participation for the scoped snapshot set.
func (s *AnalyticsService) ResponseRate(ctx context.Context, filter models.SnapshotFilter) (float64, bool, error) {
	cacheKey := makeViewCacheKey("response-rate", filter)
	var cached *float64
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return 0, false, err
	} else if hit && cached != nil {
		return *cached, true, nil
	}

	snapshots, err := s.loadSnapshots(ctx, "response_rate", filter)
	if err != nil {
		return 0, false, err
	}
	rate := analytics.ComputeResponseRate(snapshots, s.cfg.ResponsesPerStudent)
	s.storeCache(ctx, cacheKey, &rate)
	return rate, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

// InvalidateViews drops every cached derived view. Called when a new snapshot
// batch lands.
func (s *AnalyticsService) InvalidateViews(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, "feedback:*")
}

func (s *AnalyticsService) loadSnapshots(ctx context.Context, queryLabel string, filter models.SnapshotFilter) ([]models.FeedbackSnapshot, error) {
	start := time.Now()
	snapshots, err := s.repo.Snapshots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load feedback snapshots: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(queryLabel, time.Since(start))
	}
	return snapshots, nil
}

func (s *AnalyticsService) tryCache(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false, fmt.Errorf("get cached view: %w", err)
	}
	return hit, nil
}

func (s *AnalyticsService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil && s.logger != nil {
		s.logger.Warn("cache view", zap.String("key", key), zap.Error(err))
	}
}

func makeViewCacheKey(view string, filter models.SnapshotFilter) string {
	parts := []string{
		filter.SubjectID,
		filter.FacultyID,
		filter.DivisionID,
		filter.DepartmentID,
		filter.AcademicYearID,
		filter.SemesterID,
	}
	var builder strings.Builder
	builder.Grow(len(view) + len(parts)*16)
	builder.WriteString("feedback:")
	builder.WriteString(view)
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
