package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

func dashboardFixture() []models.FeedbackSnapshot {
	return []models.FeedbackSnapshot{
		ratedSnapshot("s1", "CS101", "F1", models.LectureTypeLecture, 4),
		ratedSnapshot("s2", "CS101", "F2", models.LectureTypeLecture, 5),
		ratedSnapshot("s3", "CS102", "F1", models.LectureTypeLab, 3),
	}
}

func TestDashboardSummaryComposesViews(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: dashboardFixture()}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	analyticsSvc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})
	svc := NewDashboardService(analyticsSvc, repo, cacheSvc, zap.NewNop(), DashboardServiceConfig{TopFacultyLimit: 1})

	summary, cacheHit, err := svc.Summary(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.NotNil(t, summary)

	require.NotNil(t, summary.OverallStats)
	assert.Equal(t, 3, summary.OverallStats.TotalResponses)
	require.Len(t, summary.TopFaculty, 1)
	assert.Equal(t, "F2", summary.TopFaculty[0].FacultyID)
	require.NotNil(t, summary.LectureLab)
	assert.Len(t, summary.Divisions, 1)
	assert.Greater(t, summary.ResponseRate, 0.0)
}

func TestDashboardSummaryCaching(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: dashboardFixture()}
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	analyticsSvc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})
	svc := NewDashboardService(analyticsSvc, repo, cacheSvc, zap.NewNop(), DashboardServiceConfig{})

	first, hit1, err := svc.Summary(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.False(t, hit1)

	second, hit2, err := svc.Summary(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.True(t, hit2)
	assert.Equal(t, first, second)
}

func TestDashboardSummaryFallsBackToSnapshots(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: dashboardFixture()}
	svc := NewDashboardService(nil, repo, nil, zap.NewNop(), DashboardServiceConfig{})

	summary, _, err := svc.Summary(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	require.NotNil(t, summary.OverallStats)
	assert.Equal(t, 3, summary.OverallStats.TotalResponses)
	assert.Equal(t, 1, repo.calls)
}

func TestDashboardSummaryErrorPassthrough(t *testing.T) {
	repo := &mockSnapshotRepo{err: assert.AnError}
	svc := NewDashboardService(nil, repo, nil, zap.NewNop(), DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background(), models.SnapshotFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
