package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
	appErrors "github.com/noah-isme/feedback-analytics-api/pkg/errors"
)

type mockSnapshotRepo struct {
	snapshots  []models.FeedbackSnapshot
	count      int
	calls      int
	countCalls int
	err        error
}

func (m *mockSnapshotRepo) Snapshots(ctx context.Context, filter models.SnapshotFilter) ([]models.FeedbackSnapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots, nil
}

func (m *mockSnapshotRepo) CountSnapshots(ctx context.Context, filter models.SnapshotFilter) (int, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func ratedSnapshot(studentID, subjectID, facultyID string, lectureType models.LectureType, rating float64) models.FeedbackSnapshot {
	return models.FeedbackSnapshot{
		StudentID:      studentID,
		SubjectID:      subjectID,
		SubjectName:    "Subject " + subjectID,
		FacultyID:      facultyID,
		FacultyName:    "Faculty " + facultyID,
		DivisionID:     "div-1",
		DivisionName:   "Division A",
		DepartmentID:   "dept-1",
		DepartmentName: "Computer Engineering",
		AcademicYearID: "ay-2024",
		AcademicYear:   "2024-25",
		SemesterID:     "sem-3",
		SemesterNumber: 3,
		LectureType:    lectureType,
		Rating:         &rating,
	}
}

func TestAnalyticsServiceSubjectsCaching(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: []models.FeedbackSnapshot{
		ratedSnapshot("s1", "CS101", "F1", models.LectureTypeLecture, 4),
		ratedSnapshot("s2", "CS101", "F1", models.LectureTypeLab, 5),
	}}
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})

	filter := models.SnapshotFilter{AcademicYearID: "ay-2024"}
	ctx := context.Background()

	ratings, cacheHit, err := svc.Subjects(ctx, filter)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, repo.calls)
	require.Len(t, ratings, 1)
	require.NotNil(t, ratings[0].OverallRating)
	assert.InDelta(t, 4.5, *ratings[0].OverallRating, 1e-9)

	ratingsCached, cacheHit2, err := svc.Subjects(ctx, filter)
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, ratings, ratingsCached)
}

func TestAnalyticsServiceOverallEmptySet(t *testing.T) {
	repo := &mockSnapshotRepo{}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})

	stats, cacheHit, err := svc.Overall(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Nil(t, stats)
}

func TestAnalyticsServiceErrorPassthrough(t *testing.T) {
	repo := &mockSnapshotRepo{err: assert.AnError}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})

	_, _, err := svc.Faculty(context.Background(), models.SnapshotFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAnalyticsServiceSubjectDetailNotFound(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: []models.FeedbackSnapshot{
		ratedSnapshot("s1", "CS101", "F1", models.LectureTypeLecture, 4),
	}}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})

	_, _, err := svc.SubjectDetail(context.Background(), "nonexistent-id", models.SnapshotFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	detail, _, err := svc.SubjectDetail(context.Background(), "CS101", models.SnapshotFilter{})
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "CS101", detail.SubjectID)
}

func TestAnalyticsServiceResponseRateUsesConfiguredDenominator(t *testing.T) {
	snapshots := make([]models.FeedbackSnapshot, 0, 5)
	for i := 0; i < 5; i++ {
		snapshots = append(snapshots, ratedSnapshot("s1", "CS101", "F1", models.LectureTypeLecture, 4))
	}
	repo := &mockSnapshotRepo{snapshots: snapshots}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{ResponsesPerStudent: 5})

	rate, _, err := svc.ResponseRate(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rate, 1e-9)
}

func TestAnalyticsServiceFilterOptionsCaching(t *testing.T) {
	repo := &mockSnapshotRepo{snapshots: []models.FeedbackSnapshot{
		ratedSnapshot("s1", "CS101", "F1", models.LectureTypeLecture, 4),
		ratedSnapshot("s2", "CS102", "F2", models.LectureTypeLab, 3),
	}}
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, cacheSvc, nil, zap.NewNop(), AnalyticsServiceConfig{})

	options, cacheHit, err := svc.FilterOptions(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.NotNil(t, options)
	assert.Len(t, options.Subjects, 2)

	optionsCached, cacheHit2, err := svc.FilterOptions(context.Background(), models.SnapshotFilter{})
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, options, optionsCached)
	assert.Equal(t, 1, repo.calls)
}
