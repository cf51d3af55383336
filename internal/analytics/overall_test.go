package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

func TestComputeOverallStats(t *testing.T) {
	snapshots := []models.FeedbackSnapshot{
		snapshot("s1", "CS101", "F1", models.LectureTypeLecture, rating(4)),
		snapshot("s2", "CS101", "F1", models.LectureTypeLab, rating(5)),
		snapshot("s1", "CS102", "F2", models.LectureTypeLecture, nil),
	}

	stats := ComputeOverallStats(snapshots)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.TotalResponses)
	require.NotNil(t, stats.AverageRating)
	assert.InDelta(t, 4.5, *stats.AverageRating, 1e-9)
	assert.Equal(t, 2, stats.SubjectCount)
	assert.Equal(t, 2, stats.FacultyCount)
	assert.Equal(t, 2, stats.StudentCount)
	assert.Equal(t, 1, stats.DivisionCount)
	assert.Equal(t, 1, stats.DepartmentCount)
}

func TestComputeOverallStatsEmpty(t *testing.T) {
	assert.Nil(t, ComputeOverallStats(nil))
	assert.Nil(t, ComputeOverallStats([]models.FeedbackSnapshot{}))
}

func TestComputeOverallStatsAllRatingsNil(t *testing.T) {
	snapshots := []models.FeedbackSnapshot{
		snapshot("s1", "CS101", "F1", models.LectureTypeLecture, nil),
		snapshot("s2", "CS101", "F1", models.LectureTypeLecture, nil),
	}
	stats := ComputeOverallStats(snapshots)
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalResponses)
	assert.Nil(t, stats.AverageRating)
}

func TestComputeLectureLabComparison(t *testing.T) {
	snapshots := []models.FeedbackSnapshot{
		snapshot("s1", "CS101", "F1", models.LectureTypeLecture, rating(4)),
		snapshot("s2", "CS101", "F1", models.LectureTypeLecture, rating(2)),
		snapshot("s3", "CS101", "F1", models.LectureTypeLab, rating(5)),
		snapshot("s4", "CS101", "F1", models.LectureTypeLab, nil),
	}

	cmp := ComputeLectureLabComparison(snapshots)
	require.NotNil(t, cmp)
	require.NotNil(t, cmp.LectureRating)
	assert.InDelta(t, 3.0, *cmp.LectureRating, 1e-9)
	require.NotNil(t, cmp.LabRating)
	assert.InDelta(t, 5.0, *cmp.LabRating, 1e-9)
	assert.Equal(t, 2, cmp.LectureResponses)
	assert.Equal(t, 1, cmp.LabResponses)
}

func TestComputeLectureLabComparisonEmpty(t *testing.T) {
	assert.Nil(t, ComputeLectureLabComparison(nil))
}

func TestComputeResponseRate(t *testing.T) {
	snapshots := make([]models.FeedbackSnapshot, 0, 5)
	for i := 0; i < 5; i++ {
		snapshots = append(snapshots, snapshot("s1", "CS101", "F1", models.LectureTypeLecture, rating(4)))
	}

	// 5 responses, 1 student, 10 expected per student.
	rate := ComputeResponseRate(snapshots, DefaultResponsesPerStudent)
	assert.InDelta(t, 50.0, rate, 1e-9)

	// Custom denominator.
	assert.InDelta(t, 100.0, ComputeResponseRate(snapshots, 5), 1e-9)

	// Capped at 100.
	assert.InDelta(t, 100.0, ComputeResponseRate(snapshots, 1), 1e-9)

	// Non-positive denominator falls back to the default.
	assert.InDelta(t, 50.0, ComputeResponseRate(snapshots, 0), 1e-9)

	assert.Zero(t, ComputeResponseRate(nil, DefaultResponsesPerStudent))
}
