package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
)

func TestComputeDivisionComparisons(t *testing.T) {
	s1 := snapshot("s1", "CS101", "F1", models.LectureTypeLecture, rating(4))
	s2 := snapshot("s2", "CS101", "F1", models.LectureTypeLecture, rating(2))
	s3 := snapshot("s3", "CS101", "F1", models.LectureTypeLab, rating(5))
	s3.DivisionID = "div-2"
	s3.DivisionName = "Division B"
	s4 := snapshot("s4", "CS101", "F1", models.LectureTypeLecture, rating(1))
	s4.DivisionID = ""

	comparisons := ComputeDivisionComparisons([]models.FeedbackSnapshot{s1, s2, s3, s4})
	require.Len(t, comparisons, 2)

	assert.Equal(t, "div-1", comparisons[0].DivisionID)
	assert.Equal(t, "Division A", comparisons[0].DivisionName)
	require.NotNil(t, comparisons[0].AverageRating)
	assert.InDelta(t, 3.0, *comparisons[0].AverageRating, 1e-9)
	assert.Equal(t, 2, comparisons[0].TotalResponses)

	assert.Equal(t, "div-2", comparisons[1].DivisionID)
}

func TestComputeDivisionComparisonsSingleDivisionScope(t *testing.T) {
	s1 := snapshot("s1", "CS101", "F1", models.LectureTypeLecture, rating(4))
	s2 := snapshot("s2", "CS102", "F2", models.LectureTypeLab, rating(2))
	s2.DivisionID = "div-2"

	scoped := Apply([]models.FeedbackSnapshot{s1, s2}, Filter{DivisionID: "div-1"})
	comparisons := ComputeDivisionComparisons(scoped)
	require.Len(t, comparisons, 1)
	assert.Equal(t, "div-1", comparisons[0].DivisionID)
}

func TestComputeDivisionComparisonsEmpty(t *testing.T) {
	assert.Empty(t, ComputeDivisionComparisons(nil))
}
