package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/feedback-analytics-api/internal/models"
	"github.com/noah-isme/feedback-analytics-api/internal/service"
)

type snapshotRepoStub struct {
	snapshots []models.FeedbackSnapshot
	lastScope models.SnapshotFilter
	err       error
}

func (s *snapshotRepoStub) Snapshots(_ context.Context, filter models.SnapshotFilter) ([]models.FeedbackSnapshot, error) {
	s.lastScope = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots, nil
}

func (s *snapshotRepoStub) CountSnapshots(context.Context, models.SnapshotFilter) (int, error) {
	return len(s.snapshots), nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newAnalyticsHandlerForTest(repo *snapshotRepoStub) *AnalyticsHandler {
	svc := service.NewAnalyticsService(repo, nil, nil, zap.NewNop(), service.AnalyticsServiceConfig{})
	return NewAnalyticsHandler(svc)
}

func testRating(v float64) *float64 { return &v }

func testSnapshots() []models.FeedbackSnapshot {
	return []models.FeedbackSnapshot{
		{
			StudentID: "s1", SubjectID: "CS101", SubjectName: "Data Structures",
			FacultyID: "F1", FacultyName: "Faculty One",
			DivisionID: "div-1", DivisionName: "Division A",
			DepartmentID: "dept-1", DepartmentName: "Computer Engineering",
			AcademicYearID: "ay-2024", AcademicYear: "2024-25",
			SemesterID: "sem-3", SemesterNumber: 3,
			LectureType: models.LectureTypeLecture, Rating: testRating(4),
		},
		{
			StudentID: "s2", SubjectID: "CS101", SubjectName: "Data Structures",
			FacultyID: "F1", FacultyName: "Faculty One",
			DivisionID: "div-1", DivisionName: "Division A",
			DepartmentID: "dept-1", DepartmentName: "Computer Engineering",
			AcademicYearID: "ay-2024", AcademicYear: "2024-25",
			SemesterID: "sem-3", SemesterNumber: 3,
			LectureType: models.LectureTypeLab, Rating: testRating(5),
		},
	}
}

func TestAnalyticsHandlerOverall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{snapshots: testSnapshots()}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/overall", nil)
	handler.Overall(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, float64(2), envelope.Data["total_responses"])
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestAnalyticsHandlerSubjectsPassesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{snapshots: testSnapshots()}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/subjects?academicYearId=ay-2024&departmentId=dept-1", nil)
	handler.Subjects(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ay-2024", repo.lastScope.AcademicYearID)
	assert.Equal(t, "dept-1", repo.lastScope.DepartmentID)
}

func TestAnalyticsHandlerSubjectDetailNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/subjects/CS999", nil)
	c.Params = gin.Params{{Key: "id", Value: "CS999"}}
	handler.SubjectDetail(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsHandlerSubjectDetailSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{snapshots: testSnapshots()}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/subjects/CS101", nil)
	c.Params = gin.Params{{Key: "id", Value: "CS101"}}
	handler.SubjectDetail(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CS101", envelope.Data["subject_id"])
}

func TestAnalyticsHandlerServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{err: assert.AnError}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/faculty", nil)
	handler.Faculty(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyticsHandlerResponseRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &snapshotRepoStub{snapshots: testSnapshots()}
	handler := newAnalyticsHandlerForTest(repo)

	c, w := newGinContext(http.MethodGet, "/analytics/response-rate", nil)
	handler.ResponseRate(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	rate, ok := envelope.Data["response_rate"].(float64)
	require.True(t, ok)
	assert.Greater(t, rate, 0.0)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
