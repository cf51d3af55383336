package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-analytics-api/internal/middleware"
	"github.com/noah-isme/feedback-analytics-api/internal/models"
	"github.com/noah-isme/feedback-analytics-api/internal/service"
	appErrors "github.com/noah-isme/feedback-analytics-api/pkg/errors"
	"github.com/noah-isme/feedback-analytics-api/pkg/response"
)

// AnalyticsHandler exposes the derived feedback views over HTTP.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overall godoc
// @Summary Overall feedback statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/overall [get]
func (h *AnalyticsHandler) Overall(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.Overall(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// Subjects godoc
// @Summary Per-subject ratings with lecture and lab segments
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/subjects [get]
func (h *AnalyticsHandler) Subjects(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.Subjects(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// Faculty godoc
// @Summary Ranked faculty performance
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/faculty [get]
func (h *AnalyticsHandler) Faculty(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.Faculty(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// Divisions godoc
// @Summary Division comparisons
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/divisions [get]
func (h *AnalyticsHandler) Divisions(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.Divisions(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// LectureLab godoc
// @Summary Lecture vs lab comparison
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/lecture-lab [get]
func (h *AnalyticsHandler) LectureLab(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.LectureLab(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// YearDepartmentTrends godoc
// @Summary Rating trends per academic year and department
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/trends/year-department [get]
func (h *AnalyticsHandler) YearDepartmentTrends(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.YearDepartmentTrends(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// SemesterTrends godoc
// @Summary Rating trajectories per semester across years
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/trends/semester [get]
func (h *AnalyticsHandler) SemesterTrends(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.SemesterTrends(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// YearDivisionTrends godoc
// @Summary Rating trends per academic year and division
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/trends/year-division [get]
func (h *AnalyticsHandler) YearDivisionTrends(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.YearDivisionTrends(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// SubjectFaculty godoc
// @Summary Subject by faculty cross-tabulation
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/subject-faculty [get]
func (h *AnalyticsHandler) SubjectFaculty(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.SubjectFaculty(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// SubjectDetail godoc
// @Summary Drill-down view for one subject
// @Tags Analytics
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/subjects/{id} [get]
func (h *AnalyticsHandler) SubjectDetail(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	subjectID := strings.TrimSpace(c.Param("id"))
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject id is required"))
		return
	}
	filter := parseSnapshotFilter(c)
	start := time.Now()
	detail, cacheHit, err := h.analytics.SubjectDetail(c.Request.Context(), subjectID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, detail, nil, meta)
}

// FilterOptions godoc
// @Summary Distinct filter values present in scope
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/filters [get]
func (h *AnalyticsHandler) FilterOptions(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		data, cacheHit, err := h.analytics.FilterOptions(c.Request.Context(), filter)
		return data, cacheHit, err
	})
}

// ResponseRate godoc
// @Summary Estimated participation rate
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/response-rate [get]
func (h *AnalyticsHandler) ResponseRate(c *gin.Context) {
	h.respond(c, func(filter models.SnapshotFilter) (interface{}, bool, error) {
		rate, cacheHit, err := h.analytics.ResponseRate(c.Request.Context(), filter)
		if err != nil {
			return nil, false, err
		}
		return gin.H{"response_rate": rate}, cacheHit, nil
	})
}

// System godoc
// @Summary Instrumentation metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	metrics := h.analytics.SystemMetrics()
	middleware.SetCacheHit(c, false)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, metrics, nil, meta)
}

func (h *AnalyticsHandler) respond(c *gin.Context, view func(models.SnapshotFilter) (interface{}, bool, error)) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter := parseSnapshotFilter(c)
	start := time.Now()
	data, cacheHit, err := view(filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}

func parseSnapshotFilter(c *gin.Context) models.SnapshotFilter {
	return models.SnapshotFilter{
		SubjectID:      strings.TrimSpace(c.Query("subjectId")),
		FacultyID:      strings.TrimSpace(c.Query("facultyId")),
		DivisionID:     strings.TrimSpace(c.Query("divisionId")),
		DepartmentID:   strings.TrimSpace(c.Query("departmentId")),
		AcademicYearID: strings.TrimSpace(c.Query("academicYearId")),
		SemesterID:     strings.TrimSpace(c.Query("semesterId")),
	}
}
