package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-analytics-api/internal/dto"
	"github.com/noah-isme/feedback-analytics-api/internal/middleware"
	"github.com/noah-isme/feedback-analytics-api/internal/models"
	appErrors "github.com/noah-isme/feedback-analytics-api/pkg/errors"
	"github.com/noah-isme/feedback-analytics-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, filter models.SnapshotFilter) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard headline indicators
// @Tags Dashboard
// @Produce json
// @Param academicYearId query string false "Academic year scope"
// @Param departmentId query string false "Department scope"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter := parseSnapshotFilter(c)
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
