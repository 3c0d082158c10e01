package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lakshyaprep/lakshya-backend/internal/middleware"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
)

// DashboardHandler handles the admin and student dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	progressService  *service.ProgressService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, progressService *service.ProgressService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		progressService:  progressService,
	}
}

// GetDashboard godoc
// GET /api/v1/admin/dashboard
// Returns platform-wide metrics.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dashboard": data})
}

// GetStudentDashboard godoc
// GET /api/v1/student/dashboard
// Returns the caller's statistics summary plus practice suggestions.
func (h *DashboardHandler) GetStudentDashboard(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	summary, err := h.progressService.GetStatisticsSummary(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	recs, err := h.progressService.GenerateRecommendations(c.Request.Context(), userID, 0)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary":         summary,
		"recommendations": recs,
	})
}
