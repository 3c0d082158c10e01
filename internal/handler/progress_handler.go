package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lakshyaprep/lakshya-backend/internal/middleware"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	"github.com/lakshyaprep/lakshya-backend/internal/validator"
)

// ProgressHandler handles progress tracking endpoints.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress godoc
// GET /api/v1/student/progress
// Returns every progress record plus overall totals.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	progress, err := h.progressService.GetUserProgress(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}

// RecordAttempt godoc
// POST /api/v1/student/progress/attempts
// Records a single standalone practice answer.
func (h *ProgressHandler) RecordAttempt(c *gin.Context) {
	var req model.RecordAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.progressService.RecordAttempt(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": record})
}

// GetWeakAreas godoc
// GET /api/v1/student/progress/weak-areas?threshold=&min_attempts=
// Lists areas needing work, weakest first.
func (h *ProgressHandler) GetWeakAreas(c *gin.Context) {
	threshold, _ := strconv.ParseFloat(c.DefaultQuery("threshold", "0"), 64)
	minAttempts, _ := strconv.Atoi(c.DefaultQuery("min_attempts", "0"))

	weak, err := h.progressService.GetWeakAreas(c.Request.Context(), middleware.CurrentUserID(c), threshold, minAttempts)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"weak_areas": weak})
}

// GetRecommendations godoc
// GET /api/v1/student/progress/recommendations?limit=
// Suggests areas to practice next.
func (h *ProgressHandler) GetRecommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	recs, err := h.progressService.GenerateRecommendations(c.Request.Context(), middleware.CurrentUserID(c), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recommendations": recs})
}

// GetSummary godoc
// GET /api/v1/student/progress/summary
// Returns aggregate statistics including the study streak.
func (h *ProgressHandler) GetSummary(c *gin.Context) {
	summary, err := h.progressService.GetStatisticsSummary(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// ResetAll godoc
// DELETE /api/v1/student/progress?subject=
// Wipes the caller's progress, optionally scoped to one subject.
func (h *ProgressHandler) ResetAll(c *gin.Context) {
	result, err := h.progressService.ResetAll(c.Request.Context(), middleware.CurrentUserID(c), c.Query("subject"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ResetTopic godoc
// DELETE /api/v1/student/progress/topic
// Removes one (subject, chapter, topic) area.
func (h *ProgressHandler) ResetTopic(c *gin.Context) {
	var req model.DeleteAreaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.progressService.ResetTopic(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
