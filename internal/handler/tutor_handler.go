package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	"github.com/lakshyaprep/lakshya-backend/internal/validator"
)

// TutorHandler handles AI tutoring endpoints.
type TutorHandler struct {
	tutorService   *service.TutorService
	settingService *service.SettingService
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(tutorService *service.TutorService, settingService *service.SettingService) *TutorHandler {
	return &TutorHandler{
		tutorService:   tutorService,
		settingService: settingService,
	}
}

// tutorAvailable checks both the runtime switch and the API key.
func (h *TutorHandler) tutorAvailable(c *gin.Context) bool {
	if !h.settingService.TutorEnabled(c.Request.Context()) || !h.tutorService.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrTutorDisabled)
		return false
	}
	return true
}

// Chat godoc
// POST /api/v1/student/tutor/chat
// Runs one tutoring turn over the supplied conversation.
func (h *TutorHandler) Chat(c *gin.Context) {
	if !h.tutorAvailable(c) {
		return
	}

	var req model.TutorChatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reply, err := h.tutorService.Chat(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrTutorDisabled) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrTutorDisabled)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrTutorUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reply": reply})
}

// ExplainQuestion godoc
// GET /api/v1/student/questions/:id/explanation
// Returns a step-by-step explanation for one bank question.
func (h *TutorHandler) ExplainQuestion(c *gin.Context) {
	if !h.tutorAvailable(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	explanation, err := h.tutorService.ExplainQuestion(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTutorDisabled):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrTutorDisabled)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrTutorUnavailable)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"explanation": explanation})
}
