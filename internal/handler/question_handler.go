package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	"github.com/lakshyaprep/lakshya-backend/internal/validator"
)

// QuestionHandler handles question bank management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/admin/questions
// Lists bank questions with filters and pagination.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filter := model.QuestionFilter{
		Subjects: splitQuery(c.Query("subject")),
		Chapters: splitQuery(c.Query("chapter")),
		Topics:   splitQuery(c.Query("topic")),
		ExamType: model.ExamType(c.Query("exam_type")),
	}
	if d := c.Query("difficulty"); d != "" {
		filter.Difficulties = []model.Difficulty{model.Difficulty(d)}
	}

	questions, pagination, err := h.questionService.ListQuestions(c.Request.Context(), filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// splitQuery turns a comma-separated query value into a trimmed slice.
func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// BrowseQuestions godoc
// GET /api/v1/student/questions
// Lists bank questions for practice browsing, without answers or
// solutions.
func (h *QuestionHandler) BrowseQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filter := model.QuestionFilter{
		Subjects: splitQuery(c.Query("subject")),
		Chapters: splitQuery(c.Query("chapter")),
		Topics:   splitQuery(c.Query("topic")),
		ExamType: model.ExamType(c.Query("exam_type")),
	}
	if d := c.Query("difficulty"); d != "" {
		filter.Difficulties = []model.Difficulty{model.Difficulty(d)}
	}

	questions, pagination, err := h.questionService.BrowseQuestions(c.Request.Context(), filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
// Returns one bank question including its answer and solution.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
// Adds a question to the bank.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Replaces a question's content.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
// Removes a question from the bank.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// ImportQuestions godoc
// POST /api/v1/admin/questions/import
// Bulk-loads questions into the bank.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	var req model.ImportQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	inserted, err := h.questionService.ImportQuestions(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"imported": inserted})
}

// GetCatalog godoc
// GET /api/v1/student/catalog
// Returns the subject/chapter inventory for building papers.
func (h *QuestionHandler) GetCatalog(c *gin.Context) {
	catalog, err := h.questionService.GetCatalog(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"catalog": catalog})
}

// BackfillSolutions godoc
// POST /api/v1/admin/questions/solutions/backfill
// Queues questions without solutions for the solution worker.
func (h *QuestionHandler) BackfillSolutions(c *gin.Context) {
	queued, err := h.questionService.EnqueueMissingSolutions(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"queued": queued})
}
