package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/middleware"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	"github.com/lakshyaprep/lakshya-backend/internal/validator"
)

// PaperHandler handles paper generation, serving and grading endpoints.
type PaperHandler struct {
	paperService *service.PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService *service.PaperService) *PaperHandler {
	return &PaperHandler{paperService: paperService}
}

// GeneratePaper godoc
// POST /api/v1/student/papers/generate
// Generates a custom practice paper from topic filters.
func (h *PaperHandler) GeneratePaper(c *gin.Context) {
	var req model.GeneratePaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	distribution := make(map[model.Difficulty]float64, len(req.DifficultyDistribution))
	for k, v := range req.DifficultyDistribution {
		distribution[model.Difficulty(k)] = v
	}

	userID := middleware.CurrentUserID(c)
	paper, err := h.paperService.Generate(c.Request.Context(), &userID, model.PaperConfig{
		Title:                  req.Title,
		Subjects:               req.Subjects,
		Chapters:               req.Chapters,
		Topics:                 req.Topics,
		QuestionCount:          req.QuestionCount,
		DifficultyDistribution: distribution,
		IncludeSolutions:       req.IncludeSolutions,
		RandomizeOrder:         req.RandomizeOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoCandidates) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoCandidates)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"paper": paper})
}

// GenerateExamPaper godoc
// POST /api/v1/student/papers/generate-exam
// Generates a full-length mock test from a predefined exam structure.
func (h *PaperHandler) GenerateExamPaper(c *gin.Context) {
	var req model.GenerateExamPaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID := middleware.CurrentUserID(c)
	paper, err := h.paperService.Generate(c.Request.Context(), &userID, model.PaperConfig{
		Title:    req.Title,
		ExamType: model.ExamType(req.ExamType),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownExamType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownExamType)
		case errors.Is(err, service.ErrNoCandidates):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoCandidates)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"paper": paper})
}

// ListExamStructures godoc
// GET /api/v1/public/exam-structures
// Lists the predefined exam blueprints.
func (h *PaperHandler) ListExamStructures(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"structures": model.ExamStructureList()})
}

// GetPaper godoc
// GET /api/v1/student/papers/:id
// Serves a generated paper without answers.
func (h *PaperHandler) GetPaper(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.paperService.GetPaper(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// GetAnswerKey godoc
// GET /api/v1/student/papers/:id/answer-key
// Returns the positional answer key of a paper.
func (h *PaperHandler) GetAnswerKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, key, err := h.paperService.GetAnswerKey(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paper_id":   paper.ID,
		"title":      paper.Title,
		"answer_key": key,
	})
}

// ListPapers godoc
// GET /api/v1/student/papers
// Lists the caller's generated papers, newest first.
func (h *PaperHandler) ListPapers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	papers, pagination, err := h.paperService.ListPapers(c.Request.Context(), middleware.CurrentUserID(c), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"papers": papers}, pagination)
}

// DeletePaper godoc
// DELETE /api/v1/student/papers/:id
// Deletes one of the caller's papers.
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.paperService.DeletePaper(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "paper deleted"})
}

// CheckAnswer godoc
// POST /api/v1/student/papers/:id/check
// Gives instant feedback for a single question of a paper.
func (h *PaperHandler) CheckAnswer(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CheckAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.paperService.CheckAnswer(c.Request.Context(), paperID, questionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
		case errors.Is(err, service.ErrQuestionNotInPaper):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// SubmitAttempt godoc
// POST /api/v1/student/papers/:id/submit
// Grades a full submission and records it into the caller's progress.
func (h *PaperHandler) SubmitAttempt(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.paperService.SubmitAttempt(c.Request.Context(), paperID, middleware.CurrentUserID(c), req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListAttempts godoc
// GET /api/v1/student/attempts
// Lists the caller's graded attempts, newest first.
func (h *PaperHandler) ListAttempts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	attempts, pagination, err := h.paperService.ListAttempts(c.Request.Context(), middleware.CurrentUserID(c), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}

// GetAttempt godoc
// GET /api/v1/student/attempts/:id
// Returns one attempt with its per-question breakdown.
func (h *PaperHandler) GetAttempt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.paperService.GetAttempt(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
