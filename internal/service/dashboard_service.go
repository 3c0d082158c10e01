package service

import (
	"context"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	TotalStudents         int                                 `json:"total_students"`
	TotalQuestions        int                                 `json:"total_questions"`
	TotalPapers           int                                 `json:"total_papers"`
	TotalAttempts         int                                 `json:"total_attempts"`
	QuestionsByDifficulty map[model.Difficulty]int            `json:"questions_by_difficulty"`
	QuestionsBySubject    map[string]int                      `json:"questions_by_subject"`
	RecentAttempts        []repository.DashboardRecentAttempt `json:"recent_attempts"`
	AverageAccuracy7d     *float64                            `json:"average_accuracy_7d"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData fetches all dashboard metrics.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	students, questions, papers, attempts, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	byDifficulty, err := s.repo.GetQuestionCountsByDifficulty(ctx)
	if err != nil {
		return nil, err
	}

	bySubject, err := s.repo.GetQuestionCountsBySubject(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.GetRecentAttempts(ctx, 5)
	if err != nil {
		return nil, err
	}

	avgAccuracy, err := s.repo.GetAverageAccuracy(ctx, 7)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		TotalStudents:         students,
		TotalQuestions:        questions,
		TotalPapers:           papers,
		TotalAttempts:         attempts,
		QuestionsByDifficulty: byDifficulty,
		QuestionsBySubject:    bySubject,
		RecentAttempts:        recent,
		AverageAccuracy7d:     avgAccuracy,
	}, nil
}
