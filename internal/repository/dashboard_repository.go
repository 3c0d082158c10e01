package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalStudents, totalQuestions, totalPapers, totalAttempts int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM papers),
			(SELECT COUNT(*) FROM attempts)`,
	).Scan(&totalStudents, &totalQuestions, &totalPapers, &totalAttempts)
	return
}

// GetQuestionCountsByDifficulty retrieves the bank composition by difficulty.
func (r *DashboardRepository) GetQuestionCountsByDifficulty(ctx context.Context) (map[model.Difficulty]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT difficulty, COUNT(*) FROM questions GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Difficulty]int)
	for rows.Next() {
		var difficulty model.Difficulty
		var count int
		if err := rows.Scan(&difficulty, &count); err != nil {
			return nil, err
		}
		counts[difficulty] = count
	}
	return counts, rows.Err()
}

// GetQuestionCountsBySubject retrieves the bank composition by subject.
func (r *DashboardRepository) GetQuestionCountsBySubject(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT subject, COUNT(*) FROM questions GROUP BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var subject string
		var count int
		if err := rows.Scan(&subject, &count); err != nil {
			return nil, err
		}
		counts[subject] = count
	}
	return counts, rows.Err()
}

// DashboardRecentAttempt represents minimal data for recently submitted attempts.
type DashboardRecentAttempt struct {
	AttemptID   int       `json:"attempt_id"`
	PaperID     uuid.UUID `json:"paper_id"`
	PaperTitle  string    `json:"paper_title"`
	StudentName string    `json:"student_name"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Accuracy    float64   `json:"accuracy"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GetRecentAttempts retrieves the last N submitted attempts across all users.
func (r *DashboardRepository) GetRecentAttempts(ctx context.Context, limit int) ([]DashboardRecentAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.paper_id, COALESCE(p.title, ''), COALESCE(u.name, ''), a.score, a.max_score, a.accuracy, a.submitted_at
		 FROM attempts a
		 LEFT JOIN papers p ON p.id = a.paper_id
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.submitted_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []DashboardRecentAttempt
	for rows.Next() {
		var a DashboardRecentAttempt
		if err := rows.Scan(&a.AttemptID, &a.PaperID, &a.PaperTitle, &a.StudentName, &a.Score, &a.MaxScore, &a.Accuracy, &a.SubmittedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if attempts == nil {
		attempts = []DashboardRecentAttempt{}
	}
	return attempts, rows.Err()
}

// GetAverageAccuracy computes the mean accuracy over all attempts in the
// last N days. Returns nil when there are no attempts in the window.
func (r *DashboardRepository) GetAverageAccuracy(ctx context.Context, days int) (*float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx,
		`SELECT AVG(accuracy) FROM attempts WHERE submitted_at > NOW() - make_interval(days => $1)`, days,
	).Scan(&avg)
	if err != nil {
		return nil, err
	}
	return avg, nil
}
