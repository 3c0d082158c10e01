package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// AttemptRepository persists graded paper submissions.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create stores a graded attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	resultsJSON, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (paper_id, user_id, score, max_score, attempted, correct, accuracy, results, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.PaperID, a.UserID, a.Score, a.MaxScore, a.Attempted, a.Correct, a.Accuracy, resultsJSON, a.SubmittedAt,
	).Scan(&a.ID)
}

// ListByUser retrieves attempt summaries for one user, newest first.
// Per-question results are omitted from listings.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]model.Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.paper_id, a.user_id, COALESCE(p.title, ''), a.score, a.max_score, a.attempted, a.correct, a.accuracy, a.submitted_at
		 FROM attempts a
		 LEFT JOIN papers p ON p.id = a.paper_id
		 WHERE a.user_id = $1
		 ORDER BY a.submitted_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.PaperID, &a.UserID, &a.PaperTitle, &a.Score, &a.MaxScore, &a.Attempted, &a.Correct, &a.Accuracy, &a.SubmittedAt); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// GetByID retrieves one attempt with its per-question results.
func (r *AttemptRepository) GetByID(ctx context.Context, id, userID int) (*model.Attempt, error) {
	a := &model.Attempt{}
	var resultsJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.paper_id, a.user_id, COALESCE(p.title, ''), a.score, a.max_score, a.attempted, a.correct, a.accuracy, a.results, a.submitted_at
		 FROM attempts a
		 LEFT JOIN papers p ON p.id = a.paper_id
		 WHERE a.id = $1 AND a.user_id = $2`, id, userID,
	).Scan(&a.ID, &a.PaperID, &a.UserID, &a.PaperTitle, &a.Score, &a.MaxScore, &a.Attempted, &a.Correct, &a.Accuracy, &resultsJSON, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
		return nil, err
	}
	return a, nil
}
