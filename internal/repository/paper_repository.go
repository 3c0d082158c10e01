package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// PaperRepository persists generated question papers and their answer keys.
type PaperRepository struct {
	pool *pgxpool.Pool
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{pool: pool}
}

// Create stores a generated paper. Questions, metadata and the answer key
// are kept as JSONB so the paper re-serves byte-for-byte what was generated.
func (r *PaperRepository) Create(ctx context.Context, paper *model.QuestionPaper, key model.AnswerKey) error {
	questionsJSON, err := json.Marshal(paper.Questions)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(paper.Metadata)
	if err != nil {
		return err
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO papers (id, user_id, title, exam_type, questions, answer_key, metadata, total_questions, total_marks, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		paper.ID, paper.UserID, paper.Title, paper.ExamType, questionsJSON, keyJSON, metadataJSON,
		paper.TotalQuestions, paper.TotalMarks, paper.DurationMinutes,
	).Scan(&paper.CreatedAt)
}

// GetByID retrieves a paper together with its answer key.
func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionPaper, model.AnswerKey, error) {
	p := &model.QuestionPaper{}
	var questionsJSON, keyJSON, metadataJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, exam_type, questions, answer_key, metadata, total_questions, total_marks, duration_minutes, created_at
		 FROM papers WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Title, &p.ExamType, &questionsJSON, &keyJSON, &metadataJSON,
		&p.TotalQuestions, &p.TotalMarks, &p.DurationMinutes, &p.CreatedAt)
	if err != nil {
		return nil, model.AnswerKey{}, err
	}

	if err := json.Unmarshal(questionsJSON, &p.Questions); err != nil {
		return nil, model.AnswerKey{}, err
	}
	if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
		return nil, model.AnswerKey{}, err
	}
	var key model.AnswerKey
	if err := json.Unmarshal(keyJSON, &key); err != nil {
		return nil, model.AnswerKey{}, err
	}
	return p, key, nil
}

// ListByUser retrieves paper summaries for one user, newest first.
func (r *PaperRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]model.PaperSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM papers WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, exam_type, total_questions, total_marks, duration_minutes, metadata->>'outcome', created_at
		 FROM papers WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var papers []model.PaperSummary
	for rows.Next() {
		var p model.PaperSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.ExamType, &p.TotalQuestions, &p.TotalMarks, &p.DurationMinutes, &p.Outcome, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		papers = append(papers, p)
	}
	return papers, total, rows.Err()
}

// RecentIDs lists the newest paper IDs, used to prewarm the cache at startup.
func (r *PaperRepository) RecentIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM papers ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a paper owned by the given user.
func (r *PaperRepository) Delete(ctx context.Context, id uuid.UUID, userID int) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM papers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
