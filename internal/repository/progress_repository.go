package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// ProgressRepository handles per-area progress accumulation.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// ApplyDeltas increments the progress counters for every touched area and
// records the practice day, all in one transaction. A crash mid-way never
// leaves a half-applied attempt.
func (r *ProgressRepository) ApplyDeltas(ctx context.Context, userID int, deltas []model.AttemptDelta, day time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var totalAttempted, totalCorrect int
	for _, d := range deltas {
		if _, err := tx.Exec(ctx,
			`INSERT INTO progress_records (user_id, subject, chapter, topic, attempted, correct, last_studied_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (user_id, subject, chapter, topic) DO UPDATE SET
			   attempted = progress_records.attempted + EXCLUDED.attempted,
			   correct = progress_records.correct + EXCLUDED.correct,
			   last_studied_at = EXCLUDED.last_studied_at,
			   updated_at = CURRENT_TIMESTAMP`,
			userID, d.Subject, d.Chapter, d.Topic, d.Attempted, d.Correct, day,
		); err != nil {
			return err
		}
		totalAttempted += d.Attempted
		totalCorrect += d.Correct
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO practice_days (user_id, day, attempted, correct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, day) DO UPDATE SET
		   attempted = practice_days.attempted + EXCLUDED.attempted,
		   correct = practice_days.correct + EXCLUDED.correct`,
		userID, day.Format("2006-01-02"), totalAttempted, totalCorrect,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetArea retrieves the single record for one (subject, chapter, topic)
// area, or pgx.ErrNoRows when the user never touched it.
func (r *ProgressRepository) GetArea(ctx context.Context, userID int, subject, chapter, topic string) (*model.ProgressRecord, error) {
	var p model.ProgressRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, chapter, topic, attempted, correct, last_studied_at, updated_at
		 FROM progress_records
		 WHERE user_id = $1 AND subject = $2 AND chapter = $3 AND topic = $4`,
		userID, subject, chapter, topic,
	).Scan(&p.ID, &p.UserID, &p.Subject, &p.Chapter, &p.Topic, &p.Attempted, &p.Correct, &p.LastStudiedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Accuracy = model.ComputeAccuracy(p.Correct, p.Attempted)
	return &p, nil
}

// ListByUser retrieves every progress record for one user.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID int) ([]model.ProgressRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, subject, chapter, topic, attempted, correct, last_studied_at, updated_at
		 FROM progress_records WHERE user_id = $1
		 ORDER BY subject, chapter, topic`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ProgressRecord
	for rows.Next() {
		var p model.ProgressRecord
		if err := rows.Scan(&p.ID, &p.UserID, &p.Subject, &p.Chapter, &p.Topic, &p.Attempted, &p.Correct, &p.LastStudiedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Accuracy = model.ComputeAccuracy(p.Correct, p.Attempted)
		records = append(records, p)
	}
	return records, rows.Err()
}

// PracticeDays lists the user's distinct practice days, newest first.
func (r *ProgressRepository) PracticeDays(ctx context.Context, userID, limit int) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT day FROM practice_days WHERE user_id = $1 ORDER BY day DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// DeleteArea removes a single (subject, chapter, topic) record. Returns
// the number of removed rows; 0 simply means there was nothing to remove.
func (r *ProgressRepository) DeleteArea(ctx context.Context, userID int, subject, chapter, topic string) (int, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM progress_records WHERE user_id = $1 AND subject = $2 AND chapter = $3 AND topic = $4`,
		userID, subject, chapter, topic)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

// Reset deletes the user's progress. With a subject it clears only that
// subject's areas; without one it clears everything including the
// practice-day history. Returns the number of removed records.
func (r *ProgressRepository) Reset(ctx context.Context, userID int, subject string) (int, error) {
	if subject != "" {
		ct, err := r.pool.Exec(ctx,
			`DELETE FROM progress_records WHERE user_id = $1 AND subject = $2`, userID, subject)
		if err != nil {
			return 0, err
		}
		return int(ct.RowsAffected()), nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM progress_records WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM practice_days WHERE user_id = $1`, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
