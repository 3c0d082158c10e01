package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

const questionColumns = `id, source, year, subject, chapter, topic, difficulty, exam_type, question_type, question_text, options, correct_answer, solution_text, reference, marks, created_at, updated_at`

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// filterClauses translates a QuestionFilter into SQL WHERE fragments.
// Values within one field are OR-ed (= ANY), fields are AND-ed together.
func filterClauses(filter model.QuestionFilter) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(filter.Subjects) > 0 {
		args = append(args, filter.Subjects)
		clauses = append(clauses, `subject = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if len(filter.Chapters) > 0 {
		args = append(args, filter.Chapters)
		clauses = append(clauses, `chapter = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if len(filter.Topics) > 0 {
		args = append(args, filter.Topics)
		clauses = append(clauses, `topic = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if len(filter.Difficulties) > 0 {
		difficulties := make([]string, len(filter.Difficulties))
		for i, d := range filter.Difficulties {
			difficulties[i] = string(d)
		}
		args = append(args, difficulties)
		clauses = append(clauses, `difficulty = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if filter.ExamType != "" {
		args = append(args, string(filter.ExamType))
		clauses = append(clauses, `exam_type = $`+strconv.Itoa(len(args)))
	}
	if len(filter.ExcludeIDs) > 0 {
		ids := make([]string, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			ids[i] = id.String()
		}
		args = append(args, ids)
		clauses = append(clauses, `NOT (id = ANY($`+strconv.Itoa(len(args))+`::uuid[]))`)
	}
	return clauses, args
}

func scanQuestion(row pgx.Row) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Source, &q.Year, &q.Subject, &q.Chapter, &q.Topic, &q.Difficulty, &q.ExamType,
		&q.QuestionType, &q.QuestionText, &q.Options, &q.CorrectAnswer, &q.SolutionText, &q.Reference,
		&q.Marks, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Find retrieves every question matching the filter. The paper generator
// loads its full candidate pool through this and samples in memory.
func (r *QuestionRepository) Find(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	clauses, args := filterClauses(filter)
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ExistsByID reports whether a question with the given ID exists.
func (r *QuestionRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListPaginated retrieves questions matching the filter with pagination.
func (r *QuestionRepository) ListPaginated(ctx context.Context, filter model.QuestionFilter, limit, offset int) ([]model.Question, int, error) {
	clauses, args := filterClauses(filter)
	where := ``
	if len(clauses) > 0 {
		where = ` WHERE ` + strings.Join(clauses, ` AND `)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		` ORDER BY subject, chapter, created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (source, year, subject, chapter, topic, difficulty, exam_type, question_type, question_text, options, correct_answer, solution_text, reference, marks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		q.Source, q.Year, q.Subject, q.Chapter, q.Topic, q.Difficulty, q.ExamType, q.QuestionType,
		q.QuestionText, q.Options, q.CorrectAnswer, q.SolutionText, q.Reference, q.Marks,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update modifies an existing question. Returns pgx.ErrNoRows when the
// ID does not exist.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`UPDATE questions SET source = $1, year = $2, subject = $3, chapter = $4, topic = $5, difficulty = $6,
		 exam_type = $7, question_type = $8, question_text = $9, options = $10, correct_answer = $11,
		 solution_text = $12, reference = $13, marks = $14, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $15
		 RETURNING created_at, updated_at`,
		q.Source, q.Year, q.Subject, q.Chapter, q.Topic, q.Difficulty, q.ExamType, q.QuestionType,
		q.QuestionText, q.Options, q.CorrectAnswer, q.SolutionText, q.Reference, q.Marks, q.ID,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

// UpdateSolution sets only the solution text. Used by the solution worker.
func (r *QuestionRepository) UpdateSolution(ctx context.Context, id uuid.UUID, solution string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET solution_text = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		solution, id,
	)
	return err
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// BulkInsert imports many questions in one round trip. IDs must be
// assigned by the caller beforehand.
func (r *QuestionRepository) BulkInsert(ctx context.Context, questions []model.Question) (int, error) {
	n, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"id", "source", "year", "subject", "chapter", "topic", "difficulty", "exam_type", "question_type", "question_text", "options", "correct_answer", "solution_text", "reference", "marks"},
		pgx.CopyFromSlice(len(questions), func(i int) ([]interface{}, error) {
			q := questions[i]
			return []interface{}{q.ID, q.Source, q.Year, q.Subject, q.Chapter, q.Topic, q.Difficulty, q.ExamType, q.QuestionType, q.QuestionText, q.Options, q.CorrectAnswer, q.SolutionText, q.Reference, q.Marks}, nil
		}),
	)
	return int(n), err
}

// CatalogEntry is one (subject, chapter) pair with its question count.
type CatalogEntry struct {
	Subject   string `json:"subject"`
	Chapter   string `json:"chapter"`
	Questions int    `json:"questions"`
}

// Catalog lists every subject/chapter pair present in the bank.
func (r *QuestionRepository) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject, chapter, COUNT(*) FROM questions GROUP BY subject, chapter ORDER BY subject, chapter`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Subject, &e.Chapter, &e.Questions); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MissingSolutionIDs lists questions that have no solution text yet.
// The solution worker uses this to enqueue generation jobs.
func (r *QuestionRepository) MissingSolutionIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions WHERE solution_text = '' ORDER BY created_at LIMIT $1`, limit)
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
