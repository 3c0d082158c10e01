package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
)

var ErrQuestionNotFound = errors.New("question not found")

// missingSolutionBatch caps how many questions one backfill call queues.
const missingSolutionBatch = 500

// QuestionService handles question bank business logic.
type QuestionService struct {
	repo *repository.QuestionRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(repo *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "question_service").Logger(),
	}
}

// ListQuestions retrieves questions matching the filter with pagination.
func (s *QuestionService) ListQuestions(ctx context.Context, filter model.QuestionFilter, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.repo.ListPaginated(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, response.NewPagination(page, perPage, total), nil
}

// BrowseQuestions retrieves questions for practice browsing, stripped of
// grading fields.
func (s *QuestionService) BrowseQuestions(ctx context.Context, filter model.QuestionFilter, page, perPage int) ([]model.QuestionPreview, *response.Pagination, error) {
	questions, pagination, err := s.ListQuestions(ctx, filter, page, perPage)
	if err != nil {
		return nil, nil, err
	}

	previews := make([]model.QuestionPreview, len(questions))
	for i, q := range questions {
		previews[i] = q.Preview()
	}
	return previews, pagination, nil
}

// GetQuestion retrieves a single question by ID.
func (s *QuestionService) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// CreateQuestion adds a question to the bank. Questions arriving without
// a solution are queued for the solution worker.
func (s *QuestionService) CreateQuestion(ctx context.Context, req model.CreateQuestionRequest) (*model.Question, error) {
	q := questionFromRequest(req)
	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	if q.SolutionText == "" {
		s.enqueueSolutions(ctx, q.ID)
	}
	return &q, nil
}

// UpdateQuestion replaces a question's content.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uuid.UUID, req model.UpdateQuestionRequest) (*model.Question, error) {
	q := questionFromRequest(model.CreateQuestionRequest(req))
	q.ID = id
	if err := s.repo.Update(ctx, &q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return &q, nil
}

// DeleteQuestion removes a question from the bank. Already generated
// papers keep their embedded copy.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrQuestionNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ImportQuestions bulk-loads questions and queues the ones without a
// solution for the solution worker. Returns the number inserted.
func (s *QuestionService) ImportQuestions(ctx context.Context, req model.ImportQuestionsRequest) (int, error) {
	questions := make([]model.Question, 0, len(req.Questions))
	var missing []uuid.UUID
	for _, qr := range req.Questions {
		q := questionFromRequest(qr)
		q.ID = uuid.New()
		questions = append(questions, q)
		if q.SolutionText == "" {
			missing = append(missing, q.ID)
		}
	}

	inserted, err := s.repo.BulkInsert(ctx, questions)
	if err != nil {
		return 0, fmt.Errorf("bulk insert: %w", err)
	}

	s.enqueueSolutions(ctx, missing...)
	s.log.Info().Int("inserted", inserted).Int("missing_solutions", len(missing)).Msg("Questions imported")
	return inserted, nil
}

// GetCatalog returns the subject and chapter inventory of the bank for
// building paper filters.
func (s *QuestionService) GetCatalog(ctx context.Context) ([]repository.CatalogEntry, error) {
	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = []repository.CatalogEntry{}
	}
	return catalog, nil
}

// EnqueueMissingSolutions scans the bank for questions without a
// solution and queues them for the solution worker. Returns the number
// queued.
func (s *QuestionService) EnqueueMissingSolutions(ctx context.Context) (int, error) {
	ids, err := s.repo.MissingSolutionIDs(ctx, missingSolutionBatch)
	if err != nil {
		return 0, fmt.Errorf("list missing solutions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	s.enqueueSolutions(ctx, ids...)
	s.log.Info().Int("queued", len(ids)).Msg("Missing solutions queued for generation")
	return len(ids), nil
}

// enqueueSolutions pushes question IDs onto the solution queue. Failures
// only log: the next backfill scan picks the questions up again.
func (s *QuestionService) enqueueSolutions(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		payload, err := json.Marshal(solutionJob{QuestionID: id.String()})
		if err != nil {
			continue
		}
		if err := s.rdb.RPush(ctx, config.WorkerKey.SolutionQueue, payload).Err(); err != nil {
			s.log.Warn().Err(err).Str("question_id", id.String()).Msg("Failed to queue solution job")
			return
		}
	}
}

// solutionJob is the queue payload consumed by the solution worker.
type solutionJob struct {
	QuestionID string `json:"question_id"`
}

// questionFromRequest maps an incoming payload onto the model, applying
// the default marks.
func questionFromRequest(req model.CreateQuestionRequest) model.Question {
	marks := req.Marks
	if marks == 0 {
		marks = model.DefaultMarks
	}
	return model.Question{
		Source:        req.Source,
		Year:          req.Year,
		Subject:       req.Subject,
		Chapter:       req.Chapter,
		Topic:         req.Topic,
		Difficulty:    model.Difficulty(req.Difficulty),
		ExamType:      model.ExamType(req.ExamType),
		QuestionType:  model.QuestionType(req.QuestionType),
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		SolutionText:  req.SolutionText,
		Reference:     req.Reference,
		Marks:         marks,
	}
}
