package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/response"
)

var (
	ErrNoCandidates       = errors.New("no questions match the requested filters")
	ErrUnknownExamType    = errors.New("unknown exam type")
	ErrPaperNotFound      = errors.New("paper not found")
	ErrQuestionNotInPaper = errors.New("question is not part of this paper")
	ErrAttemptNotFound    = errors.New("attempt not found")
)

// prewarmPaperLimit bounds how many recent papers are loaded into Redis
// at startup.
const prewarmPaperLimit = 50

// QuestionSource is the question-store view the generator consumes.
type QuestionSource interface {
	Find(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
}

// PaperStore persists generated papers together with their answer keys.
type PaperStore interface {
	Create(ctx context.Context, paper *model.QuestionPaper, key model.AnswerKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionPaper, model.AnswerKey, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]model.PaperSummary, int, error)
	RecentIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID, userID int) (bool, error)
}

// AttemptStore persists graded submissions.
type AttemptStore interface {
	Create(ctx context.Context, a *model.Attempt) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]model.Attempt, int, error)
	GetByID(ctx context.Context, id, userID int) (*model.Attempt, error)
}

// ProgressRecorder absorbs the per-area attempt deltas of a graded paper.
type ProgressRecorder interface {
	ApplyDeltas(ctx context.Context, userID int, deltas []model.AttemptDelta, day time.Time) error
}

// PaperService generates, serves and grades question papers.
type PaperService struct {
	questions QuestionSource
	papers    PaperStore
	attempts  AttemptStore
	progress  ProgressRecorder
	rdb       *redis.Client
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewPaperService creates a new PaperService.
func NewPaperService(
	questions QuestionSource,
	papers PaperStore,
	attempts AttemptStore,
	progress ProgressRecorder,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *PaperService {
	return &PaperService{
		questions: questions,
		papers:    papers,
		attempts:  attempts,
		progress:  progress,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		log:       log.With().Str("component", "paper_service").Logger(),
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Generation
// ────────────────────────────────────────────────────────────────────────────

// Generate builds a paper from the config. With an exam type set the
// config switches to exam-template mode and the structure's sections
// override the custom filters and count.
func (s *PaperService) Generate(ctx context.Context, userID *int, cfg model.PaperConfig) (*model.QuestionPaper, error) {
	if cfg.ExamType != "" {
		return s.generateExam(ctx, userID, cfg)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	candidates, err := s.questions.Find(ctx, model.QuestionFilter{
		Subjects: cfg.Subjects,
		Chapters: cfg.Chapters,
		Topics:   cfg.Topics,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	targets := difficultyTargets(cfg.QuestionCount, normalizeDistribution(cfg.DifficultyDistribution))
	selected, outcome := drawByDifficulty(rng, candidates, targets)

	if len(selected) < cfg.QuestionCount {
		s.log.Warn().
			Int("requested", cfg.QuestionCount).
			Int("selected", len(selected)).
			Strs("subjects", cfg.Subjects).
			Msg("Candidate pool smaller than requested count")
	}
	if outcome == model.OutcomeCrossDifficultyFallback {
		s.log.Warn().
			Interface("targets", targets).
			Interface("actual", countByDifficulty(selected)).
			Msg("Requested difficulty distribution not achievable, used fallback")
	}

	if cfg.RandomizeOrder {
		rng.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}

	views := buildPaperQuestions(selected, nil)
	key := buildAnswerKey(selected, views, cfg.IncludeSolutions)

	paper := &model.QuestionPaper{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          paperTitle(cfg),
		Questions:      views,
		TotalQuestions: len(views),
		TotalMarks:     key.TotalMarks,
		Metadata:       buildMetadata(targets, selected, outcome, nil, cfg.RandomizeOrder),
		CreatedAt:      time.Now(),
	}

	if err := s.store(ctx, paper, key); err != nil {
		return nil, err
	}
	return paper, nil
}

// generateExam builds a full-length paper from a predefined exam
// structure, section by section. Any section with an empty candidate
// pool aborts the whole generation: a mock test cannot be partially
// generated.
func (s *PaperService) generateExam(ctx context.Context, userID *int, cfg model.PaperConfig) (*model.QuestionPaper, error) {
	structure, ok := model.ExamStructureFor(cfg.ExamType)
	if !ok {
		return nil, ErrUnknownExamType
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var combined []model.Question
	sections := make([]model.SectionResult, 0, len(structure.Sections))
	requested := make(map[model.Difficulty]int, len(model.Difficulties))
	marksBySubject := make(map[string]int, len(structure.Sections))

	for _, sec := range structure.Sections {
		candidates, err := s.questions.Find(ctx, model.QuestionFilter{Subjects: []string{sec.Subject}})
		if err != nil {
			return nil, fmt.Errorf("find %s candidates: %w", sec.Subject, err)
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%s section: %w", sec.Subject, ErrNoCandidates)
		}

		targets := difficultyTargets(sec.QuestionCount, normalizeDistribution(sec.Distribution))
		selected, outcome := drawByDifficulty(rng, candidates, targets)
		if len(selected) < sec.QuestionCount {
			s.log.Warn().
				Str("exam_type", string(cfg.ExamType)).
				Str("subject", sec.Subject).
				Int("requested", sec.QuestionCount).
				Int("selected", len(selected)).
				Msg("Section pool smaller than the structure requires")
		}

		sections = append(sections, model.SectionResult{
			Subject:   sec.Subject,
			Requested: targets,
			Actual:    countByDifficulty(selected),
			Outcome:   outcome,
		})
		for _, d := range model.Difficulties {
			requested[d] += targets[d]
		}
		marksBySubject[sec.Subject] = sec.MarksPerQuestion
		combined = append(combined, selected...)
	}

	// Cross-section dedup as a hard post-condition. Sections filter on
	// disjoint subjects, so dropping anything here means the bank data is
	// malformed.
	deduped := dedupByID(combined)
	if len(deduped) < len(combined) {
		s.log.Warn().
			Int("dropped", len(combined)-len(deduped)).
			Str("exam_type", string(cfg.ExamType)).
			Msg("Duplicate question IDs across sections, dropped")
	}

	overall := model.OutcomeExact
	for _, sec := range sections {
		if rankOutcome(sec.Outcome) > rankOutcome(overall) {
			overall = sec.Outcome
		}
	}

	views := buildPaperQuestions(deduped, marksBySubject)
	key := buildAnswerKey(deduped, views, cfg.IncludeSolutions)

	title := cfg.Title
	if title == "" {
		title = structure.Name + " Mock Test"
	}

	paper := &model.QuestionPaper{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		ExamType:        structure.ExamType,
		Questions:       views,
		TotalQuestions:  len(views),
		TotalMarks:      structure.TotalMarks,
		DurationMinutes: structure.DurationMinutes,
		Metadata:        buildMetadata(requested, deduped, overall, sections, false),
		CreatedAt:       time.Now(),
	}

	if err := s.store(ctx, paper, key); err != nil {
		return nil, err
	}
	return paper, nil
}

func rankOutcome(o model.DistributionOutcome) int {
	switch o {
	case model.OutcomeSameDifficultyBackfill:
		return 1
	case model.OutcomeCrossDifficultyFallback:
		return 2
	}
	return 0
}

// store persists the paper and warms the serving cache.
func (s *PaperService) store(ctx context.Context, paper *model.QuestionPaper, key model.AnswerKey) error {
	if err := s.papers.Create(ctx, paper, key); err != nil {
		return fmt.Errorf("persist paper: %w", err)
	}
	if err := s.warmPaperCache(ctx, paper, key); err != nil {
		// The paper is persisted; serving falls back to the database.
		s.log.Warn().Err(err).Str("paper_id", paper.ID.String()).Msg("Failed to warm paper cache")
	}
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Serving and grading
// ────────────────────────────────────────────────────────────────────────────

// warmPaperCache loads the paper payload and its answer-key hash into
// Redis atomically via pipeline.
func (s *PaperService) warmPaperCache(ctx context.Context, paper *model.QuestionPaper, key model.AnswerKey) error {
	payloadJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	answers := make(map[string]interface{}, len(key.Answers))
	for _, e := range key.Answers {
		answers[e.QuestionID.String()] = e.CorrectAnswer
	}

	payloadKey := config.CacheKey.PaperPayloadKey(paper.ID.String())
	answerKey := config.CacheKey.PaperAnswerKey(paper.ID.String())

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, payloadKey, payloadJSON, s.cacheTTL)
	pipe.Del(ctx, answerKey)
	if len(answers) > 0 {
		pipe.HSet(ctx, answerKey, answers)
		pipe.Expire(ctx, answerKey, s.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("paper_id", paper.ID.String()).
		Int("questions", len(paper.Questions)).
		Msg("Paper cache warmed")
	return nil
}

// GetPaper serves a paper, preferring the Redis payload and falling back
// to the database on a cache miss, re-warming the cache on the way out.
func (s *PaperService) GetPaper(ctx context.Context, id uuid.UUID) (*model.QuestionPaper, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.PaperPayloadKey(id.String())).Bytes()
	if err == nil {
		var paper model.QuestionPaper
		if err := json.Unmarshal(data, &paper); err == nil {
			return &paper, nil
		}
		s.log.Warn().Str("paper_id", id.String()).Msg("Corrupt paper payload in cache, reloading")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get payload: %w", err)
	}

	// Cache miss (expired or evicted): the database has the paper for as
	// long as it exists. Self-heal the cache for the next reader.
	paper, key, err := s.papers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}
	if err := s.warmPaperCache(ctx, paper, key); err != nil {
		s.log.Warn().Err(err).Str("paper_id", id.String()).Msg("Failed to re-warm paper cache")
	}
	return paper, nil
}

// GetAnswerKey returns the stored answer key of a paper.
func (s *PaperService) GetAnswerKey(ctx context.Context, id uuid.UUID) (*model.QuestionPaper, model.AnswerKey, error) {
	paper, key, err := s.papers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.AnswerKey{}, ErrPaperNotFound
		}
		return nil, model.AnswerKey{}, fmt.Errorf("get paper: %w", err)
	}
	return paper, key, nil
}

// CheckAnswer gives instant feedback for one question of a paper using
// the Redis answer-key hash, falling back to the database on a miss.
func (s *PaperService) CheckAnswer(ctx context.Context, paperID, questionID uuid.UUID, answer string) (*model.CheckAnswerResult, error) {
	correct, err := s.rdb.HGet(ctx, config.CacheKey.PaperAnswerKey(paperID.String()), questionID.String()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get answer: %w", err)
		}

		paper, key, dbErr := s.papers.GetByID(ctx, paperID)
		if dbErr != nil {
			if errors.Is(dbErr, pgx.ErrNoRows) {
				return nil, ErrPaperNotFound
			}
			return nil, fmt.Errorf("get paper: %w", dbErr)
		}
		entry, ok := key.Entry(questionID)
		if !ok {
			return nil, ErrQuestionNotInPaper
		}
		correct = entry.CorrectAnswer

		if err := s.warmPaperCache(ctx, paper, key); err != nil {
			s.log.Warn().Err(err).Str("paper_id", paperID.String()).Msg("Failed to re-warm paper cache")
		}
	}

	return &model.CheckAnswerResult{
		QuestionID:    questionID,
		Correct:       answersMatch(answer, correct),
		CorrectAnswer: correct,
	}, nil
}

// answersMatch compares a given answer with the expected one, ignoring
// case and surrounding whitespace.
func answersMatch(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

// SubmitAttempt grades a full submission, persists the attempt and fans
// the outcome out into the submitter's progress records.
func (s *PaperService) SubmitAttempt(ctx context.Context, paperID uuid.UUID, userID int, answers map[string]string) (*model.AttemptResult, error) {
	paper, key, err := s.papers.GetByID(ctx, paperID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}

	result := gradeAttempt(paper, key, answers, time.Now())

	attempt := &model.Attempt{
		PaperID:     paper.ID,
		UserID:      userID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Attempted:   result.Attempted,
		Correct:     result.Correct,
		Accuracy:    result.Accuracy,
		Results:     result.Results,
		SubmittedAt: result.SubmittedAt,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	if err := s.progress.ApplyDeltas(ctx, userID, attemptDeltas(result.Results), result.SubmittedAt); err != nil {
		return nil, fmt.Errorf("apply progress: %w", err)
	}

	s.log.Info().
		Str("paper_id", paper.ID.String()).
		Int("user_id", userID).
		Int("score", result.Score).
		Int("max_score", result.MaxScore).
		Msg("Attempt graded")
	return result, nil
}

// gradeAttempt scores a submission against the answer key. Unanswered
// questions count toward neither attempts nor score. Marks are awarded
// in full for a correct answer and never deducted.
func gradeAttempt(paper *model.QuestionPaper, key model.AnswerKey, answers map[string]string, now time.Time) *model.AttemptResult {
	result := &model.AttemptResult{
		PaperID:     paper.ID,
		MaxScore:    key.TotalMarks,
		Results:     make([]model.QuestionResult, 0, len(paper.Questions)),
		SubmittedAt: now,
	}

	for i, q := range paper.Questions {
		var entry model.AnswerKeyEntry
		var ok bool
		if i < len(key.Answers) && key.Answers[i].QuestionID == q.ID {
			entry, ok = key.Answers[i], true
		} else {
			entry, ok = key.Entry(q.ID)
		}
		if !ok {
			continue
		}

		given, attempted := answers[q.ID.String()]
		qr := model.QuestionResult{
			QuestionID:    q.ID,
			Subject:       q.Subject,
			Chapter:       q.Chapter,
			Topic:         q.Topic,
			GivenAnswer:   given,
			CorrectAnswer: entry.CorrectAnswer,
			SolutionText:  entry.SolutionText,
			Reference:     entry.Reference,
			Attempted:     attempted,
		}
		if attempted {
			result.Attempted++
			if answersMatch(given, entry.CorrectAnswer) {
				qr.Correct = true
				qr.MarksAwarded = entry.Marks
				result.Correct++
				result.Score += entry.Marks
			}
		}
		result.Results = append(result.Results, qr)
	}

	result.Accuracy = model.ComputeAccuracy(result.Correct, result.Attempted)
	return result
}

// attemptDeltas folds per-question results into per-area progress deltas,
// in a deterministic order. Only attempted questions count.
func attemptDeltas(results []model.QuestionResult) []model.AttemptDelta {
	byArea := make(map[string]*model.AttemptDelta)
	for _, r := range results {
		if !r.Attempted {
			continue
		}
		k := r.Subject + "\x00" + r.Chapter + "\x00" + r.Topic
		d, ok := byArea[k]
		if !ok {
			d = &model.AttemptDelta{Subject: r.Subject, Chapter: r.Chapter, Topic: r.Topic}
			byArea[k] = d
		}
		d.Attempted++
		if r.Correct {
			d.Correct++
		}
	}

	keys := make([]string, 0, len(byArea))
	for k := range byArea {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	deltas := make([]model.AttemptDelta, 0, len(keys))
	for _, k := range keys {
		deltas = append(deltas, *byArea[k])
	}
	return deltas
}

// ────────────────────────────────────────────────────────────────────────────
// Listing, deletion, prewarm
// ────────────────────────────────────────────────────────────────────────────

// ListPapers retrieves the caller's papers with pagination.
func (s *PaperService) ListPapers(ctx context.Context, userID, page, perPage int) ([]model.PaperSummary, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	papers, total, err := s.papers.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if papers == nil {
		papers = []model.PaperSummary{}
	}
	return papers, response.NewPagination(page, perPage, total), nil
}

// ListAttempts retrieves the caller's attempt history, newest first.
func (s *PaperService) ListAttempts(ctx context.Context, userID, page, perPage int) ([]model.Attempt, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	attempts, total, err := s.attempts.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, response.NewPagination(page, perPage, total), nil
}

// GetAttempt retrieves one of the caller's attempts with the full
// per-question breakdown.
func (s *PaperService) GetAttempt(ctx context.Context, id, userID int) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// DeletePaper removes one of the caller's papers and purges its cache.
func (s *PaperService) DeletePaper(ctx context.Context, id uuid.UUID, userID int) error {
	found, err := s.papers.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	if !found {
		return ErrPaperNotFound
	}

	if err := s.rdb.Del(ctx,
		config.CacheKey.PaperPayloadKey(id.String()),
		config.CacheKey.PaperAnswerKey(id.String()),
	).Err(); err != nil {
		s.log.Warn().Err(err).Str("paper_id", id.String()).Msg("Failed to purge paper cache")
	}
	return nil
}

// PrewarmRecentPapers loads the newest papers into Redis on startup so
// the first readers after a restart do not stampede the database.
func (s *PaperService) PrewarmRecentPapers(ctx context.Context) error {
	ids, err := s.papers.RecentIDs(ctx, prewarmPaperLimit)
	if err != nil {
		return fmt.Errorf("list recent papers: %w", err)
	}
	if len(ids) == 0 {
		s.log.Info().Msg("No papers to prewarm")
		return nil
	}

	warmed := 0
	for _, id := range ids {
		paper, key, err := s.papers.GetByID(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("paper_id", id.String()).Msg("Failed to load paper, skipping")
			continue
		}
		if err := s.warmPaperCache(ctx, paper, key); err != nil {
			s.log.Warn().Err(err).Str("paper_id", id.String()).Msg("Failed to warm paper, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(ids)).
		Msg("Paper prewarming complete")
	return nil
}
