package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
)

const (
	SolutionPollTimeout = 1 * time.Second
	// SolutionMaxAttempts bounds requeues for a failing job so a broken
	// API key cannot spin the queue forever.
	SolutionMaxAttempts = 3
)

// SolutionWorker drains the solution queue and fills in missing
// step-by-step solutions via the tutor model. Jobs are processed one at
// a time: the LLM round trip dominates, so there is nothing to batch.
type SolutionWorker struct {
	questions *repository.QuestionRepository
	tutor     *service.TutorService
	rdb       *redis.Client
	log       zerolog.Logger
}

func NewSolutionWorker(questions *repository.QuestionRepository, tutor *service.TutorService, rdb *redis.Client, log zerolog.Logger) *SolutionWorker {
	return &SolutionWorker{
		questions: questions,
		tutor:     tutor,
		rdb:       rdb,
		log:       log.With().Str("component", "solution_worker").Logger(),
	}
}

type solutionPayload struct {
	QuestionID string `json:"question_id"`
	Attempts   int    `json:"attempts,omitempty"`
}

func (w *SolutionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SolutionWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Stopping solution worker...")
			return

		default:
			item, err := w.rdb.BLPop(ctx, SolutionPollTimeout, config.WorkerKey.SolutionQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p solutionPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.process(ctx, &p)
		}
	}
}

// process generates and stores a solution for one queued question.
// Transient failures requeue the job with an incremented attempt count.
func (w *SolutionWorker) process(ctx context.Context, p *solutionPayload) {
	qID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		w.log.Error().Str("question_id", p.QuestionID).Msg("Invalid question ID in payload")
		return
	}

	q, err := w.questions.GetByID(ctx, qID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Question was deleted while the job sat in the queue.
			w.log.Warn().Str("question_id", p.QuestionID).Msg("Question gone, dropping job")
			return
		}
		w.log.Error().Err(err).Str("question_id", p.QuestionID).Msg("Failed to load question")
		w.requeue(ctx, p)
		return
	}

	// An admin may have typed a solution while the job was queued.
	if q.SolutionText != "" {
		w.log.Debug().Str("question_id", p.QuestionID).Msg("Solution already present, skipping")
		return
	}

	solution, err := w.tutor.GenerateSolution(ctx, q)
	if err != nil {
		w.log.Error().Err(err).Str("question_id", p.QuestionID).Msg("Solution generation failed")
		w.requeue(ctx, p)
		return
	}

	if err := w.questions.UpdateSolution(ctx, qID, solution); err != nil {
		w.log.Error().Err(err).Str("question_id", p.QuestionID).Msg("Failed to store solution")
		w.requeue(ctx, p)
		return
	}

	w.log.Info().
		Str("question_id", p.QuestionID).
		Int("solution_chars", len(solution)).
		Msg("Solution generated")
}

func (w *SolutionWorker) requeue(ctx context.Context, p *solutionPayload) {
	if p.Attempts+1 >= SolutionMaxAttempts {
		w.log.Error().
			Str("question_id", p.QuestionID).
			Int("attempts", p.Attempts+1).
			Msg("Giving up on solution job")
		return
	}

	raw, _ := json.Marshal(&solutionPayload{QuestionID: p.QuestionID, Attempts: p.Attempts + 1})
	if err := w.rdb.RPush(ctx, config.WorkerKey.SolutionQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("question_id", p.QuestionID).Msg("Requeue failed")
	}
}
