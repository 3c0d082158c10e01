package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
)

var (
	ErrTutorDisabled = errors.New("tutor is not configured")
	ErrEmptyReply    = errors.New("tutor returned an empty reply")
)

// explanationTTL keeps generated explanations cached for a week. The
// solution worker persists them onto the question row independently.
const explanationTTL = 7 * 24 * time.Hour

const tutorSystemPrompt = "You are an experienced JEE and NEET tutor. Explain concepts " +
	"step by step at the level of a motivated class 11-12 student, show the working for " +
	"numerical problems, and point out common mistakes. Keep answers focused and exam-oriented."

// TutorService answers student questions and explains bank questions
// using a chat model.
type TutorService struct {
	client    *openai.Client
	model     string
	questions *repository.QuestionRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewTutorService creates a new TutorService. Without an API key the
// service stays constructed but every call returns ErrTutorDisabled.
func NewTutorService(cfg *config.Config, questions *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *TutorService {
	var client *openai.Client
	if cfg.OpenAIAPIKey != "" {
		client = openai.NewClient(cfg.OpenAIAPIKey)
	}
	return &TutorService{
		client:    client,
		model:     cfg.OpenAIModel,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "tutor_service").Logger(),
	}
}

// Enabled reports whether an API key was configured.
func (s *TutorService) Enabled() bool {
	return s.client != nil
}

// Model returns the chat model name used for tutoring turns.
func (s *TutorService) Model() string {
	return s.model
}

// Chat runs one tutoring turn over the conversation so far.
func (s *TutorService) Chat(ctx context.Context, req model.TutorChatRequest) (*model.TutorChatResponse, error) {
	if s.client == nil {
		return nil, ErrTutorDisabled
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: chatMessages(req),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyReply
	}

	return &model.TutorChatResponse{
		Reply: resp.Choices[0].Message.Content,
		Model: s.model,
	}, nil
}

// ChatStream runs one tutoring turn and delivers the reply
// incrementally through onDelta. Returns the full accumulated reply.
func (s *TutorService) ChatStream(ctx context.Context, req model.TutorChatRequest, onDelta func(string) error) (string, error) {
	if s.client == nil {
		return "", ErrTutorDisabled
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: chatMessages(req),
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if err != nil {
			// Recv returns io.EOF on normal stream end. Anything else
			// means the reply was cut off.
			if errors.Is(err, io.EOF) {
				break
			}
			return reply.String(), fmt.Errorf("stream recv: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		reply.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return reply.String(), err
		}
	}

	if reply.Len() == 0 {
		return "", ErrEmptyReply
	}
	return reply.String(), nil
}

// chatMessages prepends the tutor persona to the client conversation.
func chatMessages(req model.TutorChatRequest) []openai.ChatCompletionMessage {
	system := tutorSystemPrompt
	if req.Subject != "" {
		system += " The student is currently studying " + req.Subject + "."
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return messages
}

// ExplainQuestion produces a step-by-step explanation for a bank
// question. The bank's stored solution wins; generated explanations are
// cached in Redis so repeated views of a popular question stay cheap.
func (s *TutorService) ExplainQuestion(ctx context.Context, questionID uuid.UUID) (*model.QuestionExplanation, error) {
	cacheKey := config.CacheKey.ExplanationKey(questionID.String())

	cached, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		return &model.QuestionExplanation{
			QuestionID:  questionID,
			Explanation: cached,
			Model:       s.model,
			Cached:      true,
		}, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Explanation cache unavailable")
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	if q.SolutionText != "" {
		return &model.QuestionExplanation{
			QuestionID:  questionID,
			Explanation: q.SolutionText,
		}, nil
	}

	explanation, err := s.GenerateSolution(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, cacheKey, explanation, explanationTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("question_id", questionID.String()).Msg("Failed to cache explanation")
	}

	return &model.QuestionExplanation{
		QuestionID:  questionID,
		Explanation: explanation,
		Model:       s.model,
	}, nil
}

// GenerateSolution asks the model for a worked solution to one
// question. The solution worker uses this to backfill the bank.
func (s *TutorService) GenerateSolution(ctx context.Context, q *model.Question) (string, error) {
	if s.client == nil {
		return "", ErrTutorDisabled
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Write a step-by-step solution for this %s question.\n\n", q.Subject)
	fmt.Fprintf(&prompt, "Question: %s\n", q.QuestionText)
	if len(q.Options) > 0 {
		fmt.Fprintf(&prompt, "Options: %s\n", string(q.Options))
	}
	fmt.Fprintf(&prompt, "Correct answer: %s\n\n", q.CorrectAnswer)
	prompt.WriteString("Explain the reasoning that leads to the correct answer. Plain text only.")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: tutorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate solution: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
