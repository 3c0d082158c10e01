package model

import (
	"time"

	"github.com/google/uuid"
)

// DistributionOutcome records how closely a generated paper matched the
// requested difficulty distribution.
type DistributionOutcome string

const (
	// OutcomeExact means every difficulty bucket was filled as requested.
	OutcomeExact DistributionOutcome = "exact"
	// OutcomeSameDifficultyBackfill means at least one bucket came up short
	// on the first draw and was topped up with questions of the same
	// difficulty.
	OutcomeSameDifficultyBackfill DistributionOutcome = "same_difficulty_backfill"
	// OutcomeCrossDifficultyFallback means the pool could not honor the
	// distribution and questions of other difficulties filled the gap.
	OutcomeCrossDifficultyFallback DistributionOutcome = "cross_difficulty_fallback"
)

// PaperConfig is the immutable input to the paper generator. It is built
// once at the API boundary after validation and never mutated by the core.
type PaperConfig struct {
	Title                  string
	Subjects               []string
	Chapters               []string
	Topics                 []string
	QuestionCount          int
	DifficultyDistribution map[Difficulty]float64
	ExamType               ExamType
	IncludeSolutions       bool
	RandomizeOrder         bool
}

// PaperQuestion is the client-facing view of a question inside a paper.
// The correct answer, solution and reference deliberately never appear
// here; they live in the answer key.
type PaperQuestion struct {
	ID           uuid.UUID    `json:"id"`
	Number       int          `json:"number"`
	Source       string       `json:"source,omitempty"`
	Year         int          `json:"year,omitempty"`
	Subject      string       `json:"subject"`
	Chapter      string       `json:"chapter"`
	Topic        string       `json:"topic,omitempty"`
	Difficulty   Difficulty   `json:"difficulty"`
	QuestionType QuestionType `json:"question_type"`
	QuestionText string       `json:"question_text"`
	Options      interface{}  `json:"options,omitempty"`
	Marks        int          `json:"marks"`
}

// AnswerKeyEntry holds the grading data for one paper question. Position
// is 1-based and mirrors the paper's question order exactly.
type AnswerKeyEntry struct {
	Position      int       `json:"position"`
	QuestionID    uuid.UUID `json:"question_id"`
	CorrectAnswer string    `json:"correct_answer"`
	Marks         int       `json:"marks"`
	SolutionText  string    `json:"solution_text,omitempty"`
	Reference     string    `json:"reference,omitempty"`
}

// AnswerKey carries the grading data for a whole paper. Answers is a
// parallel list to the paper's questions: Answers[i] grades Questions[i].
type AnswerKey struct {
	Answers        []AnswerKeyEntry `json:"answers"`
	TotalQuestions int              `json:"total_questions"`
	TotalMarks     int              `json:"total_marks"`
}

// Entry returns the grading data for the given question, if present.
func (k AnswerKey) Entry(questionID uuid.UUID) (AnswerKeyEntry, bool) {
	for _, e := range k.Answers {
		if e.QuestionID == questionID {
			return e, true
		}
	}
	return AnswerKeyEntry{}, false
}

// SectionResult describes how one paper section was filled.
type SectionResult struct {
	Subject   string              `json:"subject"`
	Requested map[Difficulty]int  `json:"requested"`
	Actual    map[Difficulty]int  `json:"actual"`
	Outcome   DistributionOutcome `json:"outcome"`
}

// PaperMetadata records the generation outcome for auditing and for the
// UI to surface when a paper deviates from the requested distribution.
// All counts describe the final selected set, not the requested targets.
type PaperMetadata struct {
	RequestedCounts map[Difficulty]int  `json:"requested_counts"`
	ActualCounts    map[Difficulty]int  `json:"actual_counts"`
	CountsBySubject map[string]int      `json:"counts_by_subject"`
	CountsByChapter map[string]int      `json:"counts_by_chapter"`
	Outcome         DistributionOutcome `json:"outcome"`
	Sections        []SectionResult     `json:"sections,omitempty"`
	RandomizedOrder bool                `json:"randomized_order"`
}

// QuestionPaper is a fully assembled paper ready to be served. Custom
// papers are untimed (DurationMinutes 0); exam-template papers carry the
// structure's fixed duration.
type QuestionPaper struct {
	ID              uuid.UUID       `json:"id"`
	UserID          *int            `json:"user_id,omitempty"`
	Title           string          `json:"title"`
	ExamType        ExamType        `json:"exam_type,omitempty"`
	Questions       []PaperQuestion `json:"questions"`
	TotalQuestions  int             `json:"total_questions"`
	TotalMarks      int             `json:"total_marks"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Metadata        PaperMetadata   `json:"metadata"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaperSummary is the lightweight listing view of a paper, without the
// question payload.
type PaperSummary struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	ExamType        ExamType            `json:"exam_type,omitempty"`
	TotalQuestions  int                 `json:"total_questions"`
	TotalMarks      int                 `json:"total_marks"`
	DurationMinutes int                 `json:"duration_minutes,omitempty"`
	Outcome         DistributionOutcome `json:"outcome"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Attempt is a persisted, graded paper submission.
type Attempt struct {
	ID          int              `json:"id"`
	PaperID     uuid.UUID        `json:"paper_id"`
	UserID      int              `json:"user_id"`
	PaperTitle  string           `json:"paper_title,omitempty"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"max_score"`
	Attempted   int              `json:"attempted"`
	Correct     int              `json:"correct"`
	Accuracy    float64          `json:"accuracy"`
	Results     []QuestionResult `json:"results,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// GeneratePaperRequest is the payload for generating a custom paper.
type GeneratePaperRequest struct {
	Title                  string             `json:"title" binding:"omitempty,max=200"`
	Subjects               []string           `json:"subjects" binding:"required,min=1,max=10,dive,min=2,max=100"`
	Chapters               []string           `json:"chapters" binding:"omitempty,max=50,dive,min=1,max=150"`
	Topics                 []string           `json:"topics" binding:"omitempty,max=50,dive,min=1,max=150"`
	QuestionCount          int                `json:"question_count" binding:"required,min=1,max=200"`
	DifficultyDistribution map[string]float64 `json:"difficulty_distribution" binding:"omitempty,difficulty_distribution"`
	IncludeSolutions       bool               `json:"include_solutions"`
	RandomizeOrder         bool               `json:"randomize_order"`
}

// GenerateExamPaperRequest is the payload for generating a paper from a
// predefined exam structure.
type GenerateExamPaperRequest struct {
	ExamType string `json:"exam_type" binding:"required,oneof=JEE_MAIN JEE_ADVANCED NEET"`
	Title    string `json:"title" binding:"omitempty,max=200"`
}

// SubmitAttemptRequest is the payload for submitting answers to a paper.
// Keys are question IDs, values the chosen answers. Unanswered questions
// may simply be omitted.
type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// CheckAnswerRequest is the payload for instant single-answer feedback.
type CheckAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Answer     string `json:"answer" binding:"required,max=100"`
}

// CheckAnswerResult is the outcome of an instant answer check.
type CheckAnswerResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Correct       bool      `json:"correct"`
	CorrectAnswer string    `json:"correct_answer"`
}

// QuestionResult is the per-question outcome of a graded attempt.
type QuestionResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Subject       string    `json:"subject"`
	Chapter       string    `json:"chapter"`
	Topic         string    `json:"topic,omitempty"`
	GivenAnswer   string    `json:"given_answer,omitempty"`
	CorrectAnswer string    `json:"correct_answer"`
	SolutionText  string    `json:"solution_text,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	Correct       bool      `json:"correct"`
	Attempted     bool      `json:"attempted"`
	MarksAwarded  int       `json:"marks_awarded"`
}

// AttemptResult is the graded outcome of a paper submission.
type AttemptResult struct {
	PaperID     uuid.UUID        `json:"paper_id"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"max_score"`
	Attempted   int              `json:"attempted"`
	Correct     int              `json:"correct"`
	Accuracy    float64          `json:"accuracy"`
	Results     []QuestionResult `json:"results"`
	SubmittedAt time.Time        `json:"submitted_at"`
}
