package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultMarks is awarded per question unless a question or exam
// structure says otherwise.
const DefaultMarks = 4

// Difficulty grades how hard a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in canonical order (easiest first).
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ExamType identifies the national entrance exam a question targets.
type ExamType string

const (
	ExamTypeJEEMain     ExamType = "JEE_MAIN"
	ExamTypeJEEAdvanced ExamType = "JEE_ADVANCED"
	ExamTypeNEET        ExamType = "NEET"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeNumerical      QuestionType = "NUMERICAL"
)

// Question represents a single bank question. The (subject, chapter,
// topic, difficulty) tuple is treated as immutable once papers reference
// the question; editing it does not rewrite previously generated papers.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	Source        string          `json:"source,omitempty"`
	Year          int             `json:"year,omitempty"`
	Subject       string          `json:"subject"`
	Chapter       string          `json:"chapter"`
	Topic         string          `json:"topic,omitempty"`
	Difficulty    Difficulty      `json:"difficulty"`
	ExamType      ExamType        `json:"exam_type"`
	QuestionType  QuestionType    `json:"question_type"`
	QuestionText  string          `json:"question_text"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correct_answer"`
	SolutionText  string          `json:"solution_text,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Marks         int             `json:"marks"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// QuestionPreview is the student-facing view of a bank question. The
// correct answer, solution and reference stay server-side.
type QuestionPreview struct {
	ID           uuid.UUID       `json:"id"`
	Source       string          `json:"source,omitempty"`
	Year         int             `json:"year,omitempty"`
	Subject      string          `json:"subject"`
	Chapter      string          `json:"chapter"`
	Topic        string          `json:"topic,omitempty"`
	Difficulty   Difficulty      `json:"difficulty"`
	ExamType     ExamType        `json:"exam_type"`
	QuestionType QuestionType    `json:"question_type"`
	QuestionText string          `json:"question_text"`
	Options      json.RawMessage `json:"options,omitempty"`
	Marks        int             `json:"marks"`
}

// Preview strips the grading fields from a question.
func (q Question) Preview() QuestionPreview {
	return QuestionPreview{
		ID:           q.ID,
		Source:       q.Source,
		Year:         q.Year,
		Subject:      q.Subject,
		Chapter:      q.Chapter,
		Topic:        q.Topic,
		Difficulty:   q.Difficulty,
		ExamType:     q.ExamType,
		QuestionType: q.QuestionType,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Marks:        q.Marks,
	}
}

// QuestionFilter narrows the candidate pool for listing and paper
// generation. Values within one field are OR-ed, independent fields are
// AND-ed. Zero values mean "no restriction on that dimension".
type QuestionFilter struct {
	Subjects     []string
	Chapters     []string
	Topics       []string
	Difficulties []Difficulty
	ExamType     ExamType
	ExcludeIDs   []uuid.UUID
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Source        string          `json:"source" binding:"omitempty,max=100"`
	Year          int             `json:"year" binding:"omitempty,min=1950,max=2100"`
	Subject       string          `json:"subject" binding:"required,min=2,max=100"`
	Chapter       string          `json:"chapter" binding:"required,min=2,max=150"`
	Topic         string          `json:"topic" binding:"omitempty,max=150"`
	Difficulty    string          `json:"difficulty" binding:"required,oneof=easy medium hard"`
	ExamType      string          `json:"exam_type" binding:"required,oneof=JEE_MAIN JEE_ADVANCED NEET"`
	QuestionType  string          `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE NUMERICAL"`
	QuestionText  string          `json:"question_text" binding:"required,min=1,max=5000"`
	Options       json.RawMessage `json:"options" binding:"omitempty"`
	CorrectAnswer string          `json:"correct_answer" binding:"required,max=100"`
	SolutionText  string          `json:"solution_text" binding:"omitempty,max=10000"`
	Reference     string          `json:"reference" binding:"omitempty,max=300"`
	Marks         int             `json:"marks" binding:"omitempty,min=1,max=20"`
}

// UpdateQuestionRequest is the payload for updating an existing question.
type UpdateQuestionRequest struct {
	Source        string          `json:"source" binding:"omitempty,max=100"`
	Year          int             `json:"year" binding:"omitempty,min=1950,max=2100"`
	Subject       string          `json:"subject" binding:"required,min=2,max=100"`
	Chapter       string          `json:"chapter" binding:"required,min=2,max=150"`
	Topic         string          `json:"topic" binding:"omitempty,max=150"`
	Difficulty    string          `json:"difficulty" binding:"required,oneof=easy medium hard"`
	ExamType      string          `json:"exam_type" binding:"required,oneof=JEE_MAIN JEE_ADVANCED NEET"`
	QuestionType  string          `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE NUMERICAL"`
	QuestionText  string          `json:"question_text" binding:"required,min=1,max=5000"`
	Options       json.RawMessage `json:"options" binding:"omitempty"`
	CorrectAnswer string          `json:"correct_answer" binding:"required,max=100"`
	SolutionText  string          `json:"solution_text" binding:"omitempty,max=10000"`
	Reference     string          `json:"reference" binding:"omitempty,max=300"`
	Marks         int             `json:"marks" binding:"omitempty,min=1,max=20"`
}

// ImportQuestionsRequest is the payload for bulk importing questions.
type ImportQuestionsRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,max=500,dive"`
}
