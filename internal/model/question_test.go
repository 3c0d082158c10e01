package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestQuestionPreviewStripsGradingFields(t *testing.T) {
	q := Question{
		ID:            uuid.New(),
		Source:        "JEE Main 2023",
		Year:          2023,
		Subject:       "Physics",
		Chapter:       "Kinematics",
		Topic:         "Projectile Motion",
		Difficulty:    DifficultyMedium,
		ExamType:      ExamTypeJEEMain,
		QuestionType:  QuestionTypeMultipleChoice,
		QuestionText:  "A ball is thrown at 45 degrees with speed 14 m/s. Find the range.",
		Options:       json.RawMessage(`["10 m","20 m","30 m","40 m"]`),
		CorrectAnswer: "B",
		SolutionText:  "The range formula gives 20 m.",
		Reference:     "HC Verma Ch. 6",
		Marks:         4,
	}

	p := q.Preview()
	if p.ID != q.ID || p.Subject != q.Subject || p.Chapter != q.Chapter || p.Topic != q.Topic {
		t.Error("preview dropped identity fields")
	}
	if p.QuestionText != q.QuestionText || string(p.Options) != string(q.Options) || p.Marks != q.Marks {
		t.Error("preview dropped content fields")
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal preview: %v", err)
	}
	for _, field := range []string{"correct_answer", "solution_text", "reference"} {
		if strings.Contains(string(raw), field) {
			t.Errorf("preview JSON leaks %q", field)
		}
	}
}
