package service

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

func newTestRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// questionBank builds a pool of distinct questions per difficulty, all in
// one subject so the draw tests exercise difficulty handling alone.
func questionBank(counts map[model.Difficulty]int) []model.Question {
	var out []model.Question
	for _, d := range model.Difficulties {
		for i := 0; i < counts[d]; i++ {
			out = append(out, model.Question{
				ID:           uuid.New(),
				Subject:      "Physics",
				Chapter:      "Mechanics",
				Topic:        "Kinematics",
				Difficulty:   d,
				QuestionText: "bank question",
			})
		}
	}
	return out
}

func TestNormalizeDistribution(t *testing.T) {
	t.Run("EmptyFallsBackToDefault", func(t *testing.T) {
		got := normalizeDistribution(nil)
		if got[model.DifficultyEasy] != 0.3 || got[model.DifficultyMedium] != 0.5 || got[model.DifficultyHard] != 0.2 {
			t.Fatalf("unexpected default distribution: %v", got)
		}
	})

	t.Run("PercentStyleDividedBy100", func(t *testing.T) {
		got := normalizeDistribution(map[model.Difficulty]float64{
			model.DifficultyEasy:   30,
			model.DifficultyMedium: 50,
			model.DifficultyHard:   20,
		})
		if got[model.DifficultyEasy] != 0.3 || got[model.DifficultyMedium] != 0.5 || got[model.DifficultyHard] != 0.2 {
			t.Fatalf("percent-style input not normalized: %v", got)
		}
	})

	t.Run("FractionStylePassesThrough", func(t *testing.T) {
		in := map[model.Difficulty]float64{
			model.DifficultyEasy:   0.25,
			model.DifficultyMedium: 0.5,
			model.DifficultyHard:   0.25,
		}
		got := normalizeDistribution(in)
		for d, want := range in {
			if got[d] != want {
				t.Fatalf("fraction %s changed: want %v, got %v", d, want, got[d])
			}
		}
	})

	t.Run("ZeroWeightsDoNotForceFractionStyle", func(t *testing.T) {
		got := normalizeDistribution(map[model.Difficulty]float64{
			model.DifficultyEasy: 0,
			model.DifficultyHard: 200,
		})
		if got[model.DifficultyHard] != 2.0 {
			t.Fatalf("expected 200 to be read as percent, got %v", got[model.DifficultyHard])
		}
	})
}

func TestDifficultyTargets(t *testing.T) {
	third := 1.0 / 3.0
	tests := []struct {
		name  string
		count int
		dist  map[model.Difficulty]float64
		want  map[model.Difficulty]int
	}{
		{
			name:  "DefaultMix",
			count: 10,
			dist:  map[model.Difficulty]float64{model.DifficultyEasy: 0.3, model.DifficultyMedium: 0.5, model.DifficultyHard: 0.2},
			want:  map[model.Difficulty]int{model.DifficultyEasy: 3, model.DifficultyMedium: 5, model.DifficultyHard: 2},
		},
		{
			name:  "TruncationRemainderGoesToMedium",
			count: 90,
			dist:  map[model.Difficulty]float64{model.DifficultyEasy: 0.4, model.DifficultyMedium: 0.45, model.DifficultyHard: 0.15},
			want:  map[model.Difficulty]int{model.DifficultyEasy: 36, model.DifficultyMedium: 41, model.DifficultyHard: 13},
		},
		{
			name:  "EvenThirds",
			count: 10,
			dist:  map[model.Difficulty]float64{model.DifficultyEasy: third, model.DifficultyMedium: third, model.DifficultyHard: third},
			want:  map[model.Difficulty]int{model.DifficultyEasy: 3, model.DifficultyMedium: 4, model.DifficultyHard: 3},
		},
		{
			name:  "IncompleteDistributionFillsMedium",
			count: 10,
			dist:  map[model.Difficulty]float64{model.DifficultyEasy: 0.5},
			want:  map[model.Difficulty]int{model.DifficultyEasy: 5, model.DifficultyMedium: 5, model.DifficultyHard: 0},
		},
		{
			name:  "OvershootTrimmedHardestFirst",
			count: 10,
			dist:  map[model.Difficulty]float64{model.DifficultyEasy: 0.8, model.DifficultyMedium: 0.8, model.DifficultyHard: 0.8},
			want:  map[model.Difficulty]int{model.DifficultyEasy: 8, model.DifficultyMedium: 0, model.DifficultyHard: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := difficultyTargets(tt.count, tt.dist)
			sum := 0
			for _, d := range model.Difficulties {
				if got[d] != tt.want[d] {
					t.Errorf("%s: want %d, got %d", d, tt.want[d], got[d])
				}
				sum += got[d]
			}
			if sum != tt.count {
				t.Errorf("targets sum to %d, want %d", sum, tt.count)
			}
		})
	}
}

func TestDrawByDifficultyExact(t *testing.T) {
	pool := questionBank(map[model.Difficulty]int{
		model.DifficultyEasy:   21,
		model.DifficultyMedium: 21,
		model.DifficultyHard:   21,
	})
	targets := map[model.Difficulty]int{
		model.DifficultyEasy:   3,
		model.DifficultyMedium: 5,
		model.DifficultyHard:   2,
	}

	selected, outcome := drawByDifficulty(newTestRng(), pool, targets)

	if len(selected) != 10 {
		t.Fatalf("want 10 questions, got %d", len(selected))
	}
	if outcome != model.OutcomeExact {
		t.Fatalf("want outcome %q, got %q", model.OutcomeExact, outcome)
	}
	counts := countByDifficulty(selected)
	for d, want := range targets {
		if counts[d] != want {
			t.Errorf("%s: want %d, got %d", d, want, counts[d])
		}
	}
	seen := map[uuid.UUID]bool{}
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in selection", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestDrawByDifficultyCrossFallback(t *testing.T) {
	pool := questionBank(map[model.Difficulty]int{
		model.DifficultyEasy:   1,
		model.DifficultyMedium: 20,
		model.DifficultyHard:   20,
	})
	targets := map[model.Difficulty]int{
		model.DifficultyEasy:   3,
		model.DifficultyMedium: 5,
		model.DifficultyHard:   2,
	}

	selected, outcome := drawByDifficulty(newTestRng(), pool, targets)

	if len(selected) != 10 {
		t.Fatalf("count completeness beats distribution exactness: want 10, got %d", len(selected))
	}
	if outcome != model.OutcomeCrossDifficultyFallback {
		t.Fatalf("want outcome %q, got %q", model.OutcomeCrossDifficultyFallback, outcome)
	}
	// The easy shortfall of 2 is covered by medium, the first difficulty
	// with remaining candidates.
	counts := countByDifficulty(selected)
	want := map[model.Difficulty]int{
		model.DifficultyEasy:   1,
		model.DifficultyMedium: 7,
		model.DifficultyHard:   2,
	}
	for d, n := range want {
		if counts[d] != n {
			t.Errorf("%s: want %d, got %d", d, n, counts[d])
		}
	}
}

func TestDrawByDifficultyPoolSmallerThanCount(t *testing.T) {
	pool := questionBank(map[model.Difficulty]int{model.DifficultyMedium: 4})
	targets := map[model.Difficulty]int{
		model.DifficultyEasy:   3,
		model.DifficultyMedium: 5,
		model.DifficultyHard:   2,
	}

	selected, outcome := drawByDifficulty(newTestRng(), pool, targets)

	if len(selected) != 4 {
		t.Fatalf("want the whole pool (4), got %d", len(selected))
	}
	if outcome != model.OutcomeCrossDifficultyFallback {
		t.Fatalf("unmet targets must report %q, got %q", model.OutcomeCrossDifficultyFallback, outcome)
	}
}

func TestDrawByDifficultyCollapsesDuplicateIDs(t *testing.T) {
	dup := uuid.New()
	pool := []model.Question{
		{ID: dup, Difficulty: model.DifficultyEasy},
		{ID: dup, Difficulty: model.DifficultyEasy},
		{ID: dup, Difficulty: model.DifficultyEasy},
		{ID: uuid.New(), Difficulty: model.DifficultyEasy},
		{ID: uuid.New(), Difficulty: model.DifficultyEasy},
	}
	targets := map[model.Difficulty]int{model.DifficultyEasy: 5}

	selected, _ := drawByDifficulty(newTestRng(), pool, targets)

	if len(selected) != 3 {
		t.Fatalf("want 3 distinct questions, got %d", len(selected))
	}
	seen := map[uuid.UUID]bool{}
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate ID %s survived the draw", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestDedupByID(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	in := []model.Question{{ID: a}, {ID: b}, {ID: a}, {ID: c}, {ID: b}}

	out := dedupByID(in)

	if len(out) != 3 {
		t.Fatalf("want 3 questions, got %d", len(out))
	}
	for i, want := range []uuid.UUID{a, b, c} {
		if out[i].ID != want {
			t.Errorf("position %d: want %s, got %s", i, want, out[i].ID)
		}
	}
}

func TestPaperTitle(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.PaperConfig
		want string
	}{
		{"ExplicitTitleWins", model.PaperConfig{Title: "Evening Drill", Subjects: []string{"Physics"}}, "Evening Drill"},
		{"SubjectsSortedAlphabetically", model.PaperConfig{Subjects: []string{"Physics", "Chemistry"}}, "Chemistry, Physics Practice Paper"},
		{"NoSubjects", model.PaperConfig{}, "Mixed Topics Practice Paper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paperTitle(tt.cfg); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildPaperQuestions(t *testing.T) {
	questions := []model.Question{
		{ID: uuid.New(), Subject: "Physics", Marks: 0},
		{ID: uuid.New(), Subject: "Chemistry", Marks: 2},
	}

	views := buildPaperQuestions(questions, nil)
	if views[0].Number != 1 || views[1].Number != 2 {
		t.Errorf("numbering not sequential: %d, %d", views[0].Number, views[1].Number)
	}
	if views[0].Marks != model.DefaultMarks {
		t.Errorf("zero marks should default to %d, got %d", model.DefaultMarks, views[0].Marks)
	}
	if views[1].Marks != 2 {
		t.Errorf("explicit marks overridden: got %d", views[1].Marks)
	}

	overridden := buildPaperQuestions(questions, map[string]int{"Physics": 3})
	if overridden[0].Marks != 3 {
		t.Errorf("subject override ignored: got %d", overridden[0].Marks)
	}
	if overridden[1].Marks != 2 {
		t.Errorf("unlisted subject should keep its own marks, got %d", overridden[1].Marks)
	}
}

func TestBuildAnswerKey(t *testing.T) {
	questions := []model.Question{
		{ID: uuid.New(), Subject: "Physics", CorrectAnswer: "B", SolutionText: "use v = u + at", Reference: "NCERT XI"},
		{ID: uuid.New(), Subject: "Chemistry", CorrectAnswer: "42", Marks: 2},
	}
	views := buildPaperQuestions(questions, nil)

	key := buildAnswerKey(questions, views, false)
	if key.TotalQuestions != 2 {
		t.Fatalf("want 2 entries, got %d", key.TotalQuestions)
	}
	if key.TotalMarks != model.DefaultMarks+2 {
		t.Errorf("want total marks %d, got %d", model.DefaultMarks+2, key.TotalMarks)
	}
	if key.Answers[0].Position != 1 || key.Answers[1].Position != 2 {
		t.Errorf("positions not 1-based sequential: %d, %d", key.Answers[0].Position, key.Answers[1].Position)
	}
	if key.Answers[0].CorrectAnswer != "B" {
		t.Errorf("want correct answer B, got %q", key.Answers[0].CorrectAnswer)
	}
	if key.Answers[0].SolutionText != "" {
		t.Error("solution leaked into key without include_solutions")
	}

	withSolutions := buildAnswerKey(questions, views, true)
	if withSolutions.Answers[0].SolutionText != "use v = u + at" || withSolutions.Answers[0].Reference != "NCERT XI" {
		t.Error("include_solutions did not embed solution and reference")
	}

	if _, ok := key.Entry(questions[1].ID); !ok {
		t.Error("Entry lookup by question ID failed")
	}
	if _, ok := key.Entry(uuid.New()); ok {
		t.Error("Entry lookup found a question that is not in the key")
	}
}
