package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// ─── In-memory fakes ────────────────────────────────────────────────────────

type fakeQuestionSource struct {
	all       []model.Question
	bySubject map[string][]model.Question
	err       error
	filters   []model.QuestionFilter
}

func (f *fakeQuestionSource) Find(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	if f.bySubject != nil && len(filter.Subjects) == 1 {
		return f.bySubject[filter.Subjects[0]], nil
	}
	return f.all, nil
}

type fakePaperStore struct {
	papers    map[uuid.UUID]*model.QuestionPaper
	keys      map[uuid.UUID]model.AnswerKey
	createErr error
}

func newFakePaperStore() *fakePaperStore {
	return &fakePaperStore{
		papers: map[uuid.UUID]*model.QuestionPaper{},
		keys:   map[uuid.UUID]model.AnswerKey{},
	}
}

func (f *fakePaperStore) Create(_ context.Context, paper *model.QuestionPaper, key model.AnswerKey) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.papers[paper.ID] = paper
	f.keys[paper.ID] = key
	return nil
}

func (f *fakePaperStore) GetByID(_ context.Context, id uuid.UUID) (*model.QuestionPaper, model.AnswerKey, error) {
	p, ok := f.papers[id]
	if !ok {
		return nil, model.AnswerKey{}, pgx.ErrNoRows
	}
	return p, f.keys[id], nil
}

func (f *fakePaperStore) ListByUser(_ context.Context, userID, limit, offset int) ([]model.PaperSummary, int, error) {
	var out []model.PaperSummary
	for _, p := range f.papers {
		if p.UserID != nil && *p.UserID == userID {
			out = append(out, model.PaperSummary{ID: p.ID, Title: p.Title})
		}
	}
	return out, len(out), nil
}

func (f *fakePaperStore) RecentIDs(_ context.Context, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.papers))
	for id := range f.papers {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePaperStore) Delete(_ context.Context, id uuid.UUID, userID int) (bool, error) {
	p, ok := f.papers[id]
	if !ok || p.UserID == nil || *p.UserID != userID {
		return false, nil
	}
	delete(f.papers, id)
	delete(f.keys, id)
	return true, nil
}

type fakeAttemptStore struct {
	attempts []*model.Attempt
}

func (f *fakeAttemptStore) Create(_ context.Context, a *model.Attempt) error {
	a.ID = len(f.attempts) + 1
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeAttemptStore) ListByUser(_ context.Context, userID, limit, offset int) ([]model.Attempt, int, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAttemptStore) GetByID(_ context.Context, id, userID int) (*model.Attempt, error) {
	for _, a := range f.attempts {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeProgressRecorder struct {
	deltas []model.AttemptDelta
	day    time.Time
	calls  int
}

func (f *fakeProgressRecorder) ApplyDeltas(_ context.Context, _ int, deltas []model.AttemptDelta, day time.Time) error {
	f.calls++
	f.deltas = deltas
	f.day = day
	return nil
}

// newTestPaperService wires the service against the in-memory fakes. The
// redis client points at nothing: cache writes fail soft, so these tests
// exercise the database path.
func newTestPaperService(qs QuestionSource, ps PaperStore, as AttemptStore, pr ProgressRecorder) *PaperService {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	return NewPaperService(qs, ps, as, pr, rdb, time.Minute, zerolog.Nop())
}

func subjectBank(subject string, perDifficulty int) []model.Question {
	var out []model.Question
	for _, d := range model.Difficulties {
		for i := 0; i < perDifficulty; i++ {
			out = append(out, model.Question{
				ID:         uuid.New(),
				Subject:    subject,
				Chapter:    subject + " Basics",
				Difficulty: d,
			})
		}
	}
	return out
}

// ─── Generation ─────────────────────────────────────────────────────────────

func TestGenerateCustomPaper(t *testing.T) {
	qs := &fakeQuestionSource{all: questionBank(map[model.Difficulty]int{
		model.DifficultyEasy:   21,
		model.DifficultyMedium: 21,
		model.DifficultyHard:   21,
	})}
	ps := newFakePaperStore()
	svc := newTestPaperService(qs, ps, &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 7
	paper, err := svc.Generate(context.Background(), &userID, model.PaperConfig{
		Subjects:      []string{"Physics"},
		QuestionCount: 10,
		DifficultyDistribution: map[model.Difficulty]float64{
			model.DifficultyEasy:   0.3,
			model.DifficultyMedium: 0.5,
			model.DifficultyHard:   0.2,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if paper.TotalQuestions != 10 || len(paper.Questions) != 10 {
		t.Errorf("want 10 questions, got %d", len(paper.Questions))
	}
	if paper.TotalMarks != 40 {
		t.Errorf("want 40 total marks, got %d", paper.TotalMarks)
	}
	if paper.DurationMinutes != 0 {
		t.Errorf("custom papers are untimed, got duration %d", paper.DurationMinutes)
	}
	if paper.Title != "Physics Practice Paper" {
		t.Errorf("unexpected derived title %q", paper.Title)
	}
	if paper.UserID == nil || *paper.UserID != 7 {
		t.Error("paper not attributed to its requester")
	}
	if paper.Metadata.Outcome != model.OutcomeExact {
		t.Errorf("want outcome exact, got %q", paper.Metadata.Outcome)
	}
	if paper.Metadata.RequestedCounts[model.DifficultyMedium] != 5 {
		t.Errorf("requested counts not recorded: %v", paper.Metadata.RequestedCounts)
	}

	stored, ok := ps.papers[paper.ID]
	if !ok {
		t.Fatal("paper not persisted")
	}
	if stored.TotalMarks != 40 {
		t.Errorf("persisted paper differs: %d marks", stored.TotalMarks)
	}
	key := ps.keys[paper.ID]
	if key.TotalQuestions != 10 || key.TotalMarks != 40 {
		t.Errorf("answer key mismatch: %d questions, %d marks", key.TotalQuestions, key.TotalMarks)
	}

	if len(qs.filters) != 1 || len(qs.filters[0].Subjects) != 1 || qs.filters[0].Subjects[0] != "Physics" {
		t.Errorf("candidate query filter wrong: %+v", qs.filters)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 1
	_, err := svc.Generate(context.Background(), &userID, model.PaperConfig{
		Subjects:      []string{"Astronomy"},
		QuestionCount: 10,
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("want ErrNoCandidates, got %v", err)
	}
}

func TestGenerateFindError(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{err: errors.New("db down")}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 1
	_, err := svc.Generate(context.Background(), &userID, model.PaperConfig{Subjects: []string{"Physics"}, QuestionCount: 5})
	if err == nil || errors.Is(err, ErrNoCandidates) {
		t.Fatalf("store failure must not be reported as an empty pool, got %v", err)
	}
}

func TestGenerateExamPaper(t *testing.T) {
	qs := &fakeQuestionSource{bySubject: map[string][]model.Question{
		"Physics":     subjectBank("Physics", 20),
		"Chemistry":   subjectBank("Chemistry", 20),
		"Mathematics": subjectBank("Mathematics", 20),
	}}
	ps := newFakePaperStore()
	svc := newTestPaperService(qs, ps, &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 3
	paper, err := svc.Generate(context.Background(), &userID, model.PaperConfig{ExamType: model.ExamTypeJEEMain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if paper.TotalQuestions != 90 {
		t.Errorf("JEE Main paper must have 90 questions, got %d", paper.TotalQuestions)
	}
	if paper.TotalMarks != 360 || paper.DurationMinutes != 180 {
		t.Errorf("want 360 marks / 180 minutes, got %d / %d", paper.TotalMarks, paper.DurationMinutes)
	}
	if paper.ExamType != model.ExamTypeJEEMain {
		t.Errorf("exam type not carried onto the paper: %q", paper.ExamType)
	}
	if paper.Title != "JEE Main Mock Test" {
		t.Errorf("unexpected default title %q", paper.Title)
	}
	if paper.Metadata.Outcome != model.OutcomeExact {
		t.Errorf("ample bank should yield exact outcome, got %q", paper.Metadata.Outcome)
	}

	if len(paper.Metadata.Sections) != 3 {
		t.Fatalf("want 3 section results, got %d", len(paper.Metadata.Sections))
	}
	for i, subject := range []string{"Physics", "Chemistry", "Mathematics"} {
		if paper.Metadata.Sections[i].Subject != subject {
			t.Errorf("section %d: want %s, got %s", i, subject, paper.Metadata.Sections[i].Subject)
		}
	}

	for _, q := range paper.Questions {
		if q.Marks != 4 {
			t.Fatalf("structure awards 4 marks per question, got %d", q.Marks)
		}
	}
	if key := ps.keys[paper.ID]; key.TotalMarks != 360 {
		t.Errorf("answer key total marks %d, want 360", key.TotalMarks)
	}
}

func TestGenerateExamAbortsWhenSectionEmpty(t *testing.T) {
	qs := &fakeQuestionSource{bySubject: map[string][]model.Question{
		"Physics":     subjectBank("Physics", 20),
		"Mathematics": subjectBank("Mathematics", 20),
		// No Chemistry in the bank.
	}}
	ps := newFakePaperStore()
	svc := newTestPaperService(qs, ps, &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 3
	_, err := svc.Generate(context.Background(), &userID, model.PaperConfig{ExamType: model.ExamTypeJEEMain})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("want ErrNoCandidates, got %v", err)
	}
	if !strings.Contains(err.Error(), "Chemistry") {
		t.Errorf("error should name the empty section, got %q", err)
	}
	if len(ps.papers) != 0 {
		t.Error("a partially generated mock test must not be persisted")
	}
}

func TestGenerateExamUnknownType(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	userID := 3
	_, err := svc.Generate(context.Background(), &userID, model.PaperConfig{ExamType: "BITSAT"})
	if !errors.Is(err, ErrUnknownExamType) {
		t.Fatalf("want ErrUnknownExamType, got %v", err)
	}
}

func TestRankOutcomeOrdering(t *testing.T) {
	if rankOutcome(model.OutcomeExact) >= rankOutcome(model.OutcomeSameDifficultyBackfill) ||
		rankOutcome(model.OutcomeSameDifficultyBackfill) >= rankOutcome(model.OutcomeCrossDifficultyFallback) {
		t.Fatal("outcome severity ordering broken")
	}
}

// ─── Grading ────────────────────────────────────────────────────────────────

// seedPaper stores a 3-question paper (two Physics, one Chemistry) whose
// correct answers are B, C, A.
func seedPaper(ps *fakePaperStore) (uuid.UUID, []uuid.UUID) {
	paperID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	userID := 7
	ps.papers[paperID] = &model.QuestionPaper{
		ID:     paperID,
		UserID: &userID,
		Title:  "Seeded Paper",
		Questions: []model.PaperQuestion{
			{ID: ids[0], Number: 1, Subject: "Physics", Chapter: "Mechanics", Topic: "Kinematics", Marks: 4},
			{ID: ids[1], Number: 2, Subject: "Physics", Chapter: "Mechanics", Topic: "Kinematics", Marks: 4},
			{ID: ids[2], Number: 3, Subject: "Chemistry", Chapter: "Organic", Topic: "Hydrocarbons", Marks: 4},
		},
		TotalQuestions: 3,
		TotalMarks:     12,
	}
	ps.keys[paperID] = model.AnswerKey{
		Answers: []model.AnswerKeyEntry{
			{Position: 1, QuestionID: ids[0], CorrectAnswer: "B", Marks: 4},
			{Position: 2, QuestionID: ids[1], CorrectAnswer: "C", Marks: 4},
			{Position: 3, QuestionID: ids[2], CorrectAnswer: "A", Marks: 4},
		},
		TotalQuestions: 3,
		TotalMarks:     12,
	}
	return paperID, ids
}

func TestSubmitAttempt(t *testing.T) {
	ps := newFakePaperStore()
	as := &fakeAttemptStore{}
	pr := &fakeProgressRecorder{}
	svc := newTestPaperService(&fakeQuestionSource{}, ps, as, pr)

	paperID, ids := seedPaper(ps)

	result, err := svc.SubmitAttempt(context.Background(), paperID, 7, map[string]string{
		ids[0].String(): " b ", // correct after trimming and case folding
		ids[1].String(): "A",   // wrong
		// ids[2] left unanswered
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Attempted != 2 || result.Correct != 1 {
		t.Errorf("want 2 attempted / 1 correct, got %d / %d", result.Attempted, result.Correct)
	}
	if result.Score != 4 || result.MaxScore != 12 {
		t.Errorf("want score 4/12, got %d/%d", result.Score, result.MaxScore)
	}
	if result.Accuracy != 50 {
		t.Errorf("want accuracy 50, got %v", result.Accuracy)
	}
	if len(result.Results) != 3 {
		t.Fatalf("results must cover every question, got %d", len(result.Results))
	}
	if result.Results[2].Attempted {
		t.Error("unanswered question marked attempted")
	}
	if !result.Results[0].Correct || result.Results[0].MarksAwarded != 4 {
		t.Error("normalized correct answer not awarded")
	}

	if len(as.attempts) != 1 {
		t.Fatalf("attempt not persisted")
	}
	if as.attempts[0].UserID != 7 || as.attempts[0].Score != 4 {
		t.Errorf("persisted attempt mismatch: %+v", as.attempts[0])
	}

	// Both answered questions share one area; the unanswered one is excluded.
	if pr.calls != 1 || len(pr.deltas) != 1 {
		t.Fatalf("want one delta batch with one area, got %d calls / %d deltas", pr.calls, len(pr.deltas))
	}
	d := pr.deltas[0]
	if d.Subject != "Physics" || d.Attempted != 2 || d.Correct != 1 {
		t.Errorf("unexpected delta: %+v", d)
	}
	if !pr.day.Equal(result.SubmittedAt) {
		t.Error("progress day differs from submission time")
	}
}

func TestSubmitAttemptPaperMissing(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	_, err := svc.SubmitAttempt(context.Background(), uuid.New(), 7, map[string]string{})
	if !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("want ErrPaperNotFound, got %v", err)
	}
}

func TestGradeAttemptAllUnanswered(t *testing.T) {
	ps := newFakePaperStore()
	paperID, _ := seedPaper(ps)
	paper, key := ps.papers[paperID], ps.keys[paperID]

	result := gradeAttempt(paper, key, map[string]string{}, time.Now())

	if result.Attempted != 0 || result.Correct != 0 || result.Score != 0 {
		t.Errorf("blank submission must score zero, got %+v", result)
	}
	if result.Accuracy != 0 {
		t.Errorf("accuracy of a blank submission must be 0, got %v", result.Accuracy)
	}
	if len(result.Results) != 3 {
		t.Fatalf("results must still cover every question, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		if r.Attempted || r.MarksAwarded != 0 {
			t.Fatalf("unanswered question graded: %+v", r)
		}
	}
}

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		given, correct string
		want           bool
	}{
		{"B", "B", true},
		{"b", "B", true},
		{"  b\t", "B", true},
		{"42", "42", true},
		{"A", "B", false},
		{"", "B", false},
	}
	for _, tt := range tests {
		if got := answersMatch(tt.given, tt.correct); got != tt.want {
			t.Errorf("answersMatch(%q, %q) = %v, want %v", tt.given, tt.correct, got, tt.want)
		}
	}
}

func TestAttemptDeltas(t *testing.T) {
	results := []model.QuestionResult{
		{Subject: "Physics", Chapter: "Optics", Topic: "Ray Optics", Attempted: true, Correct: true},
		{Subject: "Physics", Chapter: "Optics", Topic: "Ray Optics", Attempted: true, Correct: false},
		{Subject: "Chemistry", Chapter: "Organic", Topic: "Hydrocarbons", Attempted: true, Correct: true},
		{Subject: "Physics", Chapter: "Optics", Topic: "Wave Optics", Attempted: false},
	}

	deltas := attemptDeltas(results)

	if len(deltas) != 2 {
		t.Fatalf("want 2 areas, got %d", len(deltas))
	}
	// Deterministic order: sorted by subject, chapter, topic.
	if deltas[0].Subject != "Chemistry" || deltas[1].Subject != "Physics" {
		t.Errorf("deltas not in sorted order: %+v", deltas)
	}
	if deltas[1].Attempted != 2 || deltas[1].Correct != 1 {
		t.Errorf("Physics area not accumulated: %+v", deltas[1])
	}
	for _, d := range deltas {
		if d.Topic == "Wave Optics" {
			t.Error("unattempted question leaked into deltas")
		}
	}
}

// ─── Listing and deletion ───────────────────────────────────────────────────

func TestListAttemptsPaginationClamps(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	attempts, pagination, err := svc.ListAttempts(context.Background(), 7, 0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts == nil {
		t.Error("empty history must be an empty slice, not nil")
	}
	if pagination.Page != 1 || pagination.PerPage != 100 {
		t.Errorf("want page 1 / per_page 100, got %d / %d", pagination.Page, pagination.PerPage)
	}
}

func TestGetAttemptNotFound(t *testing.T) {
	svc := newTestPaperService(&fakeQuestionSource{}, newFakePaperStore(), &fakeAttemptStore{}, &fakeProgressRecorder{})

	_, err := svc.GetAttempt(context.Background(), 99, 7)
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("want ErrAttemptNotFound, got %v", err)
	}
}

func TestDeletePaper(t *testing.T) {
	ps := newFakePaperStore()
	svc := newTestPaperService(&fakeQuestionSource{}, ps, &fakeAttemptStore{}, &fakeProgressRecorder{})
	paperID, _ := seedPaper(ps)

	if err := svc.DeletePaper(context.Background(), paperID, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ps.papers[paperID]; ok {
		t.Error("paper still present after deletion")
	}

	if err := svc.DeletePaper(context.Background(), paperID, 7); !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("want ErrPaperNotFound on double delete, got %v", err)
	}
}

func TestDeletePaperWrongOwner(t *testing.T) {
	ps := newFakePaperStore()
	svc := newTestPaperService(&fakeQuestionSource{}, ps, &fakeAttemptStore{}, &fakeProgressRecorder{})
	paperID, _ := seedPaper(ps)

	if err := svc.DeletePaper(context.Background(), paperID, 99); !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("someone else's paper must look like it does not exist, got %v", err)
	}
	if _, ok := ps.papers[paperID]; !ok {
		t.Error("paper was deleted by a non-owner")
	}
}
