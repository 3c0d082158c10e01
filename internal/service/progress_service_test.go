package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

type fakeProgressStore struct {
	records []model.ProgressRecord
	days    []time.Time
	area    *model.ProgressRecord
	deltas  []model.AttemptDelta
	day     time.Time
	deleteN int
	resetN  int
}

func (f *fakeProgressStore) ApplyDeltas(_ context.Context, _ int, deltas []model.AttemptDelta, day time.Time) error {
	f.deltas = deltas
	f.day = day
	return nil
}

func (f *fakeProgressStore) GetArea(_ context.Context, _ int, _, _, _ string) (*model.ProgressRecord, error) {
	if f.area == nil {
		return nil, pgx.ErrNoRows
	}
	return f.area, nil
}

func (f *fakeProgressStore) ListByUser(_ context.Context, _ int) ([]model.ProgressRecord, error) {
	return f.records, nil
}

func (f *fakeProgressStore) PracticeDays(_ context.Context, _, _ int) ([]time.Time, error) {
	return f.days, nil
}

func (f *fakeProgressStore) DeleteArea(_ context.Context, _ int, _, _, _ string) (int, error) {
	return f.deleteN, nil
}

func (f *fakeProgressStore) Reset(_ context.Context, _ int, _ string) (int, error) {
	return f.resetN, nil
}

func newTestProgressService(store *fakeProgressStore) *ProgressService {
	return NewProgressService(store, zerolog.Nop())
}

func record(subject, chapter, topic string, attempted, correct int) model.ProgressRecord {
	return model.ProgressRecord{
		Subject:   subject,
		Chapter:   chapter,
		Topic:     topic,
		Attempted: attempted,
		Correct:   correct,
		Accuracy:  model.ComputeAccuracy(correct, attempted),
	}
}

func TestRecordAttempt(t *testing.T) {
	store := &fakeProgressStore{}
	store.area = &model.ProgressRecord{Subject: "Physics", Chapter: "Optics", Topic: "Ray Optics", Attempted: 5, Correct: 4}
	svc := newTestProgressService(store)

	got, err := svc.RecordAttempt(context.Background(), 7, model.RecordAttemptRequest{
		Subject: "Physics",
		Chapter: "Optics",
		Topic:   "Ray Optics",
		Correct: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.deltas) != 1 {
		t.Fatalf("want one delta, got %d", len(store.deltas))
	}
	d := store.deltas[0]
	if d.Attempted != 1 || d.Correct != 1 {
		t.Errorf("correct answer should count 1/1, got %d/%d", d.Attempted, d.Correct)
	}
	if got.Attempted != 5 {
		t.Errorf("refreshed record not returned: %+v", got)
	}
}

func TestRecordAttemptWrongAnswer(t *testing.T) {
	store := &fakeProgressStore{area: &model.ProgressRecord{}}
	svc := newTestProgressService(store)

	if _, err := svc.RecordAttempt(context.Background(), 7, model.RecordAttemptRequest{
		Subject: "Physics", Chapter: "Optics", Correct: false,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.deltas[0].Attempted != 1 || store.deltas[0].Correct != 0 {
		t.Errorf("wrong answer should count 1/0, got %+v", store.deltas[0])
	}
}

func TestGetUserProgress(t *testing.T) {
	store := &fakeProgressStore{records: []model.ProgressRecord{
		record("Physics", "Mechanics", "Kinematics", 10, 7),
		record("Chemistry", "Organic", "Hydrocarbons", 6, 3),
	}}
	svc := newTestProgressService(store)

	progress, err := svc.GetUserProgress(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.TotalAttempted != 16 || progress.TotalCorrect != 10 {
		t.Errorf("want totals 16/10, got %d/%d", progress.TotalAttempted, progress.TotalCorrect)
	}
	if progress.OverallAccuracy != 62.5 {
		t.Errorf("want overall accuracy 62.5, got %v", progress.OverallAccuracy)
	}
}

func TestGetUserProgressEmpty(t *testing.T) {
	svc := newTestProgressService(&fakeProgressStore{})

	progress, err := svc.GetUserProgress(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Records == nil {
		t.Error("fresh users must get an empty slice, not nil")
	}
	if progress.TotalAttempted != 0 || progress.OverallAccuracy != 0 {
		t.Errorf("fresh users must have zeroed totals: %+v", progress)
	}
}

func TestGetWeakAreasDefaults(t *testing.T) {
	// Kinematics (20%) and Quadratics (50%) fall under the default 60%
	// threshold; Ray Optics has too few attempts, Mole Concept sits above.
	store := &fakeProgressStore{records: []model.ProgressRecord{
		record("Physics", "Mechanics", "Kinematics", 5, 1),
		record("Physics", "Optics", "Ray Optics", 2, 0),
		record("Chemistry", "Physical", "Mole Concept", 10, 7),
		record("Mathematics", "Algebra", "Quadratics", 4, 2),
	}}
	svc := newTestProgressService(store)

	weak, err := svc.GetWeakAreas(context.Background(), 7, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("want 2 weak areas with default thresholds, got %d", len(weak))
	}
	if weak[0].Accuracy != 20 || weak[1].Accuracy != 50 {
		t.Errorf("weak areas not sorted weakest first: %+v", weak)
	}
}

func TestGetWeakAreasCustomParams(t *testing.T) {
	store := &fakeProgressStore{records: []model.ProgressRecord{
		record("Physics", "Mechanics", "Kinematics", 1, 1),
		record("Chemistry", "Physical", "Mole Concept", 3, 3),
	}}
	svc := newTestProgressService(store)

	// Threshold above 100 captures every area with enough attempts.
	weak, err := svc.GetWeakAreas(context.Background(), 7, 101, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("want every practiced area, got %d", len(weak))
	}
}

func TestGenerateRecommendations(t *testing.T) {
	// Kinematics (33%), Equilibrium (40%) and Ray Optics (50%) are weak;
	// Ray Optics also qualifies as under-explored and must appear once.
	// Hydrocarbons has too few attempts for weak but fits the explore
	// pass; Limits is mastered and excluded entirely.
	store := &fakeProgressStore{records: []model.ProgressRecord{
		record("Physics", "Mechanics", "Kinematics", 6, 2),
		record("Physics", "Optics", "Ray Optics", 4, 2),
		record("Chemistry", "Organic", "Hydrocarbons", 2, 1),
		record("Mathematics", "Calculus", "Limits", 20, 18),
		record("Chemistry", "Physical", "Equilibrium", 10, 4),
	}}
	svc := newTestProgressService(store)

	recs, err := svc.GenerateRecommendations(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("want 4 recommendations, got %d: %+v", len(recs), recs)
	}

	// High-priority weak areas first, weakest leading.
	if recs[0].Priority != model.PriorityHigh || recs[0].Chapter != "Mechanics" {
		t.Errorf("first recommendation should be the weakest area, got %+v", recs[0])
	}
	if recs[1].Chapter != "Physical" || recs[2].Chapter != "Optics" {
		t.Errorf("weak areas not ordered by accuracy: %+v", recs)
	}
	if recs[3].Priority != model.PriorityMedium || recs[3].Chapter != "Organic" {
		t.Errorf("explore suggestion missing or misplaced: %+v", recs[3])
	}

	// The Optics area qualifies for both passes but must not repeat.
	seen := map[string]int{}
	for _, r := range recs {
		seen[r.Subject+"/"+r.Chapter+"/"+r.Topic]++
	}
	for area, n := range seen {
		if n > 1 {
			t.Errorf("area %s recommended %d times", area, n)
		}
	}

	for _, r := range recs {
		if r.Reason == "" {
			t.Errorf("recommendation without a reason: %+v", r)
		}
	}
}

func TestGenerateRecommendationsLimitClamp(t *testing.T) {
	store := &fakeProgressStore{}
	for i := 0; i < 30; i++ {
		store.records = append(store.records,
			record("Physics", "Mechanics", string(rune('A'+i)), 10, 2))
	}
	svc := newTestProgressService(store)

	recs, err := svc.GenerateRecommendations(context.Background(), 7, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != maxRecommendationLimit {
		t.Errorf("limit not clamped to %d, got %d", maxRecommendationLimit, len(recs))
	}

	recs, err = svc.GenerateRecommendations(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != defaultRecommendationLimit {
		t.Errorf("zero limit should default to %d, got %d", defaultRecommendationLimit, len(recs))
	}
}

func TestStreakDays(t *testing.T) {
	today := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time { return today.AddDate(0, 0, -offset) }

	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{"NoHistory", nil, 0},
		{"PracticedToday", []time.Time{day(0)}, 1},
		{"StreakSurvivesUntilTomorrow", []time.Time{day(1)}, 1},
		{"BrokenStreak", []time.Time{day(2), day(3)}, 0},
		{"ThreeDayRun", []time.Time{day(0), day(1), day(2)}, 3},
		{"DuplicateDaysCollapse", []time.Time{day(0), day(0).Add(-6 * time.Hour), day(1)}, 2},
		{"GapStopsCounting", []time.Time{day(0), day(2), day(3)}, 1},
		{"RunEndingYesterday", []time.Time{day(1), day(2), day(3)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streakDays(tt.days, today); got != tt.want {
				t.Fatalf("want streak %d, got %d", tt.want, got)
			}
		})
	}
}

func TestGetStatisticsSummary(t *testing.T) {
	// Physics (83% over 12) is strong, Chemistry (38% over 8) is weak,
	// Mathematics has too few attempts to classify either way.
	now := time.Now()
	store := &fakeProgressStore{
		records: []model.ProgressRecord{
			record("Physics", "Mechanics", "Kinematics", 12, 10),
			record("Chemistry", "Organic", "Hydrocarbons", 8, 3),
			record("Mathematics", "Algebra", "Quadratics", 2, 1),
		},
		days: []time.Time{now, now.AddDate(0, 0, -1)},
	}
	svc := newTestProgressService(store)

	summary, err := svc.GetStatisticsSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalAttempted != 22 || summary.TotalCorrect != 14 {
		t.Errorf("want totals 22/14, got %d/%d", summary.TotalAttempted, summary.TotalCorrect)
	}
	if summary.SubjectsCovered != 3 || summary.ChaptersCovered != 3 {
		t.Errorf("want 3 subjects / 3 chapters, got %d / %d", summary.SubjectsCovered, summary.ChaptersCovered)
	}
	if summary.StreakDays != 2 || summary.ActiveDays != 2 {
		t.Errorf("want streak 2 / active 2, got %d / %d", summary.StreakDays, summary.ActiveDays)
	}

	if len(summary.BySubject) != 3 || summary.BySubject[0].Subject != "Chemistry" {
		t.Errorf("subjects not sorted alphabetically: %+v", summary.BySubject)
	}

	if len(summary.StrongSubjects) != 1 || summary.StrongSubjects[0].Subject != "Physics" {
		t.Errorf("want Physics as the only strong subject, got %+v", summary.StrongSubjects)
	}
	if len(summary.WeakSubjects) != 1 || summary.WeakSubjects[0].Subject != "Chemistry" {
		t.Errorf("want Chemistry as the only weak subject, got %+v", summary.WeakSubjects)
	}
}

func TestResetAll(t *testing.T) {
	store := &fakeProgressStore{resetN: 5}
	svc := newTestProgressService(store)

	result, err := svc.ResetAll(context.Background(), 7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Removed != 5 || !result.Found {
		t.Errorf("want 5 removed / found, got %+v", result)
	}
}

func TestResetAllNothingToRemove(t *testing.T) {
	svc := newTestProgressService(&fakeProgressStore{})

	result, err := svc.ResetAll(context.Background(), 7, "Physics")
	if err != nil {
		t.Fatalf("resetting nothing must not be an error, got %v", err)
	}
	if result.Found {
		t.Errorf("want found=false, got %+v", result)
	}
}

func TestResetTopic(t *testing.T) {
	store := &fakeProgressStore{deleteN: 1}
	svc := newTestProgressService(store)

	result, err := svc.ResetTopic(context.Background(), 7, model.DeleteAreaRequest{
		Subject: "Physics", Chapter: "Optics", Topic: "Ray Optics",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Found || result.Removed != 1 || result.Topic != "Ray Optics" {
		t.Errorf("unexpected result: %+v", result)
	}
}
