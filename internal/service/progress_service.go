package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

const (
	// Weak areas: enough attempts to be meaningful, accuracy below par.
	defaultWeakThreshold   = 60.0
	defaultWeakMinAttempts = 3

	// Strong and weak subjects on the statistics summary.
	strongSubjectThreshold   = 75.0
	strongSubjectMinAttempts = 10
	weakSubjectMinAttempts   = 5

	// Recommendations: weak areas first, then barely-explored ones.
	defaultRecommendationLimit = 5
	maxRecommendationLimit     = 20
	exploreMaxAttempts         = 5
	exploreThreshold           = 70.0

	// practiceDayLimit bounds the streak window. Streaks longer than a
	// year report as a year.
	practiceDayLimit = 365
)

// ProgressStore is the persistence surface the progress tracker needs.
type ProgressStore interface {
	ApplyDeltas(ctx context.Context, userID int, deltas []model.AttemptDelta, day time.Time) error
	GetArea(ctx context.Context, userID int, subject, chapter, topic string) (*model.ProgressRecord, error)
	ListByUser(ctx context.Context, userID int) ([]model.ProgressRecord, error)
	PracticeDays(ctx context.Context, userID, limit int) ([]time.Time, error)
	DeleteArea(ctx context.Context, userID int, subject, chapter, topic string) (int, error)
	Reset(ctx context.Context, userID int, subject string) (int, error)
}

// ProgressService tracks per-area performance and derives weak areas,
// recommendations and the statistics summary from it.
type ProgressService struct {
	store ProgressStore
	log   zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(store ProgressStore, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		store: store,
		log:   log.With().Str("component", "progress_service").Logger(),
	}
}

// RecordAttempt counts one standalone practice answer against its area
// and returns the refreshed record.
func (s *ProgressService) RecordAttempt(ctx context.Context, userID int, req model.RecordAttemptRequest) (*model.ProgressRecord, error) {
	delta := model.AttemptDelta{
		Subject:   req.Subject,
		Chapter:   req.Chapter,
		Topic:     req.Topic,
		Attempted: 1,
	}
	if req.Correct {
		delta.Correct = 1
	}

	if err := s.store.ApplyDeltas(ctx, userID, []model.AttemptDelta{delta}, time.Now()); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	record, err := s.store.GetArea(ctx, userID, req.Subject, req.Chapter, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("reload area: %w", err)
	}
	return record, nil
}

// GetUserProgress returns every record plus overall totals. Users with
// no history get empty records and zeroed aggregates, not an error.
func (s *ProgressService) GetUserProgress(ctx context.Context, userID int) (*model.UserProgress, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.ProgressRecord{}
	}

	progress := &model.UserProgress{Records: records}
	for _, r := range records {
		progress.TotalAttempted += r.Attempted
		progress.TotalCorrect += r.Correct
	}
	progress.OverallAccuracy = model.ComputeAccuracy(progress.TotalCorrect, progress.TotalAttempted)
	return progress, nil
}

// GetWeakAreas lists areas with at least minAttempts attempts and
// accuracy below threshold, weakest first. Zero or negative parameters
// fall back to the defaults.
func (s *ProgressService) GetWeakAreas(ctx context.Context, userID int, threshold float64, minAttempts int) ([]model.WeakArea, error) {
	if threshold <= 0 {
		threshold = defaultWeakThreshold
	}
	if minAttempts <= 0 {
		minAttempts = defaultWeakMinAttempts
	}

	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	weak := make([]model.WeakArea, 0)
	for _, r := range records {
		if r.Attempted >= minAttempts && r.Accuracy < threshold {
			weak = append(weak, model.WeakArea{
				Subject:   r.Subject,
				Chapter:   r.Chapter,
				Topic:     r.Topic,
				Attempted: r.Attempted,
				Correct:   r.Correct,
				Accuracy:  r.Accuracy,
			})
		}
	}

	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	return weak, nil
}

// GenerateRecommendations suggests up to limit areas to practice next:
// weak areas first (high priority, weakest first), then barely-explored
// areas (medium priority, fewest attempts first).
func (s *ProgressService) GenerateRecommendations(ctx context.Context, userID, limit int) ([]model.Recommendation, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs := make([]model.Recommendation, 0, limit)
	seen := make(map[string]struct{}, limit)
	areaKey := func(r model.ProgressRecord) string {
		return r.Subject + "\x00" + r.Chapter + "\x00" + r.Topic
	}

	weak := make([]model.ProgressRecord, 0)
	for _, r := range records {
		if r.Attempted >= defaultWeakMinAttempts && r.Accuracy < defaultWeakThreshold {
			weak = append(weak, r)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })

	for _, r := range weak {
		if len(recs) == limit {
			break
		}
		seen[areaKey(r)] = struct{}{}
		recs = append(recs, model.Recommendation{
			Subject:   r.Subject,
			Chapter:   r.Chapter,
			Topic:     r.Topic,
			Priority:  model.PriorityHigh,
			Reason:    fmt.Sprintf("Accuracy %.0f%% over %d attempts, revise this area first", r.Accuracy, r.Attempted),
			Accuracy:  r.Accuracy,
			Attempted: r.Attempted,
		})
	}

	if len(recs) < limit {
		explore := make([]model.ProgressRecord, 0)
		for _, r := range records {
			if _, done := seen[areaKey(r)]; done {
				continue
			}
			if r.Attempted > 0 && r.Attempted < exploreMaxAttempts && r.Accuracy < exploreThreshold {
				explore = append(explore, r)
			}
		}
		sort.SliceStable(explore, func(i, j int) bool { return explore[i].Attempted < explore[j].Attempted })

		for _, r := range explore {
			if len(recs) == limit {
				break
			}
			recs = append(recs, model.Recommendation{
				Subject:   r.Subject,
				Chapter:   r.Chapter,
				Topic:     r.Topic,
				Priority:  model.PriorityMedium,
				Reason:    fmt.Sprintf("Only %d attempts so far, practice more to build confidence", r.Attempted),
				Accuracy:  r.Accuracy,
				Attempted: r.Attempted,
			})
		}
	}

	return recs, nil
}

// GetStatisticsSummary aggregates the user's whole history: totals,
// per-subject accuracy, strong and weak subjects and the study streak.
func (s *ProgressService) GetStatisticsSummary(ctx context.Context, userID int) (*model.StatisticsSummary, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	days, err := s.store.PracticeDays(ctx, userID, practiceDayLimit)
	if err != nil {
		return nil, err
	}

	summary := &model.StatisticsSummary{
		BySubject:      []model.SubjectAccuracy{},
		StrongSubjects: []model.SubjectAccuracy{},
		WeakSubjects:   []model.SubjectAccuracy{},
		StreakDays:     streakDays(days, time.Now()),
		ActiveDays:     len(days),
	}

	bySubject := make(map[string]*model.SubjectAccuracy)
	chapters := make(map[string]struct{})
	for _, r := range records {
		summary.TotalAttempted += r.Attempted
		summary.TotalCorrect += r.Correct
		chapters[r.Subject+"\x00"+r.Chapter] = struct{}{}

		agg, ok := bySubject[r.Subject]
		if !ok {
			agg = &model.SubjectAccuracy{Subject: r.Subject}
			bySubject[r.Subject] = agg
		}
		agg.Attempted += r.Attempted
		agg.Correct += r.Correct
	}

	summary.OverallAccuracy = model.ComputeAccuracy(summary.TotalCorrect, summary.TotalAttempted)
	summary.SubjectsCovered = len(bySubject)
	summary.ChaptersCovered = len(chapters)

	for _, agg := range bySubject {
		agg.Accuracy = model.ComputeAccuracy(agg.Correct, agg.Attempted)
		summary.BySubject = append(summary.BySubject, *agg)
	}
	sort.Slice(summary.BySubject, func(i, j int) bool {
		return summary.BySubject[i].Subject < summary.BySubject[j].Subject
	})

	for _, sa := range summary.BySubject {
		switch {
		case sa.Accuracy >= strongSubjectThreshold && sa.Attempted >= strongSubjectMinAttempts:
			summary.StrongSubjects = append(summary.StrongSubjects, sa)
		case sa.Accuracy < defaultWeakThreshold && sa.Attempted >= weakSubjectMinAttempts:
			summary.WeakSubjects = append(summary.WeakSubjects, sa)
		}
	}
	sort.SliceStable(summary.StrongSubjects, func(i, j int) bool {
		return summary.StrongSubjects[i].Accuracy > summary.StrongSubjects[j].Accuracy
	})
	sort.SliceStable(summary.WeakSubjects, func(i, j int) bool {
		return summary.WeakSubjects[i].Accuracy < summary.WeakSubjects[j].Accuracy
	})

	return summary, nil
}

// streakDays counts consecutive practice days ending today or yesterday.
// days must be sorted newest first; a gap before the present breaks the
// streak to zero even if an older run was longer.
func streakDays(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	norm := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	cursor := norm(days[0])
	if cursor.Before(norm(today).AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	for _, d := range days[1:] {
		nd := norm(d)
		if nd.Equal(cursor) {
			continue
		}
		if nd.Equal(cursor.AddDate(0, 0, -1)) {
			streak++
			cursor = nd
			continue
		}
		break
	}
	return streak
}

// ResetTopic removes a single area's history. Resetting an area the
// user never touched is not an error.
func (s *ProgressService) ResetTopic(ctx context.Context, userID int, req model.DeleteAreaRequest) (*model.ResetResult, error) {
	removed, err := s.store.DeleteArea(ctx, userID, req.Subject, req.Chapter, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("delete area: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("subject", req.Subject).
		Str("chapter", req.Chapter).
		Int("removed", removed).
		Msg("Progress area reset")
	return &model.ResetResult{
		UserID:  userID,
		Subject: req.Subject,
		Chapter: req.Chapter,
		Topic:   req.Topic,
		Removed: removed,
		Found:   removed > 0,
	}, nil
}

// ResetAll wipes the user's progress, optionally scoped to one subject.
// The subject-scoped form keeps the practice-day history; the full form
// clears that too.
func (s *ProgressService) ResetAll(ctx context.Context, userID int, subject string) (*model.ResetResult, error) {
	removed, err := s.store.Reset(ctx, userID, subject)
	if err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("subject", subject).
		Int("removed", removed).
		Msg("Progress reset")
	return &model.ResetResult{
		UserID:  userID,
		Subject: subject,
		Removed: removed,
		Found:   removed > 0,
	}, nil
}
