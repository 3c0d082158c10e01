package service

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// defaultDistribution is used when a custom paper request does not supply
// a difficulty distribution. It mirrors the JEE Main blueprint.
var defaultDistribution = map[model.Difficulty]float64{
	model.DifficultyEasy:   0.3,
	model.DifficultyMedium: 0.5,
	model.DifficultyHard:   0.2,
}

// normalizeDistribution returns a cleaned copy of the requested
// distribution. Percent-style inputs (every non-zero weight above 1) are
// divided by 100; an empty input falls back to the default mix. The
// result is not forced to sum to 1: difficultyTargets absorbs any drift
// into the medium bucket.
func normalizeDistribution(dist map[model.Difficulty]float64) map[model.Difficulty]float64 {
	if len(dist) == 0 {
		return defaultDistribution
	}

	percentStyle := false
	for _, v := range dist {
		if v > 1 {
			percentStyle = true
		} else if v > 0 {
			percentStyle = false
			break
		}
	}

	out := make(map[model.Difficulty]float64, len(dist))
	for d, v := range dist {
		if percentStyle {
			v /= 100
		}
		out[d] = v
	}
	return out
}

// difficultyTargets splits the requested count into per-difficulty
// targets by truncating count*fraction. The truncation remainder (and
// anything an incomplete distribution leaves unassigned) lands in the
// medium bucket, so the three targets always sum to exactly count.
func difficultyTargets(count int, dist map[model.Difficulty]float64) map[model.Difficulty]int {
	targets := make(map[model.Difficulty]int, len(model.Difficulties))
	assigned := 0
	for _, d := range model.Difficulties {
		t := int(float64(count) * dist[d])
		targets[d] = t
		assigned += t
	}
	targets[model.DifficultyMedium] += count - assigned

	// A distribution summing past 1 overshoots the count; trim back,
	// hardest buckets first, so the targets still sum exactly to count.
	if targets[model.DifficultyMedium] < 0 {
		targets[model.DifficultyMedium] = 0
		excess := -count
		for _, d := range model.Difficulties {
			excess += targets[d]
		}
		for i := len(model.Difficulties) - 1; i >= 0 && excess > 0; i-- {
			cut := targets[model.Difficulties[i]]
			if cut > excess {
				cut = excess
			}
			targets[model.Difficulties[i]] -= cut
			excess -= cut
		}
	}
	return targets
}

// drawByDifficulty selects questions against the per-difficulty targets
// in three stages: a uniform per-bucket draw, a same-difficulty top-up
// for buckets that collapsed duplicates, and finally a cross-difficulty
// fill that trades distribution exactness for completeness of count.
// Question IDs in the result are pairwise distinct.
func drawByDifficulty(rng *rand.Rand, candidates []model.Question, targets map[model.Difficulty]int) ([]model.Question, model.DistributionOutcome) {
	total := 0
	for _, t := range targets {
		total += t
	}

	buckets := make(map[model.Difficulty][]model.Question)
	for _, q := range candidates {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}
	for _, b := range buckets {
		rng.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
	}

	picked := make(map[uuid.UUID]struct{}, total)
	selected := make([]model.Question, 0, total)
	got := make(map[model.Difficulty]int, len(model.Difficulties))
	take := func(q model.Question) bool {
		if _, dup := picked[q.ID]; dup {
			return false
		}
		picked[q.ID] = struct{}{}
		selected = append(selected, q)
		got[q.Difficulty]++
		return true
	}

	// First pass: draw the first min(target, len(bucket)) of each shuffled
	// bucket. Duplicate IDs in the pool collapse here and leave the bucket
	// short of its target.
	firstDraw := make(map[model.Difficulty]int, len(model.Difficulties))
	for _, d := range model.Difficulties {
		n := targets[d]
		if n > len(buckets[d]) {
			n = len(buckets[d])
		}
		for _, q := range buckets[d][:n] {
			take(q)
		}
		firstDraw[d] = n
	}

	outcome := model.OutcomeExact

	// Same-difficulty backfill: top each short bucket back up from its own
	// remaining candidates before touching other difficulties.
	if len(selected) < total {
		for _, d := range model.Difficulties {
			for i := firstDraw[d]; i < len(buckets[d]) && got[d] < targets[d]; i++ {
				if take(buckets[d][i]) {
					outcome = model.OutcomeSameDifficultyBackfill
				}
			}
		}
	}

	// Cross-difficulty fallback: completeness of count takes priority over
	// exactness of distribution. Anything still unselected may fill the gap.
	if len(selected) < total {
		for _, d := range model.Difficulties {
			for i := firstDraw[d]; i < len(buckets[d]) && len(selected) < total; i++ {
				if take(buckets[d][i]) {
					outcome = model.OutcomeCrossDifficultyFallback
				}
			}
		}
	}

	// A bucket that never reached its target means the achieved mix is not
	// the requested one, even if no cross-difficulty question was added.
	for _, d := range model.Difficulties {
		if got[d] < targets[d] {
			outcome = model.OutcomeCrossDifficultyFallback
		}
	}

	return selected, outcome
}

// countByDifficulty tallies the achieved per-difficulty counts of the
// final selection.
func countByDifficulty(questions []model.Question) map[model.Difficulty]int {
	counts := make(map[model.Difficulty]int, len(model.Difficulties))
	for _, d := range model.Difficulties {
		counts[d] = 0
	}
	for _, q := range questions {
		counts[q.Difficulty]++
	}
	return counts
}

// buildPaperQuestions produces the client-facing views in paper order.
// marksBySubject overrides the per-question marks (exam-template papers
// award the structure's fixed marks); when nil, each question's own marks
// apply, defaulting to DefaultMarks.
func buildPaperQuestions(questions []model.Question, marksBySubject map[string]int) []model.PaperQuestion {
	views := make([]model.PaperQuestion, len(questions))
	for i, q := range questions {
		marks := q.Marks
		if marksBySubject != nil {
			if m, ok := marksBySubject[q.Subject]; ok {
				marks = m
			}
		}
		if marks == 0 {
			marks = model.DefaultMarks
		}

		var options interface{}
		if len(q.Options) > 0 {
			options = q.Options
		}
		views[i] = model.PaperQuestion{
			ID:           q.ID,
			Number:       i + 1,
			Source:       q.Source,
			Year:         q.Year,
			Subject:      q.Subject,
			Chapter:      q.Chapter,
			Topic:        q.Topic,
			Difficulty:   q.Difficulty,
			QuestionType: q.QuestionType,
			QuestionText: q.QuestionText,
			Options:      options,
			Marks:        marks,
		}
	}
	return views
}

// buildAnswerKey derives the grading key from the final ordered selection.
// Answers mirror the paper's question order one-to-one: Answers[i] grades
// views[i]. Solutions and references are embedded only when requested.
func buildAnswerKey(questions []model.Question, views []model.PaperQuestion, includeSolutions bool) model.AnswerKey {
	key := model.AnswerKey{
		Answers:        make([]model.AnswerKeyEntry, len(questions)),
		TotalQuestions: len(questions),
	}
	for i, q := range questions {
		entry := model.AnswerKeyEntry{
			Position:      i + 1,
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         views[i].Marks,
		}
		if includeSolutions {
			entry.SolutionText = q.SolutionText
			entry.Reference = q.Reference
		}
		key.Answers[i] = entry
		key.TotalMarks += entry.Marks
	}
	return key
}

// buildMetadata assembles the paper metadata from the final selection.
// All counts describe what was actually selected.
func buildMetadata(requested map[model.Difficulty]int, questions []model.Question, outcome model.DistributionOutcome, sections []model.SectionResult, randomized bool) model.PaperMetadata {
	bySubject := make(map[string]int)
	byChapter := make(map[string]int)
	for _, q := range questions {
		bySubject[q.Subject]++
		byChapter[q.Chapter]++
	}
	return model.PaperMetadata{
		RequestedCounts: requested,
		ActualCounts:    countByDifficulty(questions),
		CountsBySubject: bySubject,
		CountsByChapter: byChapter,
		Outcome:         outcome,
		Sections:        sections,
		RandomizedOrder: randomized,
	}
}

// paperTitle derives a display title when the caller did not supply one.
func paperTitle(cfg model.PaperConfig) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	if len(cfg.Subjects) > 0 {
		subjects := append([]string(nil), cfg.Subjects...)
		sort.Strings(subjects)
		title := subjects[0]
		for _, s := range subjects[1:] {
			title += ", " + s
		}
		return title + " Practice Paper"
	}
	return "Mixed Topics Practice Paper"
}

// dedupByID enforces identifier uniqueness over a combined selection as a
// hard post-condition. Order is preserved; later duplicates are dropped.
func dedupByID(questions []model.Question) []model.Question {
	seen := make(map[uuid.UUID]struct{}, len(questions))
	out := questions[:0]
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
