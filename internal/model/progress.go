package model

import "time"

// ProgressRecord accumulates a user's attempt history for one
// (subject, chapter, topic) area. One row exists per user and area.
// Accuracy is always recomputed from the two counters, never stored.
type ProgressRecord struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Subject       string    `json:"subject"`
	Chapter       string    `json:"chapter"`
	Topic         string    `json:"topic,omitempty"`
	Attempted     int       `json:"attempted"`
	Correct       int       `json:"correct"`
	Accuracy      float64   `json:"accuracy"`
	LastStudiedAt time.Time `json:"last_studied_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputeAccuracy returns correct/attempted as a percentage, 0 when
// nothing has been attempted yet.
func ComputeAccuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(correct) / float64(attempted) * 100
}

// UserProgress is the full progress view for one user. Records is never
// nil; a user with no history gets an empty slice and zeroed totals.
type UserProgress struct {
	Records         []ProgressRecord `json:"records"`
	TotalAttempted  int              `json:"total_attempted"`
	TotalCorrect    int              `json:"total_correct"`
	OverallAccuracy float64          `json:"overall_accuracy"`
}

// WeakArea is an area the user demonstrably struggles with: enough
// attempts to be meaningful, accuracy below the threshold.
type WeakArea struct {
	Subject   string  `json:"subject"`
	Chapter   string  `json:"chapter"`
	Topic     string  `json:"topic,omitempty"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// RecommendationPriority ranks how urgently an area needs practice.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
)

// Recommendation suggests an area for the user to practice next.
type Recommendation struct {
	Subject   string                 `json:"subject"`
	Chapter   string                 `json:"chapter"`
	Topic     string                 `json:"topic,omitempty"`
	Priority  RecommendationPriority `json:"priority"`
	Reason    string                 `json:"reason"`
	Accuracy  float64                `json:"accuracy"`
	Attempted int                    `json:"attempted"`
}

// SubjectAccuracy aggregates a user's performance in one subject.
type SubjectAccuracy struct {
	Subject   string  `json:"subject"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// StatisticsSummary is the aggregate progress overview for one user.
type StatisticsSummary struct {
	TotalAttempted  int               `json:"total_attempted"`
	TotalCorrect    int               `json:"total_correct"`
	OverallAccuracy float64           `json:"overall_accuracy"`
	SubjectsCovered int               `json:"subjects_covered"`
	ChaptersCovered int               `json:"chapters_covered"`
	BySubject       []SubjectAccuracy `json:"by_subject"`
	StrongSubjects  []SubjectAccuracy `json:"strong_subjects"`
	WeakSubjects    []SubjectAccuracy `json:"weak_subjects"`
	StreakDays      int               `json:"streak_days"`
	ActiveDays      int               `json:"active_days"`
}

// ResetResult reports what a progress reset or delete actually removed.
// Removing something that does not exist is not an error; Found simply
// reports false.
type ResetResult struct {
	UserID  int    `json:"user_id"`
	Subject string `json:"subject,omitempty"`
	Chapter string `json:"chapter,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Removed int    `json:"removed"`
	Found   bool   `json:"found"`
}

// RecordAttemptRequest is the payload for recording a single attempt
// outside of a paper submission (standalone practice mode).
type RecordAttemptRequest struct {
	Subject string `json:"subject" binding:"required,min=2,max=100"`
	Chapter string `json:"chapter" binding:"required,min=2,max=150"`
	Topic   string `json:"topic" binding:"omitempty,max=150"`
	Correct bool   `json:"correct"`
}

// DeleteAreaRequest is the payload for deleting a single progress area.
type DeleteAreaRequest struct {
	Subject string `json:"subject" binding:"required,min=2,max=100"`
	Chapter string `json:"chapter" binding:"required,min=2,max=150"`
	Topic   string `json:"topic" binding:"omitempty,max=150"`
}

// AttemptDelta is one accumulated update to a progress area, produced
// when a graded paper fans out into per-area attempt counts.
type AttemptDelta struct {
	Subject   string
	Chapter   string
	Topic     string
	Attempted int
	Correct   int
}
