package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lakshyaprep/lakshya-backend/internal/config"
	"github.com/lakshyaprep/lakshya-backend/internal/database"
	"github.com/lakshyaprep/lakshya-backend/internal/logger"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/repository"
)

type seedChapter struct {
	name   string
	topics []string
}

type seedSubject struct {
	name     string
	chapters []seedChapter
}

// seedPlan seeds one exam type. Sections pool candidates by subject
// across the whole bank, and variant counts are sized so every exam
// structure can fill a full paper at its difficulty split (NEET
// Biology alone needs 41 medium questions).
type seedPlan struct {
	examType model.ExamType
	variants int
	subjects []seedSubject
}

var physics = seedSubject{
	name: "Physics",
	chapters: []seedChapter{
		{"Mechanics", []string{"Kinematics", "Newton's Laws of Motion", "Work Energy and Power"}},
		{"Electrodynamics", []string{"Current Electricity", "Magnetic Effects of Current", "Electromagnetic Induction"}},
		{"Optics", []string{"Ray Optics", "Wave Optics"}},
	},
}

var chemistry = seedSubject{
	name: "Chemistry",
	chapters: []seedChapter{
		{"Physical Chemistry", []string{"Mole Concept", "Chemical Thermodynamics", "Equilibrium"}},
		{"Organic Chemistry", []string{"Hydrocarbons", "Alcohols Phenols and Ethers"}},
		{"Inorganic Chemistry", []string{"Periodic Table", "Chemical Bonding"}},
	},
}

var mathematics = seedSubject{
	name: "Mathematics",
	chapters: []seedChapter{
		{"Algebra", []string{"Quadratic Equations", "Sequences and Series", "Complex Numbers"}},
		{"Calculus", []string{"Limits and Continuity", "Definite Integration"}},
		{"Coordinate Geometry", []string{"Straight Lines", "Circles"}},
	},
}

var biology = seedSubject{
	name: "Biology",
	chapters: []seedChapter{
		{"Cell Biology", []string{"Cell Structure", "Cell Division"}},
		{"Genetics", []string{"Mendelian Inheritance", "Molecular Basis of Inheritance"}},
		{"Human Physiology", []string{"Digestion and Absorption", "Breathing and Respiration"}},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	plans := []seedPlan{
		{model.ExamTypeJEEMain, 3, []seedSubject{physics, chemistry, mathematics}},
		{model.ExamTypeJEEAdvanced, 1, []seedSubject{physics, chemistry, mathematics}},
		{model.ExamTypeNEET, 7, []seedSubject{physics, chemistry, biology}},
	}

	fmt.Println("=== Seeding Question Bank ===")

	n := 0
	var questions []model.Question
	for _, plan := range plans {
		for _, subject := range plan.subjects {
			for _, chapter := range subject.chapters {
				for _, topic := range chapter.topics {
					for _, difficulty := range model.Difficulties {
						for v := 0; v < plan.variants; v++ {
							n++
							questions = append(questions, buildQuestion(n, plan.examType, subject.name, chapter.name, topic, difficulty))
						}
					}
				}
			}
		}
	}

	inserted, err := questionRepo.BulkInsert(ctx, questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk insert failed")
	}

	fmt.Printf("\nSeed completed! Inserted %d questions.\n", inserted)
	fmt.Println("Solutions are left empty; POST /api/v1/admin/questions/solutions/backfill queues them for generation.")
}

// buildQuestion fabricates one bank entry. Every fifth question is
// numerical, the rest are four-option MCQs with a rotating answer.
func buildQuestion(n int, examType model.ExamType, subject, chapter, topic string, difficulty model.Difficulty) model.Question {
	q := model.Question{
		ID:           uuid.New(),
		Source:       "Lakshya Seed Bank",
		Year:         2019 + n%6,
		Subject:      subject,
		Chapter:      chapter,
		Topic:        topic,
		Difficulty:   difficulty,
		ExamType:     examType,
		QuestionType: model.QuestionTypeMultipleChoice,
		QuestionText: fmt.Sprintf(
			"Practice problem %d on %s (%s). Work through the standard %s-level reasoning and choose the best answer.",
			n, topic, chapter, difficulty,
		),
		Marks: model.DefaultMarks,
	}

	if n%5 == 0 {
		q.QuestionType = model.QuestionTypeNumerical
		q.CorrectAnswer = fmt.Sprintf("%d", n%100)
		return q
	}

	options := map[string]string{
		"A": fmt.Sprintf("First candidate result for %s", topic),
		"B": fmt.Sprintf("Second candidate result for %s", topic),
		"C": fmt.Sprintf("Third candidate result for %s", topic),
		"D": fmt.Sprintf("Fourth candidate result for %s", topic),
	}
	raw, _ := json.Marshal(options)
	q.Options = raw
	q.CorrectAnswer = string("ABCD"[n%4])

	return q
}
