package model

// ExamSection defines one subject block inside a predefined exam paper.
type ExamSection struct {
	Subject          string                 `json:"subject"`
	QuestionCount    int                    `json:"question_count"`
	MarksPerQuestion int                    `json:"marks_per_question"`
	Distribution     map[Difficulty]float64 `json:"distribution"`
}

// ExamStructure is the blueprint of a real entrance exam paper.
type ExamStructure struct {
	ExamType        ExamType      `json:"exam_type"`
	Name            string        `json:"name"`
	Sections        []ExamSection `json:"sections"`
	TotalQuestions  int           `json:"total_questions"`
	TotalMarks      int           `json:"total_marks"`
	DurationMinutes int           `json:"duration_minutes"`
}

var examStructures = map[ExamType]ExamStructure{
	ExamTypeJEEMain: {
		ExamType:        ExamTypeJEEMain,
		Name:            "JEE Main",
		TotalQuestions:  90,
		TotalMarks:      360,
		DurationMinutes: 180,
		Sections: []ExamSection{
			{Subject: "Physics", QuestionCount: 30, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.3, DifficultyMedium: 0.5, DifficultyHard: 0.2}},
			{Subject: "Chemistry", QuestionCount: 30, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.3, DifficultyMedium: 0.5, DifficultyHard: 0.2}},
			{Subject: "Mathematics", QuestionCount: 30, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.3, DifficultyMedium: 0.5, DifficultyHard: 0.2}},
		},
	},
	ExamTypeJEEAdvanced: {
		ExamType:        ExamTypeJEEAdvanced,
		Name:            "JEE Advanced",
		TotalQuestions:  54,
		TotalMarks:      216,
		DurationMinutes: 180,
		Sections: []ExamSection{
			{Subject: "Physics", QuestionCount: 18, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.2, DifficultyMedium: 0.4, DifficultyHard: 0.4}},
			{Subject: "Chemistry", QuestionCount: 18, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.2, DifficultyMedium: 0.4, DifficultyHard: 0.4}},
			{Subject: "Mathematics", QuestionCount: 18, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.2, DifficultyMedium: 0.4, DifficultyHard: 0.4}},
		},
	},
	ExamTypeNEET: {
		ExamType:        ExamTypeNEET,
		Name:            "NEET",
		TotalQuestions:  180,
		TotalMarks:      720,
		DurationMinutes: 200,
		Sections: []ExamSection{
			{Subject: "Physics", QuestionCount: 45, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.4, DifficultyMedium: 0.45, DifficultyHard: 0.15}},
			{Subject: "Chemistry", QuestionCount: 45, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.4, DifficultyMedium: 0.45, DifficultyHard: 0.15}},
			{Subject: "Biology", QuestionCount: 90, MarksPerQuestion: 4, Distribution: map[Difficulty]float64{DifficultyEasy: 0.4, DifficultyMedium: 0.45, DifficultyHard: 0.15}},
		},
	},
}

// ExamStructureFor returns the blueprint for the given exam type.
func ExamStructureFor(examType ExamType) (ExamStructure, bool) {
	s, ok := examStructures[examType]
	return s, ok
}

// ExamStructureList returns every known blueprint in a stable order.
func ExamStructureList() []ExamStructure {
	return []ExamStructure{
		examStructures[ExamTypeJEEMain],
		examStructures[ExamTypeJEEAdvanced],
		examStructures[ExamTypeNEET],
	}
}
