package model

import (
	"math"
	"testing"
)

func TestExamStructuresAddUp(t *testing.T) {
	for _, structure := range ExamStructureList() {
		t.Run(string(structure.ExamType), func(t *testing.T) {
			questions, marks := 0, 0
			for _, sec := range structure.Sections {
				questions += sec.QuestionCount
				marks += sec.QuestionCount * sec.MarksPerQuestion

				weight := 0.0
				for _, w := range sec.Distribution {
					weight += w
				}
				if math.Abs(weight-1.0) > 1e-9 {
					t.Errorf("%s section: distribution sums to %v, want 1", sec.Subject, weight)
				}
			}
			if questions != structure.TotalQuestions {
				t.Errorf("sections carry %d questions, structure claims %d", questions, structure.TotalQuestions)
			}
			if marks != structure.TotalMarks {
				t.Errorf("sections carry %d marks, structure claims %d", marks, structure.TotalMarks)
			}
			if structure.DurationMinutes <= 0 {
				t.Error("structure has no duration")
			}
		})
	}
}

func TestExamStructureFor(t *testing.T) {
	for _, examType := range []ExamType{ExamTypeJEEMain, ExamTypeJEEAdvanced, ExamTypeNEET} {
		s, ok := ExamStructureFor(examType)
		if !ok {
			t.Fatalf("missing structure for %s", examType)
		}
		if s.ExamType != examType {
			t.Errorf("structure for %s reports type %s", examType, s.ExamType)
		}
	}

	if _, ok := ExamStructureFor("BITSAT"); ok {
		t.Error("unknown exam type should not resolve")
	}
}

func TestExamStructureListOrder(t *testing.T) {
	list := ExamStructureList()
	if len(list) != 3 {
		t.Fatalf("want 3 structures, got %d", len(list))
	}
	want := []ExamType{ExamTypeJEEMain, ExamTypeJEEAdvanced, ExamTypeNEET}
	for i, examType := range want {
		if list[i].ExamType != examType {
			t.Errorf("position %d: want %s, got %s", i, examType, list[i].ExamType)
		}
	}
}

func TestNEETBiologyOutweighsOtherSections(t *testing.T) {
	neet, _ := ExamStructureFor(ExamTypeNEET)
	counts := map[string]int{}
	for _, sec := range neet.Sections {
		counts[sec.Subject] = sec.QuestionCount
	}
	if counts["Biology"] != 90 || counts["Physics"] != 45 || counts["Chemistry"] != 45 {
		t.Errorf("unexpected NEET section split: %v", counts)
	}
}

func TestComputeAccuracy(t *testing.T) {
	tests := []struct {
		correct, attempted int
		want               float64
	}{
		{0, 0, 0},
		{5, 10, 50},
		{3, 4, 75},
		{7, 7, 100},
	}
	for _, tt := range tests {
		if got := ComputeAccuracy(tt.correct, tt.attempted); got != tt.want {
			t.Errorf("ComputeAccuracy(%d, %d) = %v, want %v", tt.correct, tt.attempted, got, tt.want)
		}
	}
}
