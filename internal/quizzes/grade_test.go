package quizzes

import (
	"errors"
	"testing"

	"github.com/studygarden/backend/internal/models"
)

func sampleQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{ID: 1, ConceptName: "limits", CorrectChoiceID: "A", Explanation: "limits intro", Position: 0},
		{ID: 2, ConceptName: "derivatives", CorrectChoiceID: "C", Position: 1},
		{ID: 3, ConceptName: "limits", CorrectChoiceID: "B", Position: 2},
	}
}

func TestGradeAnswersScoring(t *testing.T) {
	answers := []models.SubmittedAnswer{
		{QuestionID: 1, SelectedChoiceID: "A"},
		{QuestionID: 2, SelectedChoiceID: "D"},
		{QuestionID: 3, SelectedChoiceID: "B"},
	}

	graded, score, err := gradeAnswers(sampleQuestions(), answers)
	if err != nil {
		t.Fatalf("gradeAnswers returned error: %v", err)
	}
	if score != 2 {
		t.Errorf("score = %d, want 2", score)
	}
	if len(graded) != 3 {
		t.Fatalf("len(graded) = %d, want 3", len(graded))
	}

	wantCorrect := []bool{true, false, true}
	wantConcepts := []string{"limits", "derivatives", "limits"}
	for i, g := range graded {
		if g.Correct != wantCorrect[i] {
			t.Errorf("graded[%d].Correct = %v, want %v", i, g.Correct, wantCorrect[i])
		}
		if g.ConceptName != wantConcepts[i] {
			t.Errorf("graded[%d].ConceptName = %q, want %q", i, g.ConceptName, wantConcepts[i])
		}
	}

	if graded[0].Explanation != "limits intro" {
		t.Errorf("graded[0].Explanation = %q, want %q", graded[0].Explanation, "limits intro")
	}
	if graded[1].CorrectChoiceID != "C" {
		t.Errorf("graded[1].CorrectChoiceID = %q, want %q", graded[1].CorrectChoiceID, "C")
	}
}

// Graded answers come back in submission order, since that is the order the
// outcomes are folded into mastery.
func TestGradeAnswersPreservesSubmissionOrder(t *testing.T) {
	answers := []models.SubmittedAnswer{
		{QuestionID: 3, SelectedChoiceID: "B"},
		{QuestionID: 1, SelectedChoiceID: "A"},
		{QuestionID: 2, SelectedChoiceID: "C"},
	}

	graded, score, err := gradeAnswers(sampleQuestions(), answers)
	if err != nil {
		t.Fatalf("gradeAnswers returned error: %v", err)
	}
	if score != 3 {
		t.Errorf("score = %d, want 3", score)
	}

	wantIDs := []int64{3, 1, 2}
	for i, g := range graded {
		if g.QuestionID != wantIDs[i] {
			t.Errorf("graded[%d].QuestionID = %d, want %d", i, g.QuestionID, wantIDs[i])
		}
	}
}

func TestGradeAnswersRejectsBadSets(t *testing.T) {
	questions := sampleQuestions()

	tests := []struct {
		name    string
		answers []models.SubmittedAnswer
	}{
		{"empty", nil},
		{"too few", []models.SubmittedAnswer{{QuestionID: 1, SelectedChoiceID: "A"}}},
		{"unknown question", []models.SubmittedAnswer{
			{QuestionID: 1, SelectedChoiceID: "A"},
			{QuestionID: 2, SelectedChoiceID: "C"},
			{QuestionID: 99, SelectedChoiceID: "B"},
		}},
		{"duplicate question", []models.SubmittedAnswer{
			{QuestionID: 1, SelectedChoiceID: "A"},
			{QuestionID: 1, SelectedChoiceID: "B"},
			{QuestionID: 2, SelectedChoiceID: "C"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := gradeAnswers(questions, tt.answers)
			if !errors.Is(err, ErrInvalidAnswers) {
				t.Errorf("gradeAnswers error = %v, want ErrInvalidAnswers", err)
			}
		})
	}
}
