package generator

import (
	"strings"
	"testing"
)

const validQuizJSON = `{
	"questions": [
		{
			"concept": "osmosis",
			"prompt": "According to the material, what drives water across a semi-permeable membrane?",
			"choices": [
				{"choice_id": "A", "text": "A difference in solute concentration"},
				{"choice_id": "B", "text": "Active transport proteins"},
				{"choice_id": "C", "text": "Electrical charge gradients alone"},
				{"choice_id": "D", "text": "Mechanical pressure from the cell wall"}
			],
			"correct_choice_id": "A",
			"explanation": "The material defines osmosis as passive movement down a concentration gradient."
		}
	]
}`

func TestParseValidResponse(t *testing.T) {
	quiz, err := ParseResponse(validQuizJSON)
	if err != nil {
		t.Fatalf("ParseResponse error: %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(quiz.Questions))
	}
	q := quiz.Questions[0]
	if q.Concept != "osmosis" {
		t.Errorf("concept = %q, want osmosis", q.Concept)
	}
	if q.CorrectChoiceID != "A" {
		t.Errorf("correct_choice_id = %q, want A", q.CorrectChoiceID)
	}
}

func TestParseStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validQuizJSON + "\n```"
	quiz, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("ParseResponse error on fenced input: %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Errorf("got %d questions, want 1", len(quiz.Questions))
	}

	bareFence := "```\n" + validQuizJSON + "\n```"
	if _, err := ParseResponse(bareFence); err != nil {
		t.Errorf("ParseResponse error on bare fence: %v", err)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseResponse("I'm sorry, I can't produce that quiz."); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestParseRejectsEmptyQuiz(t *testing.T) {
	_, err := ParseResponse(`{"questions": []}`)
	if err == nil {
		t.Fatal("expected error for empty quiz")
	}
	if !strings.Contains(err.Error(), "no questions") {
		t.Errorf("error = %v, want mention of empty quiz", err)
	}
}

func TestValidateRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantErr string
	}{
		{
			"missing concept",
			func(s string) string { return strings.Replace(s, `"concept": "osmosis"`, `"concept": "  "`, 1) },
			"empty concept",
		},
		{
			"bad correct id",
			func(s string) string {
				return strings.Replace(s, `"correct_choice_id": "A"`, `"correct_choice_id": "E"`, 1)
			},
			"correct_choice_id",
		},
		{
			"empty explanation",
			func(s string) string {
				return strings.Replace(s, `"explanation": "The material defines osmosis as passive movement down a concentration gradient."`, `"explanation": ""`, 1)
			},
			"explanation",
		},
	}

	for _, tt := range tests {
		_, err := ParseResponse(tt.mangle(validQuizJSON))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateRejectsWrongChoiceCount(t *testing.T) {
	threeChoices := `{"questions":[{"concept":"osmosis","prompt":"What drives osmosis?","choices":[{"choice_id":"A","text":"Solute concentration difference"},{"choice_id":"B","text":"Active transport"},{"choice_id":"C","text":"Charge gradients"}],"correct_choice_id":"A","explanation":"From the material."}]}`
	_, err := ParseResponse(threeChoices)
	if err == nil {
		t.Fatal("expected error for 3-choice question")
	}
	if !strings.Contains(err.Error(), "expected 4 choices") {
		t.Errorf("error = %v, want choice-count complaint", err)
	}
}

func TestMockClientOutputParses(t *testing.T) {
	quiz, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("mock output should always parse: %v", err)
	}
	if len(quiz.Questions) != 6 {
		t.Errorf("mock quiz has %d questions, want 6", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.Concept == "" {
			t.Errorf("mock question %d missing concept tag", i+1)
		}
	}
}
