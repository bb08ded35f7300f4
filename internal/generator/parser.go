package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

type GeneratedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	Concept         string            `json:"concept"`
	Prompt          string            `json:"prompt"`
	Choices         []GeneratedChoice `json:"choices"`
	CorrectChoiceID string            `json:"correct_choice_id"`
	Explanation     string            `json:"explanation"`
}

type GeneratedChoice struct {
	ChoiceID string `json:"choice_id"`
	Text     string `json:"text"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedQuiz, error) {
	cleaned := stripCodeFences(responseBody)

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

var validChoiceIDs = map[string]bool{"A": true, "B": true, "C": true, "D": true}

func validateQuiz(quiz *GeneratedQuiz) error {
	var errs []string

	if len(quiz.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in quiz"}}
	}

	for i, q := range quiz.Questions {
		qNum := i + 1

		if strings.TrimSpace(q.Concept) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty concept tag", qNum))
		}
		if strings.TrimSpace(q.Prompt) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty prompt", qNum))
		}

		if len(q.Choices) != 4 {
			errs = append(errs, fmt.Sprintf("question %d: expected 4 choices, got %d", qNum, len(q.Choices)))
			continue
		}

		expectedIDs := []string{"A", "B", "C", "D"}
		for j, c := range q.Choices {
			if c.ChoiceID != expectedIDs[j] {
				errs = append(errs, fmt.Sprintf("question %d: choice %d has id %q, expected %q", qNum, j+1, c.ChoiceID, expectedIDs[j]))
			}
			if strings.TrimSpace(c.Text) == "" {
				errs = append(errs, fmt.Sprintf("question %d: choice %s has empty text", qNum, c.ChoiceID))
			}
		}

		if !validChoiceIDs[q.CorrectChoiceID] {
			errs = append(errs, fmt.Sprintf("question %d: invalid correct_choice_id %q", qNum, q.CorrectChoiceID))
		}

		if q.Explanation == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty explanation", qNum))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
