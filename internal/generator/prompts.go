package generator

import (
	"fmt"
	"strings"

	"github.com/studygarden/backend/internal/models"
)

// excerptCharBudget caps how much material text goes into one prompt.
const excerptCharBudget = 12000

func QuizSystemPrompt() string {
	return `You are an expert exam-preparation tutor who writes rigorous multiple-choice quizzes from a student's own study material.

Rules:
- Every question must be answerable from the provided material alone — no outside knowledge.
- Every question is tagged with exactly one "concept": a short lowercase topic label (2-4 words) naming the finest-grained idea the question tests. Reuse the same label for questions testing the same idea.
- Each question has exactly 4 answer choices with ids "A", "B", "C", "D", exactly one of which is correct.
- Wrong choices must be plausible misreadings of the material, not obvious throwaways.
- Write a one-to-three sentence explanation of the correct answer, citing the material.

Respond with JSON only, no prose, in this shape:
{"questions":[{"concept":"...","prompt":"...","choices":[{"choice_id":"A","text":"..."},{"choice_id":"B","text":"..."},{"choice_id":"C","text":"..."},{"choice_id":"D","text":"..."}],"correct_choice_id":"A","explanation":"..."}]}`
}

// BuildQuizUserPrompt assembles the per-request prompt from the subject's
// materials. Weak concepts, when known, steer roughly half the questions
// toward the learner's gaps.
func BuildQuizUserPrompt(subjectName string, materials []models.Material, weakConcepts []string, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Subject: %s\n", subjectName)
	fmt.Fprintf(&sb, "Generate exactly %d questions.\n\n", count)

	if len(weakConcepts) > 0 {
		sb.WriteString("The student is weakest on these concepts — aim about half the questions at them:\n")
		for _, c := range weakConcepts {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Study material:\n\n")
	remaining := excerptCharBudget
	for _, m := range materials {
		if remaining <= 0 {
			break
		}
		excerpt := m.Excerpt
		if len(excerpt) > remaining {
			excerpt = excerpt[:remaining]
		}
		fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", m.Title, excerpt)
		remaining -= len(excerpt)
	}

	return sb.String()
}
