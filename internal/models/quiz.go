package models

import "time"

// ── Quiz Types ───────────────────────────────────────────

type QuizStatus string

const (
	QuizPending    QuizStatus = "pending"
	QuizGenerating QuizStatus = "generating"
	QuizReady      QuizStatus = "ready"
	QuizFailed     QuizStatus = "failed"
)

type Quiz struct {
	ID            int64      `json:"id"`
	SubjectID     int64      `json:"subject_id"`
	Title         string     `json:"title"`
	Status        QuizStatus `json:"status"`
	QuestionCount int        `json:"question_count"`
	ModelUsed     *string    `json:"model_used,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Questions []QuizQuestion `json:"questions,omitempty"`
}

type QuizQuestion struct {
	ID              int64        `json:"id"`
	QuizID          int64        `json:"quiz_id"`
	ConceptName     string       `json:"concept_name"`
	Prompt          string       `json:"prompt"`
	CorrectChoiceID string       `json:"-"`
	Explanation     string       `json:"explanation,omitempty"`
	Position        int          `json:"position"`
	Choices         []QuizChoice `json:"choices"`
}

type QuizChoice struct {
	ChoiceID string `json:"choice_id"`
	Text     string `json:"text"`
}

// ── Attempt Types ────────────────────────────────────────

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// QuizAttempt is one run through a quiz. The UUID doubles as the ingestion
// idempotency key, so completing the same attempt twice never double-updates
// mastery.
type QuizAttempt struct {
	ID          string        `json:"id"`
	QuizID      int64         `json:"quiz_id"`
	UserID      int64         `json:"user_id"`
	Status      AttemptStatus `json:"status"`
	Score       *int          `json:"score,omitempty"`
	Total       *int          `json:"total,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// ── Request/Response Types ───────────────────────────────

type GenerateQuizRequest struct {
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

type SubmittedAnswer struct {
	QuestionID       int64    `json:"question_id"`
	SelectedChoiceID string   `json:"selected_choice_id"`
	TimeSpentSeconds *float64 `json:"time_spent_seconds,omitempty"`
}

type CompleteAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

type GradedAnswer struct {
	QuestionID       int64  `json:"question_id"`
	ConceptName      string `json:"concept_name"`
	SelectedChoiceID string `json:"selected_choice_id"`
	CorrectChoiceID  string `json:"correct_choice_id"`
	Correct          bool   `json:"correct"`
	Explanation      string `json:"explanation,omitempty"`
}

// CompleteAttemptResponse always carries the score; pass chance is omitted
// when mastery ingestion failed (the score must never be blocked on it).
type CompleteAttemptResponse struct {
	AttemptID         string         `json:"attempt_id"`
	Score             int            `json:"score"`
	Total             int            `json:"total"`
	Answers           []GradedAnswer `json:"answers"`
	PassChancePercent *int           `json:"pass_chance_percent,omitempty"`
	XPAwarded         int            `json:"xp_awarded"`
}
