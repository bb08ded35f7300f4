package models

import "time"

// ── Mastery Types ────────────────────────────────────────

// ConceptMastery is the durable per-(user, subject, concept) mastery record.
// MasteryProbability stores the raw, undecayed BKT estimate; forgetting decay
// is applied at read time from LastPracticedAt.
type ConceptMastery struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	SubjectID          int64     `json:"subject_id"`
	ConceptName        string    `json:"concept_name"`
	MasteryProbability float64   `json:"mastery_probability"`
	TotalAttempts      int       `json:"total_attempts"`
	CorrectAttempts    int       `json:"correct_attempts"`
	LastPracticedAt    time.Time `json:"last_practiced_at"`
	Version            int       `json:"-"`
}

// SubjectPassChance is the cached aggregate for one user × subject. It is
// always recomputed by the aggregator, never set directly.
type SubjectPassChance struct {
	UserID            int64     `json:"user_id"`
	SubjectID         int64     `json:"subject_id"`
	PassChancePercent int       `json:"pass_chance_percent"`
	ComputedAt        time.Time `json:"computed_at"`
}

// Observation is one graded answer from a completed quiz attempt.
// Ephemeral — supplied by the quiz-completion flow, never persisted here.
type Observation struct {
	ConceptName string `json:"concept_name"`
	Correct     bool   `json:"correct"`
}

// IngestionResult is returned from a single ingestion so the caller can show
// fresh numbers without a second round trip. PassChancePercent is nil when
// the concept updates landed but aggregation failed.
type IngestionResult struct {
	UpdatedConcepts   []ConceptMastery `json:"updated_concepts"`
	PassChancePercent *int             `json:"pass_chance_percent,omitempty"`
	AlreadyIngested   bool             `json:"already_ingested"`
}

// ── API Request/Response Types ────────────────────────────

type PassChanceResponse struct {
	SubjectID         int64     `json:"subject_id"`
	PassChancePercent int       `json:"pass_chance_percent"`
	ConceptCount      int       `json:"concept_count"`
	ComputedAt        time.Time `json:"computed_at"`
}

type ConceptMasteryView struct {
	ConceptName        string    `json:"concept_name"`
	MasteryProbability float64   `json:"mastery_probability"`
	EffectiveMastery   float64   `json:"effective_mastery"`
	TotalAttempts      int       `json:"total_attempts"`
	CorrectAttempts    int       `json:"correct_attempts"`
	LastPracticedAt    time.Time `json:"last_practiced_at"`
}

type MasteryBreakdownResponse struct {
	SubjectID int64                `json:"subject_id"`
	Concepts  []ConceptMasteryView `json:"concepts"`
}
