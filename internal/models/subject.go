package models

import "time"

// ── Subject & Material Types ─────────────────────────────

type Subject struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Material is an uploaded study document. Text extraction happens upstream;
// the backend only stores the extracted excerpt used for quiz generation.
type Material struct {
	ID        int64     `json:"id"`
	SubjectID int64     `json:"subject_id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type CreateSubjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
}

type AddMaterialRequest struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

type SubjectListResponse struct {
	Subjects []SubjectSummary `json:"subjects"`
}

// SubjectSummary decorates a subject with its cached pass chance for list views.
type SubjectSummary struct {
	Subject
	PassChancePercent *int `json:"pass_chance_percent,omitempty"`
	MaterialCount     int  `json:"material_count"`
}
