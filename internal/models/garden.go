package models

import "time"

// ── Garden Types ─────────────────────────────────────────

// UserGarden holds per-user gamification state. One row per user.
type UserGarden struct {
	UserID         int64      `json:"user_id"`
	TotalXP        int64      `json:"total_xp"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
	QuizzesTotal   int        `json:"quizzes_completed_total"`
	PerfectTotal   int        `json:"perfect_quizzes_total"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GardenPlant is the visual proxy for one subject: its growth stage tracks
// the subject's pass chance.
type GardenPlant struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SubjectID   int64     `json:"subject_id"`
	GrowthStage string    `json:"growth_stage"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type XPEvent struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	EventType string                 `json:"event_type"`
	XPAmount  int                    `json:"xp_amount"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ── Response Types ───────────────────────────────────────

type GardenResponse struct {
	Garden UserGarden    `json:"garden"`
	Plants []GardenPlant `json:"plants"`
}

type XPEventListResponse struct {
	Events []XPEvent `json:"events"`
	Total  int       `json:"total"`
}
