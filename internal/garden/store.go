package garden

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/studygarden/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Garden CRUD ─────────────────────────────────────────

func (s *Store) GetOrCreateGarden(userID int64) (*models.UserGarden, error) {
	_, err := s.db.Exec(
		`INSERT INTO user_gardens (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert garden: %w", err)
	}

	var g models.UserGarden
	err = s.db.QueryRow(
		`SELECT user_id, total_xp, current_streak, longest_streak, last_active_date,
		        quizzes_completed_total, perfect_quizzes_total, created_at, updated_at
		 FROM user_gardens WHERE user_id = $1`,
		userID,
	).Scan(&g.UserID, &g.TotalXP, &g.CurrentStreak, &g.LongestStreak, &g.LastActiveDate,
		&g.QuizzesTotal, &g.PerfectTotal, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get garden: %w", err)
	}
	return &g, nil
}

func (s *Store) UpdateGarden(userID int64, g *models.UserGarden) error {
	_, err := s.db.Exec(
		`UPDATE user_gardens SET
		    total_xp = $2, current_streak = $3, longest_streak = $4, last_active_date = $5,
		    quizzes_completed_total = $6, perfect_quizzes_total = $7,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, g.TotalXP, g.CurrentStreak, g.LongestStreak, g.LastActiveDate,
		g.QuizzesTotal, g.PerfectTotal,
	)
	return err
}

func (s *Store) AddXP(userID int64, amount int) error {
	_, err := s.db.Exec(
		`UPDATE user_gardens SET total_xp = total_xp + $2, updated_at = NOW()
		 WHERE user_id = $1`,
		userID, amount,
	)
	return err
}

// ── Plants ──────────────────────────────────────────────

func (s *Store) UpsertPlant(userID, subjectID int64, stage string) error {
	_, err := s.db.Exec(
		`INSERT INTO garden_plants (user_id, subject_id, growth_stage)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, subject_id)
		 DO UPDATE SET growth_stage = $3, updated_at = NOW()`,
		userID, subjectID, stage,
	)
	return err
}

func (s *Store) ListPlants(userID int64) ([]models.GardenPlant, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, subject_id, growth_stage, updated_at
		 FROM garden_plants WHERE user_id = $1 ORDER BY subject_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	var plants []models.GardenPlant
	for rows.Next() {
		var p models.GardenPlant
		if err := rows.Scan(&p.ID, &p.UserID, &p.SubjectID, &p.GrowthStage, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, p)
	}
	return plants, rows.Err()
}

// ── XP Events ───────────────────────────────────────────

func (s *Store) LogXPEvent(userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error {
	var metaJSON *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err == nil {
			str := string(b)
			metaJSON = &str
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO xp_events (user_id, event_type, xp_amount, metadata)
		 VALUES ($1, $2, $3, $4)`,
		userID, eventType, xpAmount, metaJSON,
	)
	return err
}

func (s *Store) ListXPEvents(userID int64, limit int) ([]models.XPEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, event_type, xp_amount, metadata, created_at
		 FROM xp_events WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list xp events: %w", err)
	}
	defer rows.Close()

	var events []models.XPEvent
	for rows.Next() {
		var e models.XPEvent
		var metaJSON *string
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.XPAmount, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan xp event: %w", err)
		}
		if metaJSON != nil {
			json.Unmarshal([]byte(*metaJSON), &e.Metadata)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
